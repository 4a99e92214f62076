package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Workspace, error)
	IsMember(ctx context.Context, db *gorm.DB, workspaceID, userID snowflake.ID) (bool, error)
}
