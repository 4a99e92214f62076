package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindByID loads an application with its workspace preloaded.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	NamesInWorkspace(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]string, error)
	Update(ctx context.Context, db *gorm.DB, app *Application) error
	// Delete removes the application together with its tables, fields
	// and rows.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
