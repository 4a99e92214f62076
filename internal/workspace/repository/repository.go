package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() workspacedomain.Repository {
	return &Repository{}
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*workspacedomain.Workspace, error) {
	var workspace workspacedomain.Workspace
	err := db.WithContext(ctx).First(&workspace, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workspacedomain.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

func (r *Repository) IsMember(ctx context.Context, db *gorm.DB, workspaceID, userID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&workspacedomain.Member{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
