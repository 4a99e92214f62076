// Package seed bootstraps a default workspace and user so a fresh
// development install is usable without manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"gorm.io/gorm"
)

const (
	defaultWorkspaceName = "Main"
	defaultUsername      = "admin"
)

// EnsureDefaultWorkspace seeds the default workspace, an admin user
// and the membership linking them. Running it twice is a no-op.
func EnsureDefaultWorkspace(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workspace, err := ensureWorkspace(ctx, tx, node)
		if err != nil {
			return err
		}
		user, err := ensureUser(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureMembership(ctx, tx, node, workspace.ID, user.ID)
	})
}

func ensureWorkspace(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*workspacedomain.Workspace, error) {
	var workspace workspacedomain.Workspace
	err := tx.WithContext(ctx).Where("name = ?", defaultWorkspaceName).First(&workspace).Error
	if err == nil {
		return &workspace, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	workspace = workspacedomain.Workspace{
		ID:        node.Generate(),
		Name:      defaultWorkspaceName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

func ensureUser(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*workspacedomain.User, error) {
	var user workspacedomain.User
	err := tx.WithContext(ctx).Where("username = ?", defaultUsername).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = workspacedomain.User{
		ID:        node.Generate(),
		Username:  defaultUsername,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureMembership(ctx context.Context, tx *gorm.DB, node *snowflake.Node, workspaceID, userID snowflake.ID) error {
	var member workspacedomain.Member
	err := tx.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member = workspacedomain.Member{
		ID:          node.Generate(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        "ADMIN",
		CreatedAt:   time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&member).Error
}
