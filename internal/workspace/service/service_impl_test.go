package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gridbase/gridbase/internal/cache"
	"github.com/gridbase/gridbase/internal/workspace/repository"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCheckUserAllowsMember(t *testing.T) {
	svc, db := setupWorkspaceService(t)
	workspace := insertWorkspace(t, db, 1, false)
	insertMember(t, db, 1, 10)

	if err := svc.CheckUser(context.Background(), workspace, 10); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
}

func TestCheckUserDeniesNonMember(t *testing.T) {
	svc, db := setupWorkspaceService(t)
	workspace := insertWorkspace(t, db, 1, false)

	err := svc.CheckUser(context.Background(), workspace, 99)
	if !errors.Is(err, workspacedomain.ErrUserNotInWorkspace) {
		t.Fatalf("expected user_not_in_workspace, got %v", err)
	}
}

func TestCheckUserDeniesTemplateWorkspace(t *testing.T) {
	svc, db := setupWorkspaceService(t)
	workspace := insertWorkspace(t, db, 2, true)
	insertMember(t, db, 2, 10)

	err := svc.CheckUser(context.Background(), workspace, 10)
	if !errors.Is(err, workspacedomain.ErrUserNotInWorkspace) {
		t.Fatalf("expected user_not_in_workspace, got %v", err)
	}
}

func TestCheckUserCachesMembership(t *testing.T) {
	svc, db := setupWorkspaceService(t)
	workspace := insertWorkspace(t, db, 1, false)
	insertMember(t, db, 1, 10)

	if err := svc.CheckUser(context.Background(), workspace, 10); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}

	if err := db.Exec(`DELETE FROM workspace_members`).Error; err != nil {
		t.Fatalf("delete members: %v", err)
	}

	// Still allowed until the cache entry expires.
	if err := svc.CheckUser(context.Background(), workspace, 10); err != nil {
		t.Fatalf("expected cached allow, got %v", err)
	}
}

func setupWorkspaceService(t *testing.T) (*ServiceImpl, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&workspacedomain.Workspace{},
		&workspacedomain.User{},
		&workspacedomain.Member{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc := &ServiceImpl{
		db:      db,
		log:     zap.NewNop(),
		repo:    repository.Provide(),
		members: cache.NewTTLCache[string, bool](),
	}
	return svc, db
}

func insertWorkspace(t *testing.T, db *gorm.DB, id int64, template bool) *workspacedomain.Workspace {
	t.Helper()
	workspace := &workspacedomain.Workspace{
		ID:         snowflakeID(id),
		Name:       "workspace",
		IsTemplate: template,
	}
	if err := db.Create(workspace).Error; err != nil {
		t.Fatalf("insert workspace: %v", err)
	}
	return workspace
}

func insertMember(t *testing.T, db *gorm.DB, workspaceID, userID int64) {
	t.Helper()
	member := &workspacedomain.Member{
		ID:          snowflakeID(workspaceID*1000 + userID),
		WorkspaceID: snowflakeID(workspaceID),
		UserID:      snowflakeID(userID),
		Role:        "MEMBER",
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("insert member: %v", err)
	}
}

func snowflakeID(v int64) snowflake.ID { return snowflake.ID(v) }
