package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	"github.com/gridbase/gridbase/internal/application/repository"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupApplicationService(t *testing.T) (*ServiceImpl, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&workspacedomain.Workspace{},
		&applicationdomain.Application{},
	))

	svc := &ServiceImpl{db: db, log: zap.NewNop(), repo: repository.Provide()}
	return svc, db
}

func insertApplication(t *testing.T, db *gorm.DB, id int64, workspaceID snowflake.ID, name string) {
	t.Helper()
	wsID := workspaceID
	require.NoError(t, db.Create(&applicationdomain.Application{
		ID:          snowflake.ID(id),
		WorkspaceID: &wsID,
		Type:        "grid",
		Name:        name,
	}).Error)
}

func TestFindUnusedNameReturnsBaseWhenFree(t *testing.T) {
	svc, _ := setupApplicationService(t)

	name, err := svc.FindUnusedName(context.Background(), 1, "Projects")
	require.NoError(t, err)
	require.Equal(t, "Projects", name)
}

func TestFindUnusedNameAppendsCounter(t *testing.T) {
	svc, db := setupApplicationService(t)
	insertApplication(t, db, 1, 1, "Projects")
	insertApplication(t, db, 2, 1, "Projects 2")

	name, err := svc.FindUnusedName(context.Background(), 1, "Projects")
	require.NoError(t, err)
	require.Equal(t, "Projects 3", name)
}

func TestFindUnusedNameScopedToWorkspace(t *testing.T) {
	svc, db := setupApplicationService(t)
	insertApplication(t, db, 1, 2, "Projects")

	name, err := svc.FindUnusedName(context.Background(), 1, "Projects")
	require.NoError(t, err)
	require.Equal(t, "Projects", name)
}

func TestFindUnusedNameDefaultsEmptyBase(t *testing.T) {
	svc, _ := setupApplicationService(t)

	name, err := svc.FindUnusedName(context.Background(), 1, "   ")
	require.NoError(t, err)
	require.Equal(t, "Untitled", name)
}
