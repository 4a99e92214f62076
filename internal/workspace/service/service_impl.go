package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gridbase/gridbase/internal/cache"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memberCacheTTL bounds how long a revoked membership can still pass
// the check.
const memberCacheTTL = 30 * time.Second

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo workspacedomain.Repository
}

type ServiceImpl struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    workspacedomain.Repository
	members cache.Cache[string, bool]
}

func NewService(p Params) workspacedomain.Service {
	return &ServiceImpl{
		db:      p.DB,
		log:     p.Log.Named("workspace.service"),
		repo:    p.Repo,
		members: cache.NewTTLCache[string, bool](),
	}
}

func (s *ServiceImpl) CheckUser(ctx context.Context, workspace *workspacedomain.Workspace, userID snowflake.ID) error {
	if workspace == nil {
		return workspacedomain.ErrWorkspaceNotFound
	}
	if workspace.IsTemplate {
		return workspacedomain.ErrUserNotInWorkspace
	}

	key := memberKey(workspace.ID, userID)
	if member, ok := s.members.Get(key); ok {
		if member {
			return nil
		}
		return workspacedomain.ErrUserNotInWorkspace
	}

	member, err := s.repo.IsMember(ctx, s.db, workspace.ID, userID)
	if err != nil {
		return err
	}
	s.members.Set(key, member, memberCacheTTL)

	if !member {
		return workspacedomain.ErrUserNotInWorkspace
	}
	return nil
}

func memberKey(workspaceID, userID snowflake.ID) string {
	return fmt.Sprintf("%d:%d", workspaceID, userID)
}
