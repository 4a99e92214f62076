package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo applicationdomain.Repository
}

type ServiceImpl struct {
	db   *gorm.DB
	log  *zap.Logger
	repo applicationdomain.Repository
}

func NewService(p Params) applicationdomain.Service {
	return &ServiceImpl{
		db:   p.DB,
		log:  p.Log.Named("application.service"),
		repo: p.Repo,
	}
}

func (s *ServiceImpl) FindUnusedName(ctx context.Context, workspaceID snowflake.ID, base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Untitled"
	}

	names, err := s.repo.NamesInWorkspace(ctx, s.db, workspaceID)
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(names))
	for _, name := range names {
		taken[name] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}
