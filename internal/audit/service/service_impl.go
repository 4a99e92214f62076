package service

import (
	"context"

	auditdomain "github.com/gridbase/gridbase/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clockwork.Clock
	Repo  auditdomain.Repository
}

type ServiceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clockwork.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &ServiceImpl{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *ServiceImpl) Record(ctx context.Context, entry auditdomain.Entry) {
	record := &auditdomain.AuditLog{
		ID:          s.genID.Generate(),
		WorkspaceID: entry.WorkspaceID,
		ActorType:   string(auditdomain.ActorTypeSystem),
		Action:      entry.Action,
		TargetType:  entry.TargetType,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   s.clock.Now().UTC(),
	}
	if entry.ActorID != nil {
		actor := entry.ActorID.String()
		record.ActorType = string(auditdomain.ActorTypeUser)
		record.ActorID = &actor
	}
	if entry.TargetID != "" {
		target := entry.TargetID
		record.TargetID = &target
	}
	for key, value := range entry.Metadata {
		record.Metadata[key] = value
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		s.log.Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func (s *ServiceImpl) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
