package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gridbase/gridbase/internal/application"
	"github.com/gridbase/gridbase/internal/audit"
	"github.com/gridbase/gridbase/internal/clock"
	"github.com/gridbase/gridbase/internal/config"
	"github.com/gridbase/gridbase/internal/db"
	"github.com/gridbase/gridbase/internal/events"
	"github.com/gridbase/gridbase/internal/job"
	"github.com/gridbase/gridbase/internal/migration"
	"github.com/gridbase/gridbase/internal/observability/logger"
	"github.com/gridbase/gridbase/internal/observability/tracing"
	"github.com/gridbase/gridbase/internal/seed"
	"github.com/gridbase/gridbase/internal/server"
	"github.com/gridbase/gridbase/internal/snapshot"
	"github.com/gridbase/gridbase/internal/snapshot/expire"
	"github.com/gridbase/gridbase/internal/storage"
	"github.com/gridbase/gridbase/internal/workspace"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		logger.Module,
		config.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB, node *snowflake.Node, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if !cfg.IsProduction() {
				return seed.EnsureDefaultWorkspace(conn, node)
			}
			return nil
		}),
		storage.Module,
		tracing.Module,
		events.Module,
		audit.Module,
		workspace.Module,
		application.Module,
		job.Module,
		snapshot.Module,
		expire.Module,
		server.Module,
	)
	app.Run()
}
