package db

import (
	"context"

	"github.com/gridbase/gridbase/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("db",
	fx.Provide(Open),
	fx.Invoke(registerClose),
)

// Open connects to the configured postgres database.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connected")
	return conn, nil
}

func registerClose(lc fx.Lifecycle, conn *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			log.Info("closing database connection")
			return sqlDB.Close()
		},
	})
}

// ForUpdate returns the row locking suffix for the connected dialect.
// SQLite serializes writers on its own and rejects FOR UPDATE, so the
// suffix is empty there; the test databases keep the same semantics.
func ForUpdate(conn *gorm.DB) string {
	if conn.Dialector.Name() == "sqlite" {
		return ""
	}
	return "FOR UPDATE"
}

// ForUpdateSkipLocked is ForUpdate with SKIP LOCKED for queue-style
// claims of contended rows.
func ForUpdateSkipLocked(conn *gorm.DB) string {
	if conn.Dialector.Name() == "sqlite" {
		return ""
	}
	return "FOR UPDATE SKIP LOCKED"
}
