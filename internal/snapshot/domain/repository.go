package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	Update(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	// Purge removes the snapshot row entirely. Used by the teardown
	// job once the snapshotted data is gone.
	Purge(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// FindByID loads a snapshot with its source application, that
	// application's workspace and the creating user preloaded.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Snapshot, error)

	// LockByID acquires a row-exclusive lock on the snapshot for the
	// duration of the surrounding transaction. Returns
	// ErrSnapshotNotFound when the row does not exist.
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// ListLive returns the completed, not-deleted snapshots of an
	// application, newest first.
	ListLive(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) ([]Snapshot, error)

	// CountLiveInWorkspace counts not-deleted snapshots across all
	// applications of a workspace, for quota enforcement.
	CountLiveInWorkspace(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) (int64, error)

	// CountLive counts not-deleted snapshots across the whole instance.
	CountLive(ctx context.Context, db *gorm.DB) (int64, error)

	// LockBySource locks and returns the not-deleted snapshots of a
	// source application.
	LockBySource(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) ([]Snapshot, error)

	// LockExpired locks and returns the not-deleted snapshots created
	// before the threshold.
	LockExpired(ctx context.Context, db *gorm.DB, threshold time.Time) ([]Snapshot, error)
}
