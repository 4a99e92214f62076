package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ActiveFilter narrows the live-job query to jobs targeting a
// particular snapshot, or any snapshot of a source application.
type ActiveFilter struct {
	SnapshotID                  *snowflake.ID
	SnapshotSourceApplicationID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, job *Job) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Job, error)
	// CountActive counts pending or running jobs of the given type
	// matching the filter. Callers run it inside the transaction that
	// would submit a competing job, so the check and the submission
	// are atomic.
	CountActive(ctx context.Context, db *gorm.DB, jobType string, filter ActiveFilter) (int64, error)
}
