package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	"github.com/gridbase/gridbase/internal/progress"
)

// CreateResult returns both the new snapshot record and the job handle
// callers poll for completion.
type CreateResult struct {
	Snapshot *Snapshot
	Job      *jobdomain.Job
}

// Service is the snapshot lifecycle manager. The validating operations
// (List, Create, Restore, Delete and the sweeps) run synchronously and
// decide whether the requested transition is currently legal; the
// Perform operations are job payloads executed later by the job
// runner.
type Service interface {
	List(ctx context.Context, applicationID, performedBy snowflake.ID) ([]Snapshot, error)
	Create(ctx context.Context, applicationID, performedBy snowflake.ID, name string) (*CreateResult, error)
	Restore(ctx context.Context, snapshotID, performedBy snowflake.ID) (*jobdomain.Job, error)
	Delete(ctx context.Context, snapshotID, performedBy snowflake.ID) error

	// DeleteByApplication flags and schedules teardown for every
	// snapshot of the application. No authorization check: the caller
	// already authorized destroying the application itself.
	DeleteByApplication(ctx context.Context, applicationID snowflake.ID) error

	// DeleteExpired flags snapshots older than the retention window.
	// Returns how many snapshots were flagged.
	DeleteExpired(ctx context.Context) (int, error)

	PerformCreate(ctx context.Context, snapshotID snowflake.ID, p *progress.Progress) error
	PerformRestore(ctx context.Context, snapshotID snowflake.ID, p *progress.Progress) (*applicationdomain.Application, error)
	PerformDelete(ctx context.Context, snapshotID snowflake.ID, p *progress.Progress) error
}
