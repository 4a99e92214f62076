package service

import (
	"context"

	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	"github.com/gridbase/gridbase/internal/job/runner"
	"github.com/gridbase/gridbase/internal/progress"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
)

// RegisterJobTypes binds the snapshot job payloads to the runner.
func RegisterJobTypes(r *runner.Runner, svc snapshotdomain.Service) {
	r.Register(snapshotdomain.JobTypeCreate, func(ctx context.Context, job *jobdomain.Job, p *progress.Progress) error {
		if job.SnapshotID == nil {
			return jobdomain.ErrInvalidJobType
		}
		return svc.PerformCreate(ctx, *job.SnapshotID, p)
	})
	r.Register(snapshotdomain.JobTypeRestore, func(ctx context.Context, job *jobdomain.Job, p *progress.Progress) error {
		if job.SnapshotID == nil {
			return jobdomain.ErrInvalidJobType
		}
		_, err := svc.PerformRestore(ctx, *job.SnapshotID, p)
		return err
	})
	r.Register(snapshotdomain.JobTypeDelete, func(ctx context.Context, job *jobdomain.Job, p *progress.Progress) error {
		if job.SnapshotID == nil {
			return jobdomain.ErrInvalidJobType
		}
		return svc.PerformDelete(ctx, *job.SnapshotID, p)
	})
}
