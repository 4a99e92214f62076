// Package runner executes background jobs. Submission happens inside
// the caller's transaction so that the insert is atomic with whatever
// state checks preceded it; execution happens on a small worker pool
// that claims pending jobs with row locks.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/gridbase/gridbase/internal/db"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	"github.com/gridbase/gridbase/internal/observability/metrics"
	"github.com/gridbase/gridbase/internal/progress"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandlerFunc runs the payload of one job. The progress scope spans
// 100 units; a successful run is expected to consume it fully.
type HandlerFunc func(ctx context.Context, job *jobdomain.Job, p *progress.Progress) error

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clockwork.Clock
	Repo   jobdomain.Repository
	Config Config `optional:"true"`
}

type Runner struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clockwork.Clock
	repo  jobdomain.Repository
	cfg   Config

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRunner(p Params) *Runner {
	return &Runner{
		db:       p.DB,
		log:      p.Log.Named("job.runner"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		cfg:      p.Config.withDefaults(),
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a job type to its payload. Registration happens
// during wiring, before the worker pool starts.
func (r *Runner) Register(jobType string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = fn
}

// Submit inserts a new pending job. When tx is non-nil the insert
// joins the caller's transaction, making it atomic with the state
// checks that allowed it.
func (r *Runner) Submit(ctx context.Context, tx *gorm.DB, job *jobdomain.Job) (*jobdomain.Job, error) {
	if job == nil || job.Type == "" {
		return nil, jobdomain.ErrInvalidJobType
	}
	conn := tx
	if conn == nil {
		conn = r.db
	}

	now := r.clock.Now().UTC()
	job.ID = r.genID.Generate()
	job.State = jobdomain.StatePending
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := r.repo.Insert(ctx, conn, job); err != nil {
		return nil, err
	}
	return job, nil
}

// CountActive reports pending or running jobs of the given type
// matching the filter, through the caller's transaction when given.
func (r *Runner) CountActive(ctx context.Context, tx *gorm.DB, jobType string, filter jobdomain.ActiveFilter) (int64, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	return r.repo.CountActive(ctx, conn, jobType, filter)
}

// RunForever runs the worker pool until the context is cancelled.
func (r *Runner) RunForever(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.workLoop(ctx)
		}()
	}
	wg.Wait()
}

func (r *Runner) workLoop(ctx context.Context) {
	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		for {
			claimed, err := r.RunOnce(ctx)
			if err != nil {
				r.log.Warn("job run failed", zap.Error(err))
				break
			}
			if !claimed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

// RunOnce claims and executes at most one pending job. It reports
// whether a job was claimed.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	var job *jobdomain.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := r.claimPending(ctx, tx)
		if err != nil {
			return err
		}
		job = claimed
		return nil
	})
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	r.execute(ctx, job)
	return true, nil
}

func (r *Runner) claimPending(ctx context.Context, tx *gorm.DB) (*jobdomain.Job, error) {
	query := fmt.Sprintf(
		`SELECT id, type, state, snapshot_id, created_by, progress, error, created_at, updated_at, started_at, finished_at
		 FROM jobs
		 WHERE state = ?
		 ORDER BY id
		 LIMIT 1
		 %s`,
		db.ForUpdateSkipLocked(tx),
	)

	var jobs []jobdomain.Job
	if err := tx.WithContext(ctx).Raw(query, jobdomain.StatePending).Scan(&jobs).Error; err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	job := jobs[0]
	now := r.clock.Now().UTC()
	if err := tx.WithContext(ctx).Exec(
		`UPDATE jobs SET state = ?, started_at = ?, updated_at = ? WHERE id = ?`,
		jobdomain.StateRunning,
		now,
		now,
		job.ID,
	).Error; err != nil {
		return nil, err
	}
	job.State = jobdomain.StateRunning
	job.StartedAt = &now
	return &job, nil
}

func (r *Runner) execute(ctx context.Context, job *jobdomain.Job) {
	log := r.log.With(zap.String("job_id", job.ID.String()), zap.String("type", job.Type))

	r.mu.RLock()
	handler := r.handlers[job.Type]
	r.mu.RUnlock()
	if handler == nil {
		log.Error("no handler registered for job type")
		r.finish(ctx, job, 0, jobdomain.ErrInvalidJobType)
		return
	}

	p := progress.New(100)
	lastPercent := 0
	p.SetObserver(func(done, total int) {
		percent := done * 100 / total
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		if err := r.db.WithContext(ctx).Exec(
			`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`,
			percent,
			r.clock.Now().UTC(),
			job.ID,
		).Error; err != nil {
			log.Warn("failed to persist job progress", zap.Error(err))
		}
	})

	start := r.clock.Now()
	err := handler(ctx, job, p)
	duration := r.clock.Since(start)

	result := "success"
	if err != nil {
		result = "failed"
		log.Warn("job failed", zap.Error(err))
	} else {
		log.Info("job finished", zap.Duration("duration", duration))
	}
	metrics.Snapshot().ObserveJobDuration(job.Type, result, duration)

	r.finish(ctx, job, p.Percent(), err)
}

func (r *Runner) finish(ctx context.Context, job *jobdomain.Job, percent int, runErr error) {
	now := r.clock.Now().UTC()
	state := jobdomain.StateFinished
	errText := ""
	if runErr != nil {
		state = jobdomain.StateFailed
		errText = runErr.Error()
	}
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE jobs SET state = ?, progress = ?, error = ?, finished_at = ?, updated_at = ? WHERE id = ?`,
		state,
		percent,
		errText,
		now,
		now,
		job.ID,
	).Error; err != nil {
		r.log.Warn("failed to record job result", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}
