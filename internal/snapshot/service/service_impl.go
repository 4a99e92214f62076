package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	auditdomain "github.com/gridbase/gridbase/internal/audit/domain"
	"github.com/gridbase/gridbase/internal/config"
	"github.com/gridbase/gridbase/internal/events"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	"github.com/gridbase/gridbase/internal/job/runner"
	"github.com/gridbase/gridbase/internal/observability/metrics"
	"github.com/gridbase/gridbase/internal/progress"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clockwork.Clock
	Cfg        config.Config
	Registry   *applicationdomain.Registry
	Repo       snapshotdomain.Repository
	AppRepo    applicationdomain.Repository
	AppSvc     applicationdomain.Service
	Workspaces workspacedomain.Service
	Runner     *runner.Runner
	Bucket     *blob.Bucket
	Outbox     *events.Outbox
	Audit      auditdomain.Service
}

// ServiceImpl manages the snapshot lifecycle. The validating
// operations run inside a single transaction each so that the state
// checks and the resulting job submission cannot be split by a
// concurrent request; the Perform operations are the payloads the job
// runner executes later.
type ServiceImpl struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clockwork.Clock
	cfg        config.Config
	registry   *applicationdomain.Registry
	repo       snapshotdomain.Repository
	appRepo    applicationdomain.Repository
	appSvc     applicationdomain.Service
	workspaces workspacedomain.Service
	runner     *runner.Runner
	bucket     *blob.Bucket
	outbox     *events.Outbox
	audit      auditdomain.Service
}

func NewService(p Params) snapshotdomain.Service {
	return &ServiceImpl{
		db:         p.DB,
		log:        p.Log.Named("snapshot.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		cfg:        p.Cfg,
		registry:   p.Registry,
		repo:       p.Repo,
		appRepo:    p.AppRepo,
		appSvc:     p.AppSvc,
		workspaces: p.Workspaces,
		runner:     p.Runner,
		bucket:     p.Bucket,
		outbox:     p.Outbox,
		audit:      p.Audit,
	}
}

// authorize rejects access to detached applications and to workspaces
// the user is not a member of.
func (s *ServiceImpl) authorize(ctx context.Context, app *applicationdomain.Application, userID snowflake.ID) error {
	if app.WorkspaceID == nil || app.Workspace == nil {
		return applicationdomain.ErrApplicationNotFound
	}
	return s.workspaces.CheckUser(ctx, app.Workspace, userID)
}

func (s *ServiceImpl) snapshotType(app *applicationdomain.Application) (applicationdomain.Type, error) {
	appType, err := s.registry.Get(app.Type)
	if err != nil {
		return nil, err
	}
	if !appType.SupportsSnapshots() {
		return nil, applicationdomain.ErrOperationNotSupported
	}
	return appType, nil
}

func (s *ServiceImpl) observe(operation string, err error) {
	result := "accepted"
	if err != nil {
		result = "rejected"
	}
	metrics.Snapshot().IncOperation(operation, result)
}

func (s *ServiceImpl) refreshLiveGauge(ctx context.Context) {
	count, err := s.repo.CountLive(ctx, s.db)
	if err != nil {
		s.log.Warn("failed to count live snapshots", zap.Error(err))
		return
	}
	metrics.Snapshot().SetLiveSnapshots(count)
}

func (s *ServiceImpl) List(ctx context.Context, applicationID, performedBy snowflake.ID) ([]snapshotdomain.Snapshot, error) {
	app, err := s.appRepo.FindByID(ctx, s.db, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, app, performedBy); err != nil {
		return nil, err
	}
	return s.repo.ListLive(ctx, s.db, applicationID)
}

func (s *ServiceImpl) Create(ctx context.Context, applicationID, performedBy snowflake.ID, name string) (*snapshotdomain.CreateResult, error) {
	var (
		result    *snapshotdomain.CreateResult
		workspace *snowflake.ID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByID(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, app, performedBy); err != nil {
			return err
		}
		if _, err := s.snapshotType(app); err != nil {
			return err
		}
		workspace = app.WorkspaceID

		if max := s.cfg.Snapshot.MaxPerWorkspace; max >= 0 {
			count, err := s.repo.CountLiveInWorkspace(ctx, tx, *app.WorkspaceID)
			if err != nil {
				return err
			}
			if count >= int64(max) {
				return snapshotdomain.ErrMaximumSnapshotsReached
			}
		}

		active, err := s.runner.CountActive(ctx, tx, snapshotdomain.JobTypeCreate, jobdomain.ActiveFilter{
			SnapshotSourceApplicationID: &applicationID,
		})
		if err != nil {
			return err
		}
		if active > 0 {
			return snapshotdomain.ErrSnapshotBeingCreated
		}

		now := s.clock.Now().UTC()
		snapshot := &snapshotdomain.Snapshot{
			ID:                        s.genID.Generate(),
			Name:                      name,
			SnapshotFromApplicationID: applicationID,
			CreatedByID:               performedBy,
			CreatedAt:                 now,
			UpdatedAt:                 now,
		}
		if err := s.repo.Insert(ctx, tx, snapshot); err != nil {
			return err
		}

		job, err := s.runner.Submit(ctx, tx, &jobdomain.Job{
			Type:       snapshotdomain.JobTypeCreate,
			SnapshotID: &snapshot.ID,
			CreatedBy:  performedBy,
		})
		if err != nil {
			return err
		}

		result = &snapshotdomain.CreateResult{Snapshot: snapshot, Job: job}
		return nil
	})
	s.observe("create", err)
	if err != nil {
		return nil, err
	}
	s.refreshLiveGauge(ctx)

	s.audit.Record(ctx, auditdomain.Entry{
		WorkspaceID: workspace,
		ActorID:     &performedBy,
		Action:      auditdomain.ActionSnapshotCreate,
		TargetType:  auditdomain.TargetTypeSnapshot,
		TargetID:    result.Snapshot.ID.String(),
		Metadata:    map[string]any{"name": result.Snapshot.Name},
	})
	return result, nil
}

func (s *ServiceImpl) Restore(ctx context.Context, snapshotID, performedBy snowflake.ID) (*jobdomain.Job, error) {
	var (
		job       *jobdomain.Job
		workspace *snowflake.ID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot, err := s.lockAndLoad(ctx, tx, snapshotID)
		if err != nil {
			return err
		}
		app := snapshot.SnapshotFromApplication
		if err := s.authorize(ctx, app, performedBy); err != nil {
			return err
		}
		if _, err := s.snapshotType(app); err != nil {
			return err
		}
		workspace = app.WorkspaceID

		// A restore in flight is detected through live jobs rather
		// than a stored flag: a crashed restore must not wedge the
		// snapshot forever.
		restoring, err := s.runner.CountActive(ctx, tx, snapshotdomain.JobTypeRestore, jobdomain.ActiveFilter{
			SnapshotID: &snapshot.ID,
		})
		if err != nil {
			return err
		}
		if restoring > 0 {
			return snapshotdomain.ErrSnapshotBeingRestored
		}
		if snapshot.MarkForDeletion {
			return snapshotdomain.ErrSnapshotBeingDeleted
		}
		if snapshot.SnapshotToApplicationID == nil {
			return snapshotdomain.ErrSnapshotBeingCreated
		}

		job, err = s.runner.Submit(ctx, tx, &jobdomain.Job{
			Type:       snapshotdomain.JobTypeRestore,
			SnapshotID: &snapshot.ID,
			CreatedBy:  performedBy,
		})
		return err
	})
	s.observe("restore", err)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditdomain.Entry{
		WorkspaceID: workspace,
		ActorID:     &performedBy,
		Action:      auditdomain.ActionSnapshotRestore,
		TargetType:  auditdomain.TargetTypeSnapshot,
		TargetID:    snapshotID.String(),
	})
	return job, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, snapshotID, performedBy snowflake.ID) error {
	var workspace *snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot, err := s.lockAndLoad(ctx, tx, snapshotID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, snapshot.SnapshotFromApplication, performedBy); err != nil {
			return err
		}
		if _, err := s.snapshotType(snapshot.SnapshotFromApplication); err != nil {
			return err
		}
		workspace = snapshot.SnapshotFromApplication.WorkspaceID

		if snapshot.MarkForDeletion {
			return snapshotdomain.ErrSnapshotBeingDeleted
		}
		restoring, err := s.runner.CountActive(ctx, tx, snapshotdomain.JobTypeRestore, jobdomain.ActiveFilter{
			SnapshotID: &snapshot.ID,
		})
		if err != nil {
			return err
		}
		if restoring > 0 {
			return snapshotdomain.ErrSnapshotBeingRestored
		}

		return s.scheduleDeletion(ctx, tx, snapshot, performedBy)
	})
	s.observe("delete", err)
	if err != nil {
		return err
	}
	s.refreshLiveGauge(ctx)

	s.audit.Record(ctx, auditdomain.Entry{
		WorkspaceID: workspace,
		ActorID:     &performedBy,
		Action:      auditdomain.ActionSnapshotDelete,
		TargetType:  auditdomain.TargetTypeSnapshot,
		TargetID:    snapshotID.String(),
	})
	return nil
}

func (s *ServiceImpl) DeleteByApplication(ctx context.Context, applicationID snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshots, err := s.repo.LockBySource(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		for i := range snapshots {
			if err := s.scheduleDeletion(ctx, tx, &snapshots[i], snapshots[i].CreatedByID); err != nil {
				return err
			}
		}
		return nil
	})
	s.observe("delete_by_application", err)
	if err == nil {
		s.refreshLiveGauge(ctx)
	}
	return err
}

func (s *ServiceImpl) DeleteExpired(ctx context.Context) (int, error) {
	threshold := s.clock.Now().UTC().Add(-s.cfg.Snapshot.Retention())

	var expired []snapshotdomain.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshots, err := s.repo.LockExpired(ctx, tx, threshold)
		if err != nil {
			return err
		}
		for i := range snapshots {
			if err := s.scheduleDeletion(ctx, tx, &snapshots[i], snapshots[i].CreatedByID); err != nil {
				return err
			}
		}
		expired = snapshots
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.Snapshot().AddExpired(len(expired))
	s.refreshLiveGauge(ctx)
	for i := range expired {
		s.audit.Record(ctx, auditdomain.Entry{
			Action:     auditdomain.ActionSnapshotExpire,
			TargetType: auditdomain.TargetTypeSnapshot,
			TargetID:   expired[i].ID.String(),
			Metadata:   map[string]any{"created_at": expired[i].CreatedAt},
		})
	}
	return len(expired), nil
}

// lockAndLoad pins the snapshot row for the transaction, then loads it
// with its associations.
func (s *ServiceImpl) lockAndLoad(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*snapshotdomain.Snapshot, error) {
	if err := s.repo.LockByID(ctx, tx, id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tx, id)
}

// scheduleDeletion flags the snapshot and submits its teardown job.
// Once the flag is set the snapshot is inert regardless of how long
// the job stays queued.
func (s *ServiceImpl) scheduleDeletion(ctx context.Context, tx *gorm.DB, snapshot *snapshotdomain.Snapshot, performedBy snowflake.ID) error {
	snapshot.MarkForDeletion = true
	snapshot.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, tx, snapshot); err != nil {
		return err
	}
	_, err := s.runner.Submit(ctx, tx, &jobdomain.Job{
		Type:       snapshotdomain.JobTypeDelete,
		SnapshotID: &snapshot.ID,
		CreatedBy:  performedBy,
	})
	return err
}

// PerformCreate is the payload of a snapshot.create job. It exports
// the source application to the bucket, imports the payload as a
// detached application and points the snapshot at it.
func (s *ServiceImpl) PerformCreate(ctx context.Context, snapshotID snowflake.ID, p *progress.Progress) error {
	snapshot, err := s.repo.FindByID(ctx, s.db, snapshotID)
	if err != nil {
		return err
	}
	if snapshot.MarkForDeletion {
		// Flagged between submission and execution. The teardown job
		// will purge the row.
		p.Increment(p.Total() - p.Done())
		return nil
	}

	app := snapshot.SnapshotFromApplication
	if err := s.authorize(ctx, app, snapshot.CreatedByID); err != nil {
		return err
	}
	appType, err := s.snapshotType(app)
	if err != nil {
		return err
	}

	serialized, err := appType.ExportSerialized(ctx, s.db, app, s.bucket)
	if err != nil {
		return err
	}
	// The exported payload is temporary either way, also when the
	// import below fails.
	defer s.cleanupPayload(ctx, serialized)
	p.Increment(50)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hidden, err := appType.ImportSerialized(ctx, tx, nil, serialized, s.bucket, p.Child(50, 100))
		if err != nil {
			return err
		}
		snapshot.SnapshotToApplicationID = &hidden.ID
		snapshot.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Update(ctx, tx, snapshot); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			WorkspaceID: *app.WorkspaceID,
			Type:        events.EventSnapshotCreated,
			Payload: events.SnapshotPayload{
				SnapshotID:          snapshot.ID.String(),
				SourceApplicationID: app.ID.String(),
			}.ToMap(),
			DedupeKey: events.EventSnapshotCreated + ":" + snapshot.ID.String(),
		})
	})
	return err
}

// PerformRestore is the payload of a snapshot.restore job. It copies
// the snapshotted data back into the source workspace as a fresh
// application under a free name.
func (s *ServiceImpl) PerformRestore(ctx context.Context, snapshotID snowflake.ID, p *progress.Progress) (*applicationdomain.Application, error) {
	snapshot, err := s.repo.FindByID(ctx, s.db, snapshotID)
	if err != nil {
		return nil, err
	}
	if snapshot.MarkForDeletion {
		return nil, snapshotdomain.ErrSnapshotBeingDeleted
	}
	if snapshot.SnapshotToApplicationID == nil {
		return nil, snapshotdomain.ErrSnapshotBeingCreated
	}

	app := snapshot.SnapshotFromApplication
	if app.WorkspaceID == nil || app.Workspace == nil {
		return nil, applicationdomain.ErrApplicationNotFound
	}

	hidden, err := s.appRepo.FindByID(ctx, s.db, *snapshot.SnapshotToApplicationID)
	if err != nil {
		return nil, err
	}
	appType, err := s.snapshotType(hidden)
	if err != nil {
		return nil, err
	}

	serialized, err := appType.ExportSerialized(ctx, s.db, hidden, s.bucket)
	if err != nil {
		return nil, err
	}
	defer s.cleanupPayload(ctx, serialized)
	p.Increment(50)

	restored, err := appType.ImportSerialized(ctx, s.db, app.WorkspaceID, serialized, s.bucket, p.Child(50, 100))
	if err != nil {
		return nil, err
	}

	// Restored applications take the snapshot's name, suffixed when
	// the workspace already uses it.
	name, err := s.appSvc.FindUnusedName(ctx, *app.WorkspaceID, snapshot.Name)
	if err != nil {
		return nil, err
	}
	if name != restored.Name {
		restored.Name = name
		if err := s.appRepo.Update(ctx, s.db, restored); err != nil {
			return nil, err
		}
	}

	if err := s.outbox.Publish(ctx, events.Event{
		WorkspaceID: *app.WorkspaceID,
		Type:        events.EventApplicationCreated,
		Payload: events.ApplicationCreatedPayload{
			ApplicationID: restored.ID.String(),
			WorkspaceID:   app.WorkspaceID.String(),
			SnapshotID:    snapshot.ID.String(),
		}.ToMap(),
		DedupeKey: events.EventApplicationCreated + ":" + restored.ID.String(),
	}); err != nil {
		return nil, err
	}
	return restored, nil
}

// PerformDelete is the payload of a snapshot.delete job. It purges the
// detached data application, if any, and then the snapshot row itself.
func (s *ServiceImpl) PerformDelete(ctx context.Context, snapshotID snowflake.ID, p *progress.Progress) error {
	snapshot, err := s.repo.FindByID(ctx, s.db, snapshotID)
	if errors.Is(err, snapshotdomain.ErrSnapshotNotFound) {
		// A duplicate teardown job already ran.
		p.Increment(p.Total() - p.Done())
		return nil
	}
	if err != nil {
		return err
	}

	var workspace *snowflake.ID
	if app := snapshot.SnapshotFromApplication; app != nil {
		workspace = app.WorkspaceID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if snapshot.SnapshotToApplicationID != nil {
			if err := s.appRepo.Delete(ctx, tx, *snapshot.SnapshotToApplicationID); err != nil {
				return err
			}
		}
		p.Increment(50)
		if err := s.repo.Purge(ctx, tx, snapshot.ID); err != nil {
			return err
		}
		if workspace != nil {
			return s.outbox.PublishTx(ctx, tx, events.Event{
				WorkspaceID: *workspace,
				Type:        events.EventSnapshotDeleted,
				Payload: events.SnapshotPayload{
					SnapshotID:          snapshot.ID.String(),
					SourceApplicationID: snapshot.SnapshotFromApplicationID.String(),
				}.ToMap(),
				DedupeKey: events.EventSnapshotDeleted + ":" + snapshot.ID.String(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.Increment(p.Total() - p.Done())
	return nil
}

func (s *ServiceImpl) cleanupPayload(ctx context.Context, serialized *applicationdomain.Serialized) {
	if err := s.bucket.Delete(ctx, serialized.Key); err != nil {
		s.log.Warn("failed to remove serialized payload",
			zap.String("key", serialized.Key),
			zap.Error(err),
		)
	}
}
