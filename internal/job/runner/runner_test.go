package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	jobrepository "github.com/gridbase/gridbase/internal/job/repository"
	"github.com/gridbase/gridbase/internal/progress"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRunner(t *testing.T) (*Runner, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&workspacedomain.Workspace{},
		&applicationdomain.Application{},
		&snapshotdomain.Snapshot{},
		&jobdomain.Job{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	r := NewRunner(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clockwork.NewFakeClock(),
		Repo:  jobrepository.Provide(),
	})
	return r, db
}

func TestSubmitIsAtomicWithCallerTransaction(t *testing.T) {
	r, db := setupRunner(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.Submit(context.Background(), tx, &jobdomain.Job{Type: "test.job", CreatedBy: 1}); err != nil {
			return err
		}
		count, err := r.CountActive(context.Background(), tx, "test.job", jobdomain.ActiveFilter{})
		if err != nil {
			return err
		}
		if count != 1 {
			t.Fatalf("expected submitted job visible in transaction, got %d", count)
		}
		return errors.New("rollback")
	})
	require.EqualError(t, err, "rollback")

	// Rolled back together with the rest of the transaction.
	count, err := r.CountActive(context.Background(), nil, "test.job", jobdomain.ActiveFilter{})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSubmitRejectsMissingType(t *testing.T) {
	r, _ := setupRunner(t)
	_, err := r.Submit(context.Background(), nil, &jobdomain.Job{})
	require.ErrorIs(t, err, jobdomain.ErrInvalidJobType)
}

func TestRunOnceExecutesPendingJob(t *testing.T) {
	r, db := setupRunner(t)

	var seen *jobdomain.Job
	r.Register("test.job", func(ctx context.Context, job *jobdomain.Job, p *progress.Progress) error {
		seen = job
		p.Increment(p.Total())
		return nil
	})

	submitted, err := r.Submit(context.Background(), nil, &jobdomain.Job{Type: "test.job", CreatedBy: 1})
	require.NoError(t, err)

	claimed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, claimed)
	require.NotNil(t, seen)
	require.Equal(t, submitted.ID, seen.ID)

	var job jobdomain.Job
	require.NoError(t, db.First(&job, "id = ?", submitted.ID).Error)
	require.Equal(t, jobdomain.StateFinished, job.State)
	require.Equal(t, 100, job.Progress)
	require.NotNil(t, job.FinishedAt)
}

func TestRunOnceRecordsFailure(t *testing.T) {
	r, db := setupRunner(t)
	r.Register("test.job", func(ctx context.Context, job *jobdomain.Job, p *progress.Progress) error {
		return errors.New("boom")
	})

	submitted, err := r.Submit(context.Background(), nil, &jobdomain.Job{Type: "test.job", CreatedBy: 1})
	require.NoError(t, err)

	claimed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, claimed)

	var job jobdomain.Job
	require.NoError(t, db.First(&job, "id = ?", submitted.ID).Error)
	require.Equal(t, jobdomain.StateFailed, job.State)
	require.Equal(t, "boom", job.Error)
}

func TestRunOnceWithoutPendingJobs(t *testing.T) {
	r, _ := setupRunner(t)
	claimed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestRunOnceFailsUnregisteredType(t *testing.T) {
	r, db := setupRunner(t)

	submitted, err := r.Submit(context.Background(), nil, &jobdomain.Job{Type: "unknown.job", CreatedBy: 1})
	require.NoError(t, err)

	claimed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, claimed)

	var job jobdomain.Job
	require.NoError(t, db.First(&job, "id = ?", submitted.ID).Error)
	require.Equal(t, jobdomain.StateFailed, job.State)
}

func TestCountActiveFiltersBySnapshotSource(t *testing.T) {
	r, db := setupRunner(t)

	appA := snowflake.ID(100)
	appB := snowflake.ID(200)
	snapA := &snapshotdomain.Snapshot{ID: 1, Name: "a", SnapshotFromApplicationID: appA, CreatedByID: 1}
	snapB := &snapshotdomain.Snapshot{ID: 2, Name: "b", SnapshotFromApplicationID: appB, CreatedByID: 1}
	require.NoError(t, db.Create(snapA).Error)
	require.NoError(t, db.Create(snapB).Error)

	_, err := r.Submit(context.Background(), nil, &jobdomain.Job{Type: "test.job", SnapshotID: &snapA.ID, CreatedBy: 1})
	require.NoError(t, err)
	_, err = r.Submit(context.Background(), nil, &jobdomain.Job{Type: "test.job", SnapshotID: &snapB.ID, CreatedBy: 1})
	require.NoError(t, err)

	count, err := r.CountActive(context.Background(), nil, "test.job", jobdomain.ActiveFilter{
		SnapshotSourceApplicationID: &appA,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = r.CountActive(context.Background(), nil, "test.job", jobdomain.ActiveFilter{
		SnapshotID: &snapB.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = r.CountActive(context.Background(), nil, "test.job", jobdomain.ActiveFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
