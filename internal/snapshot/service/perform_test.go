package service

import (
	"context"
	"io"
	"testing"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	"github.com/gridbase/gridbase/internal/events"
	"github.com/gridbase/gridbase/internal/progress"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func (f *fixture) seedGridData(t *testing.T, applicationID snowflake.ID) {
	t.Helper()
	table := &applicationdomain.Table{ID: f.node.Generate(), ApplicationID: applicationID, Name: "Tasks"}
	require.NoError(t, f.db.Create(table).Error)
	require.NoError(t, f.db.Create(&applicationdomain.Field{
		ID: f.node.Generate(), TableID: table.ID, Name: "title", Type: "text",
	}).Error)
	for _, title := range []string{"write docs", "ship it"} {
		require.NoError(t, f.db.Create(&applicationdomain.Row{
			ID:      f.node.Generate(),
			TableID: table.ID,
			Values:  datatypes.JSONMap{"title": title},
		}).Error)
	}
}

func (f *fixture) countRowsOf(t *testing.T, applicationID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM application_rows
		 WHERE table_id IN (SELECT id FROM application_tables WHERE application_id = ?)`,
		applicationID,
	).Scan(&count).Error)
	return count
}

func TestPerformCreateCopiesDataToDetachedApplication(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")
	f.seedGridData(t, 100)

	result, err := f.svc.Create(context.Background(), 100, userID, "backup")
	require.NoError(t, err)

	p := progress.New(100)
	require.NoError(t, f.svc.PerformCreate(context.Background(), result.Snapshot.ID, p))
	require.Equal(t, 100, p.Percent())

	var snapshot snapshotdomain.Snapshot
	require.NoError(t, f.db.First(&snapshot, "id = ?", result.Snapshot.ID).Error)
	require.NotNil(t, snapshot.SnapshotToApplicationID)

	var hidden applicationdomain.Application
	require.NoError(t, f.db.First(&hidden, "id = ?", *snapshot.SnapshotToApplicationID).Error)
	require.Nil(t, hidden.WorkspaceID)
	require.Equal(t, int64(2), f.countRowsOf(t, hidden.ID))

	// Source data is untouched.
	require.Equal(t, int64(2), f.countRowsOf(t, 100))
}

func TestPerformCreateSkipsFlaggedSnapshot(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")

	result, err := f.svc.Create(context.Background(), 100, userID, "doomed")
	require.NoError(t, err)
	require.NoError(t, f.db.Exec(
		`UPDATE snapshots SET mark_for_deletion = ? WHERE id = ?`, true, result.Snapshot.ID,
	).Error)

	p := progress.New(100)
	require.NoError(t, f.svc.PerformCreate(context.Background(), result.Snapshot.ID, p))
	require.Equal(t, 100, p.Percent())

	var snapshot snapshotdomain.Snapshot
	require.NoError(t, f.db.First(&snapshot, "id = ?", result.Snapshot.ID).Error)
	require.Nil(t, snapshot.SnapshotToApplicationID)
}

func TestPerformRestoreRoundTrip(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")
	f.seedGridData(t, 100)
	snapshot := f.completedSnapshot(t, 100, "backup")

	p := progress.New(100)
	restored, err := f.svc.PerformRestore(context.Background(), snapshot.ID, p)
	require.NoError(t, err)
	require.Equal(t, 100, p.Percent())

	require.NotNil(t, restored.WorkspaceID)
	require.Equal(t, workspaceID, *restored.WorkspaceID)
	require.Equal(t, "backup", restored.Name)
	require.Equal(t, int64(2), f.countRowsOf(t, restored.ID))

	var event events.PlatformEvent
	require.NoError(t, f.db.First(&event, "event_type = ?", events.EventApplicationCreated).Error)
	require.Equal(t, restored.ID.String(), event.Payload["application_id"])
}

func TestPerformRestoreRenamesOnCollision(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")
	snapshot := f.completedSnapshot(t, 100, "Projects")

	restored, err := f.svc.PerformRestore(context.Background(), snapshot.ID, progress.New(100))
	require.NoError(t, err)
	require.Equal(t, "Projects 2", restored.Name)

	again, err := f.svc.PerformRestore(context.Background(), snapshot.ID, progress.New(100))
	require.NoError(t, err)
	require.Equal(t, "Projects 3", again.Name)
}

func TestPerformRestoreRejectsFlaggedSnapshot(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")
	snapshot := f.completedSnapshot(t, 100, "backup")

	require.NoError(t, f.db.Exec(
		`UPDATE snapshots SET mark_for_deletion = ? WHERE id = ?`, true, snapshot.ID,
	).Error)

	_, err := f.svc.PerformRestore(context.Background(), snapshot.ID, progress.New(100))
	require.ErrorIs(t, err, snapshotdomain.ErrSnapshotBeingDeleted)
}

func TestPerformDeletePurgesSnapshotAndData(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")
	f.seedGridData(t, 100)
	snapshot := f.completedSnapshot(t, 100, "backup")
	hiddenID := *snapshot.SnapshotToApplicationID

	require.NoError(t, f.svc.Delete(context.Background(), snapshot.ID, userID))

	p := progress.New(100)
	require.NoError(t, f.svc.PerformDelete(context.Background(), snapshot.ID, p))
	require.Equal(t, 100, p.Percent())

	var count int64
	require.NoError(t, f.db.Model(&snapshotdomain.Snapshot{}).Where("id = ?", snapshot.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, f.db.Model(&applicationdomain.Application{}).Where("id = ?", hiddenID).Count(&count).Error)
	require.Zero(t, count)
	require.Zero(t, f.countRowsOf(t, hiddenID))

	// Running the teardown payload again is a no-op.
	require.NoError(t, f.svc.PerformDelete(context.Background(), snapshot.ID, progress.New(100)))
}

func TestPerformCreateRemovesPayloadOnFailedImport(t *testing.T) {
	f := setup(t)
	f.seedWorkspace(t)
	f.seedApplication(t, 100, "Projects")
	f.seedGridData(t, 100)

	result, err := f.svc.Create(context.Background(), 100, userID, "backup")
	require.NoError(t, err)

	// Publishing the created event fails, rolling the import back.
	require.NoError(t, f.db.Exec(`DROP TABLE platform_events`).Error)

	err = f.svc.PerformCreate(context.Background(), result.Snapshot.ID, progress.New(100))
	require.Error(t, err)

	var snapshot snapshotdomain.Snapshot
	require.NoError(t, f.db.First(&snapshot, "id = ?", result.Snapshot.ID).Error)
	require.Nil(t, snapshot.SnapshotToApplicationID)

	// The exported payload must not linger in the bucket.
	_, err = f.bucket.List(nil).Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}
