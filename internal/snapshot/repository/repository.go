package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gridbase/gridbase/internal/db"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() snapshotdomain.Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, conn *gorm.DB, snapshot *snapshotdomain.Snapshot) error {
	err := conn.WithContext(ctx).Create(snapshot).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return snapshotdomain.ErrSnapshotNameNotUnique
	}
	return err
}

func (r *Repository) Update(ctx context.Context, conn *gorm.DB, snapshot *snapshotdomain.Snapshot) error {
	return conn.WithContext(ctx).
		Omit("SnapshotFromApplication", "CreatedBy").
		Save(snapshot).Error
}

func (r *Repository) Purge(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Exec(`DELETE FROM snapshots WHERE id = ?`, id).Error
}

func (r *Repository) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*snapshotdomain.Snapshot, error) {
	var snapshot snapshotdomain.Snapshot
	err := conn.WithContext(ctx).
		Preload("SnapshotFromApplication").
		Preload("SnapshotFromApplication.Workspace").
		Preload("CreatedBy").
		First(&snapshot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, snapshotdomain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *Repository) LockByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	query := fmt.Sprintf(`SELECT id FROM snapshots WHERE id = ? %s`, db.ForUpdate(conn))
	var ids []int64
	if err := conn.WithContext(ctx).Raw(query, id).Scan(&ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return snapshotdomain.ErrSnapshotNotFound
	}
	return nil
}

func (r *Repository) ListLive(ctx context.Context, conn *gorm.DB, applicationID snowflake.ID) ([]snapshotdomain.Snapshot, error) {
	var snapshots []snapshotdomain.Snapshot
	err := conn.WithContext(ctx).
		Preload("CreatedBy").
		Where("snapshot_from_application_id = ?", applicationID).
		Where("snapshot_to_application_id IS NOT NULL").
		Where("mark_for_deletion = ?", false).
		Order("created_at DESC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *Repository) CountLiveInWorkspace(ctx context.Context, conn *gorm.DB, workspaceID snowflake.ID) (int64, error) {
	var count int64
	err := conn.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM snapshots s
		 JOIN applications a ON a.id = s.snapshot_from_application_id
		 WHERE a.workspace_id = ? AND s.mark_for_deletion = ?`,
		workspaceID,
		false,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) CountLive(ctx context.Context, conn *gorm.DB) (int64, error) {
	var count int64
	err := conn.WithContext(ctx).
		Model(&snapshotdomain.Snapshot{}).
		Where("mark_for_deletion = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) LockBySource(ctx context.Context, conn *gorm.DB, applicationID snowflake.ID) ([]snapshotdomain.Snapshot, error) {
	query := fmt.Sprintf(
		`SELECT * FROM snapshots
		 WHERE snapshot_from_application_id = ? AND mark_for_deletion = ?
		 ORDER BY id
		 %s`,
		db.ForUpdate(conn),
	)
	var snapshots []snapshotdomain.Snapshot
	if err := conn.WithContext(ctx).Raw(query, applicationID, false).Scan(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *Repository) LockExpired(ctx context.Context, conn *gorm.DB, threshold time.Time) ([]snapshotdomain.Snapshot, error) {
	query := fmt.Sprintf(
		`SELECT * FROM snapshots
		 WHERE created_at < ? AND mark_for_deletion = ?
		 ORDER BY id
		 %s`,
		db.ForUpdate(conn),
	)
	var snapshots []snapshotdomain.Snapshot
	if err := conn.WithContext(ctx).Raw(query, threshold, false).Scan(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
