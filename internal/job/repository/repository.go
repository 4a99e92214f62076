package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() jobdomain.Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, job *jobdomain.Job) error {
	return db.WithContext(ctx).Create(job).Error
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*jobdomain.Job, error) {
	var job jobdomain.Job
	err := db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, jobdomain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *Repository) CountActive(ctx context.Context, db *gorm.DB, jobType string, filter jobdomain.ActiveFilter) (int64, error) {
	query := db.WithContext(ctx).
		Model(&jobdomain.Job{}).
		Where("type = ? AND state IN ?", jobType, []jobdomain.State{jobdomain.StatePending, jobdomain.StateRunning})

	if filter.SnapshotID != nil {
		query = query.Where("snapshot_id = ?", *filter.SnapshotID)
	}
	if filter.SnapshotSourceApplicationID != nil {
		query = query.Where(
			"snapshot_id IN (SELECT id FROM snapshots WHERE snapshot_from_application_id = ?)",
			*filter.SnapshotSourceApplicationID,
		)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
