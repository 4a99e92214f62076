package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
)

// Snapshot is a named point-in-time copy descriptor. The data itself
// lives in a detached application referenced by
// SnapshotToApplicationID, which stays nil until the creation job
// completes. Once MarkForDeletion is set the snapshot is inert: it is
// excluded from listings and quota counts and rejects every further
// operation, even while its teardown job is still queued.
type Snapshot struct {
	ID   snowflake.ID `gorm:"primaryKey"`
	Name string       `gorm:"type:text;not null;uniqueIndex:idx_snapshots_source_name,priority:2,where:mark_for_deletion = false"`

	SnapshotFromApplicationID snowflake.ID                   `gorm:"not null;index;uniqueIndex:idx_snapshots_source_name,priority:1"`
	SnapshotFromApplication   *applicationdomain.Application `gorm:"foreignKey:SnapshotFromApplicationID"`

	SnapshotToApplicationID *snowflake.ID `gorm:"index"`

	CreatedByID snowflake.ID          `gorm:"not null"`
	CreatedBy   *workspacedomain.User `gorm:"foreignKey:CreatedByID"`

	MarkForDeletion bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null;index"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Snapshot) TableName() string { return "snapshots" }
