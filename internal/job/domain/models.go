package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// State is the lifecycle state of a background job.
type State string

const (
	StatePending  State = "pending"
	StateRunning  State = "running"
	StateFinished State = "finished"
	StateFailed   State = "failed"
)

// Job is one unit of asynchronous work. The snapshot reference ties a
// job to the snapshot it creates, restores or tears down.
type Job struct {
	ID         snowflake.ID  `gorm:"primaryKey"`
	Type       string        `gorm:"type:text;not null;index"`
	State      State         `gorm:"type:text;not null;index"`
	SnapshotID *snowflake.ID `gorm:"index"`
	CreatedBy  snowflake.ID  `gorm:"not null"`
	Progress   int           `gorm:"not null;default:0"`
	Error      string        `gorm:"type:text"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// TableName sets the database table name.
func (Job) TableName() string { return "jobs" }

// IsActive reports whether the job is pending or running.
func (j *Job) IsActive() bool {
	return j.State == StatePending || j.State == StateRunning
}
