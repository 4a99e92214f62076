package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

// Audited snapshot lifecycle actions.
const (
	ActionSnapshotCreate  = "snapshot.create"
	ActionSnapshotRestore = "snapshot.restore"
	ActionSnapshotDelete  = "snapshot.delete"
	ActionSnapshotExpire  = "snapshot.expire"
)

// TargetTypeSnapshot is the audit target for snapshot records.
const TargetTypeSnapshot = "snapshot"

// AuditLog captures an immutable record of a lifecycle action.
type AuditLog struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	WorkspaceID *snowflake.ID     `gorm:"index"`
	ActorType   string            `gorm:"type:text;not null"`
	ActorID     *string           `gorm:"type:text"`
	Action      string            `gorm:"type:text;not null;index"`
	TargetType  string            `gorm:"type:text;not null"`
	TargetID    *string           `gorm:"type:text"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
