package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event describes a platform event to store in the outbox.
type Event struct {
	WorkspaceID snowflake.ID
	Type        string
	Payload     map[string]any
	DedupeKey   string
}

// PlatformEvent is the persisted outbox row.
type PlatformEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	WorkspaceID snowflake.ID      `gorm:"not null;index"`
	EventType   string            `gorm:"type:text;not null"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	DedupeKey   *string           `gorm:"type:text;uniqueIndex:idx_platform_events_dedupe"`
	Published   bool              `gorm:"not null;default:false"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PlatformEvent) TableName() string { return "platform_events" }

// Outbox inserts platform events into the platform_events table.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Publish stores an event using the default database connection.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	return o.publish(ctx, o.db, event)
}

// PublishTx stores an event using an existing transaction.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	return o.publish(ctx, tx, event)
}

func (o *Outbox) publish(ctx context.Context, db *gorm.DB, event Event) error {
	if o == nil || db == nil || o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	if event.WorkspaceID == 0 {
		return errors.New("invalid_workspace_id")
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return errors.New("missing_event_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	var dedupe *string
	if key := strings.TrimSpace(event.DedupeKey); key != "" {
		dedupe = &key
	}

	record := &PlatformEvent{
		ID:          o.genID.Generate(),
		WorkspaceID: event.WorkspaceID,
		EventType:   name,
		Payload:     payload,
		DedupeKey:   dedupe,
		CreatedAt:   time.Now().UTC(),
	}
	err := db.WithContext(ctx).Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A retried job already published this event.
		return nil
	}
	return err
}
