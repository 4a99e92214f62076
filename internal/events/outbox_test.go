package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutbox(t *testing.T) (*Outbox, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&PlatformEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewOutbox(db, node), db
}

func TestPublishStoresEvent(t *testing.T) {
	outbox, db := setupOutbox(t)

	err := outbox.Publish(context.Background(), Event{
		WorkspaceID: 1,
		Type:        EventSnapshotCreated,
		Payload:     map[string]any{"snapshot_id": "42"},
	})
	require.NoError(t, err)

	var event PlatformEvent
	require.NoError(t, db.First(&event, "event_type = ?", EventSnapshotCreated).Error)
	require.Equal(t, "42", event.Payload["snapshot_id"])
}

func TestPublishDeduplicates(t *testing.T) {
	outbox, db := setupOutbox(t)

	event := Event{
		WorkspaceID: 1,
		Type:        EventSnapshotCreated,
		Payload:     map[string]any{"snapshot_id": "42"},
		DedupeKey:   "snapshot_created:42",
	}
	require.NoError(t, outbox.Publish(context.Background(), event))
	// A retried job publishing the same event must not fail.
	require.NoError(t, outbox.Publish(context.Background(), event))

	var count int64
	require.NoError(t, db.Model(&PlatformEvent{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPublishRejectsMissingType(t *testing.T) {
	outbox, _ := setupOutbox(t)
	err := outbox.Publish(context.Background(), Event{WorkspaceID: 1, Type: "   "})
	require.Error(t, err)
}

func TestPublishTxRequiresTransaction(t *testing.T) {
	outbox, _ := setupOutbox(t)
	err := outbox.PublishTx(context.Background(), nil, Event{WorkspaceID: 1, Type: "x"})
	require.Error(t, err)
}
