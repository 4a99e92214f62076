package events

// Platform event types emitted by the snapshot lifecycle. Downstream
// listeners (caches, search indices) consume them from the outbox.
const (
	EventSnapshotCreated    = "snapshot_created"
	EventSnapshotDeleted    = "snapshot_deleted"
	EventApplicationCreated = "application_created"
)

// ApplicationCreatedPayload announces a new user-facing application,
// including ones produced by a snapshot restore.
type ApplicationCreatedPayload struct {
	ApplicationID string `json:"application_id"`
	WorkspaceID   string `json:"workspace_id"`
	SnapshotID    string `json:"snapshot_id,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ApplicationCreatedPayload) ToMap() map[string]any {
	payload := map[string]any{
		"application_id": p.ApplicationID,
		"workspace_id":   p.WorkspaceID,
	}
	if p.SnapshotID != "" {
		payload["snapshot_id"] = p.SnapshotID
	}
	return payload
}

// SnapshotPayload carries the minimal data for snapshot lifecycle
// events.
type SnapshotPayload struct {
	SnapshotID          string `json:"snapshot_id"`
	SourceApplicationID string `json:"source_application_id"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p SnapshotPayload) ToMap() map[string]any {
	return map[string]any{
		"snapshot_id":           p.SnapshotID,
		"source_application_id": p.SourceApplicationID,
	}
}
