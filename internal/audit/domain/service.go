package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Entry is one action to record. A nil ActorID means the system acted
// on its own (expiration sweeps, bulk teardown).
type Entry struct {
	WorkspaceID *snowflake.ID
	ActorID     *snowflake.ID
	Action      string
	TargetType  string
	TargetID    string
	Metadata    map[string]any
}

// Service records lifecycle actions. Recording is best-effort; callers
// must not fail an operation because its audit write failed.
type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}
