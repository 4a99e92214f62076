package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gridbase/gridbase/internal/progress"
	"gocloud.dev/blob"
	"gorm.io/gorm"
)

// Serialized points at a serialized application payload in the blob
// bucket.
type Serialized struct {
	Key string `json:"key"`
}

// Type describes the behavior of one application type. Capabilities
// are explicit methods on the descriptor; nothing is looked up from
// global state.
type Type interface {
	Name() string
	SupportsSnapshots() bool

	// ExportSerialized writes the application's full contents (schema
	// and data) to the bucket and returns a reference to the payload.
	ExportSerialized(ctx context.Context, db *gorm.DB, app *Application, bucket *blob.Bucket) (*Serialized, error)

	// ImportSerialized reconstructs an application from a serialized
	// payload into the given workspace. A nil workspaceID produces a
	// detached application. The progress scope is fully consumed on
	// success.
	ImportSerialized(ctx context.Context, db *gorm.DB, workspaceID *snowflake.ID, serialized *Serialized, bucket *blob.Bucket, p *progress.Progress) (*Application, error)
}

// Registry holds the known application type descriptors.
type Registry struct {
	types map[string]Type
}

func NewRegistry(types ...Type) *Registry {
	registry := &Registry{types: make(map[string]Type, len(types))}
	for _, t := range types {
		registry.types[t.Name()] = t
	}
	return registry
}

func (r *Registry) Get(name string) (Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, ErrUnknownType
	}
	return t, nil
}
