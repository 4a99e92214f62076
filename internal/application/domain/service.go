package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// FindUnusedName returns base, or base suffixed with a counter,
	// such that no application in the workspace carries the name yet.
	FindUnusedName(ctx context.Context, workspaceID snowflake.ID, base string) (string, error)
}
