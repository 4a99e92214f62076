package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service exposes the membership check the rest of the platform relies
// on for authorization.
type Service interface {
	// CheckUser returns ErrUserNotInWorkspace unless the user is a
	// member of the workspace. Template workspaces are never
	// considered accessible through this check.
	CheckUser(ctx context.Context, workspace *Workspace, userID snowflake.ID) error
}
