package domain

import "errors"

var (
	ErrWorkspaceNotFound  = errors.New("workspace_not_found")
	ErrUserNotInWorkspace = errors.New("user_not_in_workspace")
)
