package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *apiError) Error() string { return e.Code }

func invalidRequestError() error {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request"}
}

func newValidationError(field, code, message string) error {
	return &apiError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// AbortWithError translates domain errors into HTTP responses. Unknown
// errors become opaque 500s so that internal details never leak.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, apiErr)
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrForbidden),
		errors.Is(err, workspacedomain.ErrUserNotInWorkspace):
		status, code = http.StatusForbidden, "user_not_in_workspace"
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, applicationdomain.ErrApplicationNotFound):
		status, code = http.StatusNotFound, "application_not_found"
	case errors.Is(err, snapshotdomain.ErrSnapshotNotFound):
		status, code = http.StatusNotFound, "snapshot_not_found"
	case errors.Is(err, jobdomain.ErrJobNotFound):
		status, code = http.StatusNotFound, "job_not_found"
	case errors.Is(err, workspacedomain.ErrWorkspaceNotFound):
		status, code = http.StatusNotFound, "workspace_not_found"
	case errors.Is(err, applicationdomain.ErrOperationNotSupported),
		errors.Is(err, applicationdomain.ErrUnknownType):
		status, code = http.StatusBadRequest, "application_operation_not_supported"
	case errors.Is(err, snapshotdomain.ErrMaximumSnapshotsReached):
		status, code = http.StatusBadRequest, "maximum_snapshots_reached"
	case errors.Is(err, snapshotdomain.ErrSnapshotNameNotUnique):
		status, code = http.StatusBadRequest, "snapshot_name_not_unique"
	case errors.Is(err, snapshotdomain.ErrSnapshotBeingCreated):
		status, code = http.StatusConflict, "snapshot_being_created"
	case errors.Is(err, snapshotdomain.ErrSnapshotBeingRestored):
		status, code = http.StatusConflict, "snapshot_being_restored"
	case errors.Is(err, snapshotdomain.ErrSnapshotBeingDeleted):
		status, code = http.StatusConflict, "snapshot_being_deleted"
	case errors.Is(err, ErrRateLimited):
		status, code = http.StatusTooManyRequests, "rate_limited"
	}

	c.AbortWithStatusJSON(status, &apiError{Status: status, Code: code})
}
