package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"github.com/stretchr/testify/require"
)

func abortStatus(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	AbortWithError(c, err)
	return recorder.Code
}

func TestAbortWithErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{snapshotdomain.ErrSnapshotNotFound, http.StatusNotFound},
		{workspacedomain.ErrUserNotInWorkspace, http.StatusForbidden},
		{snapshotdomain.ErrMaximumSnapshotsReached, http.StatusBadRequest},
		{snapshotdomain.ErrSnapshotNameNotUnique, http.StatusBadRequest},
		{snapshotdomain.ErrSnapshotBeingCreated, http.StatusConflict},
		{snapshotdomain.ErrSnapshotBeingRestored, http.StatusConflict},
		{snapshotdomain.ErrSnapshotBeingDeleted, http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("some unexpected failure"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, abortStatus(t, tc.err), "error %v", tc.err)
	}
}

func TestAbortWithErrorValidation(t *testing.T) {
	status := abortStatus(t, newValidationError("name", "required", "name is required"))
	require.Equal(t, http.StatusBadRequest, status)
}
