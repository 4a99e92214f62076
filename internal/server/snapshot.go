package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/gridbase/gridbase/internal/snapshot/domain"
)

type snapshotResponse struct {
	ID                        string  `json:"id"`
	Name                      string  `json:"name"`
	SnapshotFromApplicationID string  `json:"snapshot_from_application_id"`
	SnapshotToApplicationID   *string `json:"snapshot_to_application_id"`
	CreatedBy                 string  `json:"created_by"`
	CreatedAt                 string  `json:"created_at"`
}

func toSnapshotResponse(snapshot *snapshotdomain.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		ID:                        snapshot.ID.String(),
		Name:                      snapshot.Name,
		SnapshotFromApplicationID: snapshot.SnapshotFromApplicationID.String(),
		CreatedBy:                 snapshot.CreatedByID.String(),
		CreatedAt:                 snapshot.CreatedAt.UTC().Format(time.RFC3339),
	}
	if snapshot.SnapshotToApplicationID != nil {
		target := snapshot.SnapshotToApplicationID.String()
		resp.SnapshotToApplicationID = &target
	}
	return resp
}

func (s *Server) ListSnapshots(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	applicationID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	snapshots, err := s.snapshotSvc.List(c.Request.Context(), applicationID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]snapshotResponse, 0, len(snapshots))
	for i := range snapshots {
		items = append(items, toSnapshotResponse(&snapshots[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

type createSnapshotRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateSnapshot(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	applicationID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !s.createLimiter.Allow(userID.String()) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}

	result, err := s.snapshotSvc.Create(c.Request.Context(), applicationID, userID, name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot": toSnapshotResponse(result.Snapshot),
		"job":      toJobResponse(result.Job),
	})
}

func (s *Server) RestoreSnapshot(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	snapshotID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	job, err := s.snapshotSvc.Restore(c.Request.Context(), snapshotID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": toJobResponse(job)})
}

func (s *Server) DeleteSnapshot(c *gin.Context) {
	userID, ok := s.userIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	snapshotID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.snapshotSvc.Delete(c.Request.Context(), snapshotID, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "scheduled"})
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, newValidationError(name, "missing_id", name+" is required")
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(name, "invalid_id", "invalid "+name)
	}
	return id, nil
}
