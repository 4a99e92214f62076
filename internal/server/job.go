package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jobdomain "github.com/gridbase/gridbase/internal/job/domain"
)

type jobResponse struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	State      string  `json:"state"`
	Progress   int     `json:"progress"`
	SnapshotID *string `json:"snapshot_id,omitempty"`
	Error      string  `json:"error,omitempty"`
	CreatedAt  string  `json:"created_at"`
	FinishedAt *string `json:"finished_at,omitempty"`
}

func toJobResponse(job *jobdomain.Job) jobResponse {
	resp := jobResponse{
		ID:        job.ID.String(),
		Type:      job.Type,
		State:     string(job.State),
		Progress:  job.Progress,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.SnapshotID != nil {
		id := job.SnapshotID.String()
		resp.SnapshotID = &id
	}
	if job.FinishedAt != nil {
		finished := job.FinishedAt.UTC().Format(time.RFC3339)
		resp.FinishedAt = &finished
	}
	return resp
}

// GetJob returns the state of a background job so clients can poll
// snapshot creation and restore for completion.
func (s *Server) GetJob(c *gin.Context) {
	if _, ok := s.userIDFromContext(c); !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	job, err := s.jobRepo.FindByID(c.Request.Context(), s.db, jobID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": toJobResponse(job)})
}
