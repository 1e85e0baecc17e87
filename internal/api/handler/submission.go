package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/internal/submit"
	"github.com/pontohub/pontohub/pkg/logger"
)

// TaskStatusSource fetches a single task's live status from the queue
// service
type TaskStatusSource interface {
	TaskStatus(ctx context.Context, taskID string) (*model.Task, error)
}

// SubmissionHandler enqueues jobs on the queue service and reports
// their status
type SubmissionHandler struct {
	client *submit.Client
	remote TaskStatusSource
	log    *zap.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(client *submit.Client, rc TaskStatusSource) *SubmissionHandler {
	return &SubmissionHandler{
		client: client,
		remote: rc,
		log:    logger.Named("submission-handler"),
	}
}

// submitRequest is the POST body for job submission
type submitRequest struct {
	Type       model.TaskType     `json:"type" binding:"required"`
	ReportName string             `json:"report_name"`
	DateRanges []remote.DateRange `json:"date_ranges"`
}

// Create handles POST /api/v1/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.client.Submit(c.Request.Context(), submit.JobSpec{
		Type:       req.Type,
		ReportName: req.ReportName,
		DateRanges: req.DateRanges,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("Job submitted",
		zap.String("type", string(req.Type)),
		zap.String("task_id", result.TaskID),
		zap.Int("queue_position", result.QueuePosition),
	)

	c.JSON(http.StatusAccepted, result)
}

// Status handles GET /api/v1/submissions/:id
func (h *SubmissionHandler) Status(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Task ID is required")
		return
	}

	task, err := h.remote.TaskStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Wait handles GET /api/v1/submissions/:id/wait
// Long-polls the task until it reaches a terminal state, then returns
// its final snapshot. The request context bounds the wait: a client
// disconnect or timeout stops the polling.
func (h *SubmissionHandler) Wait(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Task ID is required")
		return
	}

	task, err := h.client.Watch(c.Request.Context(), id, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}
