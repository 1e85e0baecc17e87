package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/reconcile"
	"github.com/pontohub/pontohub/pkg/logger"
)

// PartitionSource exposes the last reconciled queue view
type PartitionSource interface {
	Partition() reconcile.Partition
}

// QueueMutator is the queue service surface for queue mutations
type QueueMutator interface {
	DeletePending(ctx context.Context, taskID string) error
	ClearCompleted(ctx context.Context) error
}

// QueueHandler serves the reconciled queue view and queue mutations
type QueueHandler struct {
	source PartitionSource
	remote QueueMutator
	log    *zap.Logger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(source PartitionSource, remote QueueMutator) *QueueHandler {
	return &QueueHandler{
		source: source,
		remote: remote,
		log:    logger.Named("queue-handler"),
	}
}

// Get handles GET /api/v1/queue
// Returns the last reconciled partition. The stale flag tells the
// frontend the snapshot is a carry-over from before a failed poll.
func (h *QueueHandler) Get(c *gin.Context) {
	p := h.source.Partition()
	c.JSON(http.StatusOK, gin.H{
		"current":      p.Current,
		"pending":      p.Pending,
		"history":      p.History,
		"next_in_line": p.NextInLine(),
		"stale":        p.Stale,
		"last_sync":    p.LastSync,
	})
}

// Position handles GET /api/v1/queue/tasks/:id/position
func (h *QueueHandler) Position(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Task ID is required")
		return
	}

	p := h.source.Partition()
	c.JSON(http.StatusOK, gin.H{
		"task_id":        id,
		"queue_position": p.QueuePosition(id),
	})
}

// DeletePending handles DELETE /api/v1/queue/tasks/:id
// Only pending tasks can be removed; the queue service rejects attempts
// to delete the processing task.
func (h *QueueHandler) DeletePending(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Task ID is required")
		return
	}

	if err := h.remote.DeletePending(c.Request.Context(), id); err != nil {
		h.log.Warn("Failed to delete pending task", zap.String("task_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "task removed from queue",
		"task_id": id,
	})
}

// ClearHistory handles DELETE /api/v1/queue/history
func (h *QueueHandler) ClearHistory(c *gin.Context) {
	if err := h.remote.ClearCompleted(c.Request.Context()); err != nil {
		h.log.Warn("Failed to clear completed tasks", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "completed tasks cleared",
	})
}
