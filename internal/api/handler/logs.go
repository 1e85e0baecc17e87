package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pontohub/pontohub/internal/logbuf"
)

// LogsHandler serves the in-memory log buffer
type LogsHandler struct {
	buffer *logbuf.Buffer
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(buffer *logbuf.Buffer) *LogsHandler {
	return &LogsHandler{buffer: buffer}
}

// List handles GET /api/v1/logs
func (h *LogsHandler) List(c *gin.Context) {
	logs := h.buffer.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
	})
}

// Clear handles DELETE /api/v1/logs
// Dropped entries stay in the dedup index so the next poll does not
// re-ingest lines the remote still reports.
func (h *LogsHandler) Clear(c *gin.Context) {
	h.buffer.Clear()
	c.JSON(http.StatusOK, gin.H{
		"message": "log buffer cleared",
	})
}
