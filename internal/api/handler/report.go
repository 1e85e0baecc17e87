package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pontohub/pontohub/internal/model"
)

// ReportsHandler serves the static report catalog
type ReportsHandler struct{}

// NewReportsHandler creates a new reports handler
func NewReportsHandler() *ReportsHandler {
	return &ReportsHandler{}
}

// List handles GET /api/v1/reports
func (h *ReportsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reports": model.ReportCatalog(),
	})
}
