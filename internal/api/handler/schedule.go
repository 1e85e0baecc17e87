package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/scheduler"
	"github.com/pontohub/pontohub/internal/store"
	apperrors "github.com/pontohub/pontohub/pkg/errors"
	"github.com/pontohub/pontohub/pkg/logger"
)

// ScheduleHandler manages schedule rule CRUD and manual firing
type ScheduleHandler struct {
	store store.ScheduleStore
	sched *scheduler.Service
	log   *zap.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(s store.ScheduleStore, sched *scheduler.Service) *ScheduleHandler {
	return &ScheduleHandler{
		store: s,
		sched: sched,
		log:   logger.Named("schedule-handler"),
	}
}

// scheduleRequest is the POST/PUT body for schedule rules
type scheduleRequest struct {
	Name       string          `json:"name" binding:"required"`
	Enabled    *bool           `json:"enabled"`
	Time       string          `json:"time" binding:"required"`
	Frequency  model.Frequency `json:"frequency" binding:"required"`
	Days       model.IntArray  `json:"days"`
	DayOfMonth int             `json:"dayOfMonth"`
	DateMode   model.DateMode  `json:"dateMode" binding:"required"`
	Reports    model.IntArray  `json:"reports" binding:"required"`
}

func (r *scheduleRequest) toRule() *model.ScheduleRule {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	dayOfMonth := r.DayOfMonth
	if dayOfMonth == 0 {
		dayOfMonth = 1
	}
	return &model.ScheduleRule{
		Name:       r.Name,
		Enabled:    enabled,
		Time:       r.Time,
		Frequency:  r.Frequency,
		Days:       r.Days,
		DayOfMonth: dayOfMonth,
		DateMode:   r.DateMode,
		Reports:    r.Reports,
	}
}

// List handles GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	rules, err := h.store.List()
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrCodeDBQuery, "failed to list schedules", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedules": rules,
		"total":     len(rules),
	})
}

// Get handles GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rule)
}

// Create handles POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body: "+err.Error())
		return
	}

	rule := req.toRule()
	if err := scheduler.Validate(rule); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Create(rule); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrCodeDBQuery, "failed to create schedule", err))
		return
	}

	h.log.Info("Schedule rule created",
		zap.String("rule_id", rule.ID),
		zap.String("name", rule.Name),
		zap.String("frequency", string(rule.Frequency)),
	)

	c.JSON(http.StatusCreated, rule)
}

// Update handles PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body: "+err.Error())
		return
	}

	updated := req.toRule()
	updated.ID = rule.ID
	updated.CreatedAt = rule.CreatedAt
	updated.LastFiredAt = rule.LastFiredAt

	if err := scheduler.Validate(updated); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Update(updated); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrCodeDBQuery, "failed to update schedule", err))
		return
	}

	h.log.Info("Schedule rule updated", zap.String("rule_id", updated.ID))
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}

	if err := h.store.Delete(rule.ID); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrCodeDBQuery, "failed to delete schedule", err))
		return
	}

	h.log.Info("Schedule rule deleted", zap.String("rule_id", rule.ID))
	c.JSON(http.StatusOK, gin.H{
		"message": "schedule deleted",
		"id":      rule.ID,
	})
}

// toggleRequest is the POST body for enabling or disabling a rule
type toggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// Toggle handles POST /api/v1/schedules/:id/toggle
func (h *ScheduleHandler) Toggle(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Schedule ID is required")
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body: "+err.Error())
		return
	}

	rule, err := h.store.SetEnabled(id, *req.Enabled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperrors.New(apperrors.ErrCodeScheduleNotFound, "Schedule not found"))
			return
		}
		respondError(c, apperrors.Wrap(apperrors.ErrCodeDBQuery, "failed to toggle schedule", err))
		return
	}

	h.log.Info("Schedule rule toggled",
		zap.String("rule_id", id),
		zap.Bool("enabled", rule.Enabled),
	)
	c.JSON(http.StatusOK, rule)
}

// RunNow handles POST /api/v1/schedules/:id/run
// Fires the rule immediately regardless of its timing fields. The date
// window is resolved at fire time, same as a scheduled firing.
func (h *ScheduleHandler) RunNow(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}

	h.sched.RunNow(*rule)

	h.log.Info("Schedule rule fired manually", zap.String("rule_id", rule.ID))
	c.JSON(http.StatusAccepted, gin.H{
		"message": "schedule fired",
		"id":      rule.ID,
	})
}

// loadRule fetches the rule named by the :id param, writing the error
// response on failure
func (h *ScheduleHandler) loadRule(c *gin.Context) (*model.ScheduleRule, bool) {
	id := c.Param("id")
	if id == "" {
		respondValidation(c, "Schedule ID is required")
		return nil, false
	}

	rule, err := h.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperrors.New(apperrors.ErrCodeScheduleNotFound, "Schedule not found"))
			return nil, false
		}
		respondError(c, apperrors.Wrap(apperrors.ErrCodeDBQuery, "failed to load schedule", err))
		return nil, false
	}
	return rule, true
}
