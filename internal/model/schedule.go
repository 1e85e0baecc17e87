package model

import (
	"time"

	"gorm.io/gorm"
)

// Frequency represents how often a schedule rule recurs
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// DateMode selects the report date window resolved at fire time
type DateMode string

const (
	DateModeCurrentMonth  DateMode = "current_month"
	DateModePreviousMonth DateMode = "previous_month"
	DateModeCurrentYear   DateMode = "current_year"
)

// ScheduleRule is a user-owned recurrence rule for report generation.
// The scheduler only reads it; all mutation happens through the CRUD API.
type ScheduleRule struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Enabled bool   `gorm:"default:true;index" json:"enabled"`

	// Time is the local fire time in "HH:MM"
	Time      string    `gorm:"size:5;not null" json:"time"`
	Frequency Frequency `gorm:"size:20;not null;default:daily" json:"frequency"`

	// Days holds weekday numbers for weekly rules (0=Sunday..6=Saturday)
	Days IntArray `gorm:"type:json" json:"days,omitempty"`
	// DayOfMonth is the fire day for monthly rules, restricted to 1-28
	// so every month qualifies
	DayOfMonth int `gorm:"default:1" json:"dayOfMonth,omitempty"`

	DateMode DateMode `gorm:"size:20;not null;default:current_month" json:"dateMode"`
	// Reports holds report catalog ids to submit on fire
	Reports IntArray `gorm:"type:json;not null" json:"reports"`

	// LastFiredAt records the last successful fire, for display only
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
}

// ScheduleFireDecision is the ephemeral outcome of one evaluation tick
type ScheduleFireDecision struct {
	RuleID  string    `json:"rule_id"`
	Due     bool      `json:"due"`
	FiredAt time.Time `json:"fired_at"`
}

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&ScheduleRule{},
	}
}
