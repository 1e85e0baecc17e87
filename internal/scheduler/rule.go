// Package scheduler implements the recurrence scheduler: a minute tick
// that evaluates schedule rules against wall-clock time and enqueues
// report jobs when a rule comes due.
package scheduler

import (
	"fmt"
	"time"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/pkg/errors"
)

// dateLayout is the dd/mm/yyyy format the queue service expects
const dateLayout = "02/01/2006"

// IsDue reports whether the rule should fire at the given instant. The
// decision is pure: suppression of repeat fires within the same minute
// is the service's job, not this function's.
func IsDue(rule model.ScheduleRule, now time.Time) bool {
	if !rule.Enabled {
		return false
	}
	if rule.Time != now.Format("15:04") {
		return false
	}

	switch rule.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		// Weekday numbering matches time.Weekday: 0=Sunday
		return rule.Days.Contains(int(now.Weekday()))
	case model.FrequencyMonthly:
		return now.Day() == rule.DayOfMonth
	}
	return false
}

// ResolveWindow computes the report date window for a date mode at fire
// time. The same rule yields a different window on every firing.
func ResolveWindow(mode model.DateMode, now time.Time) remote.DateRange {
	var first, last time.Time

	switch mode {
	case model.DateModePreviousMonth:
		firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last = firstOfCurrent.AddDate(0, 0, -1)
		first = time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, now.Location())
	case model.DateModeCurrentYear:
		first = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		last = time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
	default: // current_month
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last = first.AddDate(0, 1, -1)
	}

	return remote.DateRange{
		StartDate: first.Format(dateLayout),
		EndDate:   last.Format(dateLayout),
	}
}

// Validate rejects misconfigured rules at authoring time, before they
// are persisted. Fire-time evaluation assumes a valid rule.
func Validate(rule *model.ScheduleRule) *errors.AppError {
	if _, err := time.Parse("15:04", rule.Time); err != nil {
		return errors.ErrScheduleInvalid(fmt.Sprintf("time must be HH:MM, got %q", rule.Time))
	}

	switch rule.Frequency {
	case model.FrequencyDaily:
	case model.FrequencyWeekly:
		if len(rule.Days) == 0 {
			return errors.ErrScheduleInvalid("weekly rules need at least one weekday")
		}
		for _, d := range rule.Days {
			if d < 0 || d > 6 {
				return errors.ErrScheduleInvalid(fmt.Sprintf("weekday must be 0-6, got %d", d))
			}
		}
	case model.FrequencyMonthly:
		if rule.DayOfMonth < 1 || rule.DayOfMonth > 28 {
			return errors.ErrScheduleInvalid(fmt.Sprintf("day of month must be 1-28, got %d", rule.DayOfMonth))
		}
	default:
		return errors.ErrScheduleInvalid(fmt.Sprintf("unknown frequency %q", rule.Frequency))
	}

	switch rule.DateMode {
	case model.DateModeCurrentMonth, model.DateModePreviousMonth, model.DateModeCurrentYear:
	default:
		return errors.ErrScheduleInvalid(fmt.Sprintf("unknown date mode %q", rule.DateMode))
	}

	if len(rule.Reports) == 0 {
		return errors.ErrScheduleInvalid("at least one report must be selected")
	}
	for _, id := range rule.Reports {
		if _, ok := model.ReportByID(id); !ok {
			return errors.ErrScheduleInvalid(fmt.Sprintf("unknown report id %d", id))
		}
	}

	return nil
}
