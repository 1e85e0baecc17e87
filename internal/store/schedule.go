package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/idgen"
)

// ScheduleStore defines operations for ScheduleRule models.
type ScheduleStore interface {
	Create(rule *model.ScheduleRule) error
	GetByID(id string) (*model.ScheduleRule, error)
	Update(rule *model.ScheduleRule) error
	Delete(id string) error

	List() ([]model.ScheduleRule, error)
	ListEnabled(ctx context.Context) ([]model.ScheduleRule, error)

	SetEnabled(id string, enabled bool) (*model.ScheduleRule, error)
	MarkFired(ctx context.Context, id string, at time.Time) error

	// PurgeDeletedOlderThan permanently removes soft-deleted rules
	// older than the given retention period. Returns the number of
	// rows removed.
	PurgeDeletedOlderThan(retentionDays int) (int64, error)
}

// scheduleStore implements ScheduleStore using GORM.
type scheduleStore struct {
	db *gorm.DB
}

func newScheduleStore(db *gorm.DB) ScheduleStore {
	return &scheduleStore{db: db}
}

func (s *scheduleStore) Create(rule *model.ScheduleRule) error {
	if rule.ID == "" {
		rule.ID = idgen.NewRuleID()
	}
	return s.db.Create(rule).Error
}

func (s *scheduleStore) GetByID(id string) (*model.ScheduleRule, error) {
	var rule model.ScheduleRule
	err := s.db.First(&rule, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *scheduleStore) Update(rule *model.ScheduleRule) error {
	return s.db.Save(rule).Error
}

func (s *scheduleStore) Delete(id string) error {
	return s.db.Delete(&model.ScheduleRule{}, "id = ?", id).Error
}

func (s *scheduleStore) List() ([]model.ScheduleRule, error) {
	var rules []model.ScheduleRule
	err := s.db.Order("created_at ASC").Find(&rules).Error
	return rules, err
}

func (s *scheduleStore) ListEnabled(ctx context.Context) ([]model.ScheduleRule, error) {
	var rules []model.ScheduleRule
	err := s.db.WithContext(ctx).Where("enabled = ?", true).Order("created_at ASC").Find(&rules).Error
	return rules, err
}

func (s *scheduleStore) SetEnabled(id string, enabled bool) (*model.ScheduleRule, error) {
	result := s.db.Model(&model.ScheduleRule{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.GetByID(id)
}

func (s *scheduleStore) MarkFired(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.ScheduleRule{}).
		Where("id = ?", id).
		Update("last_fired_at", at).Error
}

func (s *scheduleStore) PurgeDeletedOlderThan(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.ScheduleRule{})
	return result.RowsAffected, result.Error
}
