package handler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/idgen"
)

// mockScheduleStore is an in-memory ScheduleStore for handler tests
type mockScheduleStore struct {
	rules map[string]*model.ScheduleRule
	order []string

	createErr error
	updateErr error
	deleteErr error
}

func newMockScheduleStore() *mockScheduleStore {
	return &mockScheduleStore{rules: make(map[string]*model.ScheduleRule)}
}

func (m *mockScheduleStore) Create(rule *model.ScheduleRule) error {
	if m.createErr != nil {
		return m.createErr
	}
	if rule.ID == "" {
		rule.ID = idgen.NewRuleID()
	}
	rule.CreatedAt = time.Now()
	clone := *rule
	m.rules[rule.ID] = &clone
	m.order = append(m.order, rule.ID)
	return nil
}

func (m *mockScheduleStore) GetByID(id string) (*model.ScheduleRule, error) {
	rule, ok := m.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *rule
	return &clone, nil
}

func (m *mockScheduleStore) Update(rule *model.ScheduleRule) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.rules[rule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *rule
	m.rules[rule.ID] = &clone
	return nil
}

func (m *mockScheduleStore) Delete(id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *mockScheduleStore) List() ([]model.ScheduleRule, error) {
	var out []model.ScheduleRule
	for _, id := range m.order {
		if rule, ok := m.rules[id]; ok {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (m *mockScheduleStore) ListEnabled(_ context.Context) ([]model.ScheduleRule, error) {
	var out []model.ScheduleRule
	for _, id := range m.order {
		if rule, ok := m.rules[id]; ok && rule.Enabled {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (m *mockScheduleStore) SetEnabled(id string, enabled bool) (*model.ScheduleRule, error) {
	rule, ok := m.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	rule.Enabled = enabled
	clone := *rule
	return &clone, nil
}

func (m *mockScheduleStore) MarkFired(_ context.Context, id string, at time.Time) error {
	rule, ok := m.rules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rule.LastFiredAt = &at
	return nil
}

func (m *mockScheduleStore) PurgeDeletedOlderThan(_ int) (int64, error) {
	return 0, nil
}
