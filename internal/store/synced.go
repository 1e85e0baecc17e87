package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/logger"
)

// ScheduleSyncer pushes the current set of schedule rules to the queue
// service so it can keep firing them if this process is down.
type ScheduleSyncer interface {
	SyncSchedules(ctx context.Context, rules []model.ScheduleRule) error
}

const syncTimeout = 10 * time.Second

// syncedScheduleStore decorates a ScheduleStore with best-effort
// replication to the queue service. Mutations succeed locally even when
// the remote push fails; the local database stays the source of truth.
type syncedScheduleStore struct {
	ScheduleStore
	syncer ScheduleSyncer
	log    *zap.Logger
}

// NewSyncedScheduleStore wraps inner so every mutation is followed by a
// push of the enabled rules to the queue service.
func NewSyncedScheduleStore(inner ScheduleStore, syncer ScheduleSyncer) ScheduleStore {
	return &syncedScheduleStore{
		ScheduleStore: inner,
		syncer:        syncer,
		log:           logger.Named("schedule-sync"),
	}
}

func (s *syncedScheduleStore) Create(rule *model.ScheduleRule) error {
	if err := s.ScheduleStore.Create(rule); err != nil {
		return err
	}
	s.push()
	return nil
}

func (s *syncedScheduleStore) Update(rule *model.ScheduleRule) error {
	if err := s.ScheduleStore.Update(rule); err != nil {
		return err
	}
	s.push()
	return nil
}

func (s *syncedScheduleStore) Delete(id string) error {
	if err := s.ScheduleStore.Delete(id); err != nil {
		return err
	}
	s.push()
	return nil
}

func (s *syncedScheduleStore) SetEnabled(id string, enabled bool) (*model.ScheduleRule, error) {
	rule, err := s.ScheduleStore.SetEnabled(id, enabled)
	if err != nil {
		return nil, err
	}
	s.push()
	return rule, nil
}

// push mirrors the enabled rules to the queue service. Failures are
// logged and swallowed.
func (s *syncedScheduleStore) push() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	rules, err := s.ScheduleStore.ListEnabled(ctx)
	if err != nil {
		s.log.Warn("Failed to list rules for sync", zap.Error(err))
		return
	}

	if err := s.syncer.SyncSchedules(ctx, rules); err != nil {
		s.log.Warn("Failed to sync schedules to queue service",
			zap.Int("rules", len(rules)),
			zap.Error(err),
		)
		return
	}

	s.log.Debug("Schedules synced to queue service", zap.Int("rules", len(rules)))
}
