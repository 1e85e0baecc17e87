// Package store provides data access operations for all models.
package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pontohub/pontohub/pkg/logger"
)

const (
	// DefaultScheduleRetentionDays is the default number of days to retain soft-deleted schedule rules
	DefaultScheduleRetentionDays = 30
	// ScheduleCleanupSchedule is the cron schedule for rule cleanup (daily at 2 AM)
	ScheduleCleanupSchedule = "0 2 * * *" // Every day at 2:00 AM
)

// ScheduleCleanupService manages periodic purging of soft-deleted schedule rules
type ScheduleCleanupService struct {
	store         ScheduleStore
	cron          *cron.Cron
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
}

// NewScheduleCleanupService creates a new schedule cleanup service
func NewScheduleCleanupService(store ScheduleStore, retentionDays int) *ScheduleCleanupService {
	if retentionDays <= 0 {
		retentionDays = DefaultScheduleRetentionDays
	}

	return &ScheduleCleanupService{
		store:         store,
		cron:          cron.New(),
		retentionDays: retentionDays,
	}
}

// Start starts the cleanup service with scheduled cleanup tasks
func (s *ScheduleCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(ScheduleCleanupSchedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule rule cleanup", zap.Error(err))
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("Schedule cleanup service started",
		zap.String("schedule", ScheduleCleanupSchedule),
		zap.Int("retention_days", s.retentionDays),
	)

	// Run initial cleanup immediately (non-blocking)
	go s.cleanup()

	return nil
}

// Stop stops the cleanup service gracefully
func (s *ScheduleCleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("Stopping schedule cleanup service")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Schedule cleanup service stopped")
	}
}

// cleanup purges soft-deleted rules past the retention window
func (s *ScheduleCleanupService) cleanup() {
	startTime := time.Now()
	deletedCount, err := s.store.PurgeDeletedOlderThan(s.retentionDays)
	if err != nil {
		logger.Error("Failed to purge deleted schedule rules",
			zap.Int("retention_days", s.retentionDays),
			zap.Error(err),
		)
		return
	}

	logger.Info("Schedule cleanup completed",
		zap.Int64("deleted_count", deletedCount),
		zap.Int("retention_days", s.retentionDays),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// SetRetentionDays updates the retention period (takes effect on next cleanup)
func (s *ScheduleCleanupService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		days = DefaultScheduleRetentionDays
	}

	s.retentionDays = days
	logger.Info("Schedule retention days updated",
		zap.Int("retention_days", days),
	)
}
