package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/pkg/logger"
	"github.com/pontohub/pontohub/pkg/telemetry"
)

// evaluationSchedule drives rule evaluation once per minute
const evaluationSchedule = "* * * * *"

// RuleSource lists the rules to evaluate and records fires
type RuleSource interface {
	ListEnabled(ctx context.Context) ([]model.ScheduleRule, error)
	MarkFired(ctx context.Context, ruleID string, at time.Time) error
}

// JobSubmitter enqueues the jobs a firing rule produces
type JobSubmitter interface {
	SubmitReport(ctx context.Context, reportName string, ranges []remote.DateRange) (*remote.SubmitResponse, error)
	SubmitDBQuery(ctx context.Context) (*remote.SubmitResponse, error)
}

// Service evaluates all enabled rules on a minute tick and fires the
// due ones. A rule fires at most once per matching minute, however the
// tick aligns with the wall clock.
type Service struct {
	rules     RuleSource
	submitter JobSubmitter

	cron    *cron.Cron
	entryID cron.EntryID

	// lastFired maps rule id to the minute it last fired
	lastFired map[string]string
	mu        sync.Mutex

	// nowFn is replaceable in tests
	nowFn func() time.Time

	ctx context.Context
	log *zap.Logger
}

// New creates a scheduler service
func New(ctx context.Context, rules RuleSource, submitter JobSubmitter) *Service {
	return &Service{
		rules:     rules,
		submitter: submitter,
		cron:      cron.New(),
		lastFired: make(map[string]string),
		nowFn:     time.Now,
		ctx:       ctx,
		log:       logger.Named("scheduler"),
	}
}

// Start registers the evaluation tick and starts the cron scheduler
func (s *Service) Start() error {
	entryID, err := s.cron.AddFunc(evaluationSchedule, s.tick)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()

	s.log.Info("Scheduler started", zap.String("schedule", evaluationSchedule))
	return nil
}

// Stop halts the cron scheduler and waits for a running tick to finish
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info("Scheduler stopped")
	}
}

// tick evaluates every enabled rule against the current minute
func (s *Service) tick() {
	now := s.nowFn()

	rules, err := s.rules.ListEnabled(s.ctx)
	if err != nil {
		s.log.Warn("Failed to list schedule rules", zap.Error(err))
		return
	}

	minute := now.Format("2006-01-02 15:04")
	for _, rule := range rules {
		if !IsDue(rule, now) {
			continue
		}
		if s.alreadyFired(rule.ID, minute) {
			continue
		}
		s.fire(rule, now)
	}
}

func (s *Service) alreadyFired(ruleID, minute string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFired[ruleID] == minute {
		return true
	}
	s.lastFired[ruleID] = minute
	return false
}

// fire submits one job per report referenced by the rule. Submission
// failures are logged and counted; the remaining reports still go out.
func (s *Service) fire(rule model.ScheduleRule, now time.Time) {
	window := ResolveWindow(rule.DateMode, now)

	s.log.Info("Schedule rule fired",
		zap.String("rule_id", rule.ID),
		zap.String("name", rule.Name),
		zap.Int("reports", len(rule.Reports)),
		zap.String("window_start", window.StartDate),
		zap.String("window_end", window.EndDate),
	)

	for _, reportID := range rule.Reports {
		report, ok := model.ReportByID(reportID)
		if !ok {
			s.log.Warn("Rule references unknown report", zap.String("rule_id", rule.ID), zap.Int("report_id", reportID))
			continue
		}

		var err error
		switch {
		case report.Type == model.ReportTypeDatabase:
			_, err = s.submitter.SubmitDBQuery(s.ctx)
		case report.RequiresDate:
			_, err = s.submitter.SubmitReport(s.ctx, report.Name, []remote.DateRange{window})
		default:
			_, err = s.submitter.SubmitReport(s.ctx, report.Name, nil)
		}

		telemetry.GetMetrics().RecordScheduleFire(report.Name, err == nil)
		if err != nil {
			s.log.Warn("Scheduled submission failed",
				zap.String("rule_id", rule.ID),
				zap.String("report", report.Name),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("Scheduled report submitted",
			zap.String("rule_id", rule.ID),
			zap.String("report", report.Name),
		)
	}

	if err := s.rules.MarkFired(s.ctx, rule.ID, now); err != nil {
		s.log.Warn("Failed to record rule fire time", zap.String("rule_id", rule.ID), zap.Error(err))
	}
}

// RunNow fires a rule immediately, outside its recurrence. Used by the
// manual trigger endpoint.
func (s *Service) RunNow(rule model.ScheduleRule) {
	s.fire(rule, s.nowFn())
}
