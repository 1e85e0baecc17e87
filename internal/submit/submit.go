// Package submit implements the job submission client: validated
// submission of report, termination, and database-query jobs, plus
// polling a submitted task to its terminal state.
package submit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/pkg/errors"
	"github.com/pontohub/pontohub/pkg/logger"
	"github.com/pontohub/pontohub/pkg/telemetry"
)

// Remote is the queue service surface this client needs
type Remote interface {
	SubmitReport(ctx context.Context, reportName string, ranges []remote.DateRange) (*remote.SubmitResponse, error)
	SubmitRescisao(ctx context.Context) (*remote.SubmitResponse, error)
	SubmitDBQuery(ctx context.Context) (*remote.SubmitResponse, error)
	TaskStatus(ctx context.Context, taskID string) (*model.Task, error)
}

// JobSpec describes one job to enqueue
type JobSpec struct {
	Type       model.TaskType     `json:"type"`
	ReportName string             `json:"report_name,omitempty"`
	DateRanges []remote.DateRange `json:"date_ranges,omitempty"`
}

// Result is the submission outcome
type Result struct {
	TaskID                string `json:"task_id"`
	Message               string `json:"message"`
	QueuePosition         int    `json:"queue_position"`
	ProcessingImmediately bool   `json:"processing_immediately"`
}

// Client validates and submits jobs
type Client struct {
	remote        Remote
	watchInterval time.Duration
	log           *zap.Logger
}

// New creates a submission client. watchInterval is the status poll
// period used by Watch.
func New(r Remote, watchInterval time.Duration) *Client {
	return &Client{
		remote:        r,
		watchInterval: watchInterval,
		log:           logger.Named("submit"),
	}
}

// Submit validates the spec and enqueues the job. Validation failures
// never reach the network.
func (c *Client) Submit(ctx context.Context, spec JobSpec) (*Result, error) {
	if err := validate(spec); err != nil {
		return nil, err
	}

	var resp *remote.SubmitResponse
	var err error
	switch spec.Type {
	case model.TaskTypeReport:
		resp, err = c.remote.SubmitReport(ctx, spec.ReportName, spec.DateRanges)
	case model.TaskTypeRescisao:
		resp, err = c.remote.SubmitRescisao(ctx)
	case model.TaskTypeDBQuery:
		resp, err = c.remote.SubmitDBQuery(ctx)
	}

	telemetry.GetMetrics().RecordSubmission(string(spec.Type), err == nil)
	if err != nil {
		return nil, err
	}

	c.log.Info("Job submitted",
		zap.String("type", string(spec.Type)),
		zap.String("task_id", resp.TaskID),
		zap.Int("queue_position", resp.QueuePosition),
		zap.Bool("immediate", resp.ProcessingImmediately),
	)

	return &Result{
		TaskID:                resp.TaskID,
		Message:               resp.Message,
		QueuePosition:         resp.QueuePosition,
		ProcessingImmediately: resp.ProcessingImmediately,
	}, nil
}

func validate(spec JobSpec) *errors.AppError {
	switch spec.Type {
	case model.TaskTypeReport:
		if spec.ReportName == "" {
			return errors.ErrValidation("report name is required")
		}
		for _, r := range spec.DateRanges {
			if err := checkDate(r.StartDate); err != nil {
				return err
			}
			if err := checkDate(r.EndDate); err != nil {
				return err
			}
		}
	case model.TaskTypeRescisao, model.TaskTypeDBQuery:
		// No payload to validate
	default:
		return errors.ErrValidation(fmt.Sprintf("unknown job type %q", spec.Type))
	}
	return nil
}

func checkDate(s string) *errors.AppError {
	if _, err := time.Parse("02/01/2006", s); err != nil {
		return errors.ErrValidation(fmt.Sprintf("date must be dd/mm/yyyy, got %q", s))
	}
	return nil
}

// Watch polls a task every watchInterval until it reaches a terminal
// state or ctx is cancelled. onUpdate receives every observed
// non-terminal snapshot; the terminal task is returned exactly once and
// not passed to onUpdate. Transient poll errors are absorbed and
// retried on the next tick.
func (c *Client) Watch(ctx context.Context, taskID string, onUpdate func(*model.Task)) (*model.Task, error) {
	ticker := time.NewTicker(c.watchInterval)
	defer ticker.Stop()

	for {
		task, err := c.remote.TaskStatus(ctx, taskID)
		switch {
		case err == nil:
			if task.Status.IsTerminal() {
				c.log.Info("Watched task reached terminal state",
					zap.String("task_id", taskID),
					zap.String("status", string(task.Status)),
				)
				return task, nil
			}
			if onUpdate != nil {
				onUpdate(task)
			}
		case errors.IsTransient(err):
			c.log.Debug("Status poll failed, retrying", zap.String("task_id", taskID), zap.Error(err))
		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
