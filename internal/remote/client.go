// Package remote implements the HTTP client for the queue service, the
// external system that owns the task queue and the execution log. All
// task and log state observed by this application originates here.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pontohub/pontohub/internal/config"
	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/errors"
)

// Client calls the queue service REST API
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a queue service client from configuration
func New(cfg config.QueueServiceConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// RawLogEntry is one line of the remote log tail, before the ingestion
// buffer assigns it a local id
type RawLogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// DateRange is a report date window in dd/mm/yyyy
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SubmitResponse is the queue service's answer to any job submission
type SubmitResponse struct {
	TaskID                string `json:"task_id"`
	Message               string `json:"message"`
	QueuePosition         int    `json:"queue_position"`
	ProcessingImmediately bool   `json:"processing_immediately"`
}

// TailLogs fetches the remote log tail. Successive calls may return
// overlapping windows; deduplication is the caller's job.
func (c *Client) TailLogs(ctx context.Context) ([]RawLogEntry, error) {
	var out struct {
		Logs []RawLogEntry `json:"logs"`
	}
	if err := c.get(ctx, "/api/logs", &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// ListTasks fetches the full task set: history, queue, and current
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out struct {
		Tasks []model.Task `json:"tasks"`
		Total int          `json:"total"`
	}
	if err := c.get(ctx, "/api/queue/all", &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// TaskStatus fetches a single task by id
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*model.Task, error) {
	var task model.Task
	if err := c.get(ctx, "/api/queue/task/"+taskID, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SubmitReport enqueues a scraping report job. Reports without a date
// requirement pass a nil ranges slice.
func (c *Client) SubmitReport(ctx context.Context, reportName string, ranges []DateRange) (*SubmitResponse, error) {
	body := map[string]interface{}{
		"report_name": reportName,
	}
	if len(ranges) > 0 {
		body["date_ranges"] = ranges
	}
	var out SubmitResponse
	if err := c.post(ctx, "/api/reports/download", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitRescisao enqueues a termination batch run. The roster lives on
// the queue service side; the request carries no payload.
func (c *Client) SubmitRescisao(ctx context.Context) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := c.post(ctx, "/api/rescisao/process", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitDBQuery enqueues the fixed trainees database query
func (c *Client) SubmitDBQuery(ctx context.Context) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := c.post(ctx, "/api/reports/database", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePending removes a pending task from the queue
func (c *Client) DeletePending(ctx context.Context, taskID string) error {
	return c.delete(ctx, "/api/queue/task/"+taskID)
}

// ClearCompleted removes finished tasks from the remote history
func (c *Client) ClearCompleted(ctx context.Context) error {
	return c.delete(ctx, "/api/queue/clear")
}

// SyncSchedules mirrors the local schedule rules to the queue service.
// The service keeps its own copy only as a fallback; local rules remain
// the source of truth.
func (c *Client) SyncSchedules(ctx context.Context, rules []model.ScheduleRule) error {
	body := map[string]interface{}{
		"schedules": rules,
	}
	return c.post(ctx, "/api/schedules/sync", body, nil)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.ErrInternal("failed to create request", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.ErrInternal("failed to marshal request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.ErrInternal("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return errors.ErrInternal("failed to create request", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.ErrRemoteUnavailable("queue service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.New(errors.ErrCodeTaskNotFound, "task not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.New(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("queue service returned status %d: %s", resp.StatusCode, string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeRemoteRejected, "failed to decode queue service response", err)
	}
	return nil
}
