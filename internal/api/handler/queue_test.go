package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/reconcile"
	"github.com/pontohub/pontohub/pkg/errors"
)

type fakePartitionSource struct {
	partition reconcile.Partition
}

func (f *fakePartitionSource) Partition() reconcile.Partition {
	return f.partition
}

type fakeQueueMutator struct {
	deleted []string
	cleared int

	deleteErr error
	clearErr  error
}

func (f *fakeQueueMutator) DeletePending(_ context.Context, taskID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, taskID)
	return nil
}

func (f *fakeQueueMutator) ClearCompleted(_ context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared++
	return nil
}

func setupQueueRouter(source PartitionSource, mutator QueueMutator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewQueueHandler(source, mutator)
	r.GET("/queue", h.Get)
	r.GET("/queue/tasks/:id/position", h.Position)
	r.DELETE("/queue/tasks/:id", h.DeletePending)
	r.DELETE("/queue/history", h.ClearHistory)
	return r
}

// TestQueueHandler_Get tests fetching the reconciled queue view
func TestQueueHandler_Get(t *testing.T) {
	current := model.Task{ID: "t1", Status: "processing"}
	source := &fakePartitionSource{partition: reconcile.Partition{
		Current:  &current,
		Pending:  []model.Task{{ID: "t2", Status: "pending"}},
		History:  []model.Task{{ID: "t0", Status: "completed"}},
		Stale:    true,
		LastSync: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	router := setupQueueRouter(source, &fakeQueueMutator{})

	req, _ := http.NewRequest("GET", "/queue", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Current    *model.Task  `json:"current"`
		Pending    []model.Task `json:"pending"`
		History    []model.Task `json:"history"`
		NextInLine *model.Task  `json:"next_in_line"`
		Stale      bool         `json:"stale"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Current == nil || response.Current.ID != "t1" {
		t.Errorf("Expected current task t1, got %+v", response.Current)
	}
	if len(response.Pending) != 1 || response.Pending[0].ID != "t2" {
		t.Errorf("Expected pending [t2], got %+v", response.Pending)
	}
	if response.NextInLine == nil || response.NextInLine.ID != "t2" {
		t.Errorf("Expected next in line t2, got %+v", response.NextInLine)
	}
	if !response.Stale {
		t.Error("Expected stale flag to survive serialization")
	}
}

// TestQueueHandler_Position tests the queue position lookup
func TestQueueHandler_Position(t *testing.T) {
	source := &fakePartitionSource{partition: reconcile.Partition{
		Pending: []model.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}}
	router := setupQueueRouter(source, &fakeQueueMutator{})

	req, _ := http.NewRequest("GET", "/queue/tasks/b/position", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		TaskID        string `json:"task_id"`
		QueuePosition int    `json:"queue_position"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.QueuePosition != 2 {
		t.Errorf("Expected position 2, got %d", response.QueuePosition)
	}

	// Unknown task reports position 0
	req, _ = http.NewRequest("GET", "/queue/tasks/zzz/position", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.QueuePosition != 0 {
		t.Errorf("Expected position 0 for unknown task, got %d", response.QueuePosition)
	}
}

// TestQueueHandler_DeletePending tests removing a pending task
func TestQueueHandler_DeletePending(t *testing.T) {
	mutator := &fakeQueueMutator{}
	router := setupQueueRouter(&fakePartitionSource{}, mutator)

	req, _ := http.NewRequest("DELETE", "/queue/tasks/t9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(mutator.deleted) != 1 || mutator.deleted[0] != "t9" {
		t.Errorf("Expected delete call for t9, got %v", mutator.deleted)
	}
}

// TestQueueHandler_DeletePending_NotFound tests the 404 mapping
func TestQueueHandler_DeletePending_NotFound(t *testing.T) {
	mutator := &fakeQueueMutator{
		deleteErr: errors.New(errors.ErrCodeTaskNotFound, "Task not found"),
	}
	router := setupQueueRouter(&fakePartitionSource{}, mutator)

	req, _ := http.NewRequest("DELETE", "/queue/tasks/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// TestQueueHandler_ClearHistory tests clearing completed tasks
func TestQueueHandler_ClearHistory(t *testing.T) {
	mutator := &fakeQueueMutator{}
	router := setupQueueRouter(&fakePartitionSource{}, mutator)

	req, _ := http.NewRequest("DELETE", "/queue/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if mutator.cleared != 1 {
		t.Errorf("Expected 1 clear call, got %d", mutator.cleared)
	}
}

// TestQueueHandler_ClearHistory_RemoteDown tests the 502 mapping
func TestQueueHandler_ClearHistory_RemoteDown(t *testing.T) {
	mutator := &fakeQueueMutator{
		clearErr: errors.ErrRemoteUnavailable("queue service unreachable", nil),
	}
	router := setupQueueRouter(&fakePartitionSource{}, mutator)

	req, _ := http.NewRequest("DELETE", "/queue/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}
