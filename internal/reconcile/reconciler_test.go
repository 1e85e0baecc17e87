package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/errors"
	"github.com/pontohub/pontohub/pkg/logger"
)

type fakeSource struct {
	responses []listResponse
	calls     int
}

type listResponse struct {
	tasks []model.Task
	err   error
}

func (f *fakeSource) ListTasks(_ context.Context) ([]model.Task, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[idx]
	return r.tasks, r.err
}

func task(id string, status model.TaskStatus) model.Task {
	return model.Task{ID: id, Type: model.TaskTypeReport, Status: status}
}

func TestPartitionTasks(t *testing.T) {
	tasks := []model.Task{
		task("t1", model.TaskStatusProcessing),
		task("t2", model.TaskStatusPending),
		task("t3", model.TaskStatusPending),
		task("t4", model.TaskStatusCompleted),
		task("t5", model.TaskStatusError),
	}

	p := partitionTasks(tasks, time.Now(), logger.Get())

	require.NotNil(t, p.Current)
	assert.Equal(t, "t1", p.Current.ID)
	require.Len(t, p.Pending, 2)
	assert.Equal(t, 1, p.QueuePosition("t2"))
	assert.Equal(t, 2, p.QueuePosition("t3"))
	assert.Equal(t, 0, p.QueuePosition("t4"))
	assert.Len(t, p.History, 2)

	next := p.NextInLine()
	require.NotNil(t, next)
	assert.Equal(t, "t2", next.ID)
}

func TestPartitionTasks_MultipleProcessing(t *testing.T) {
	// More than one processing task violates the single-worker
	// contract; the first in server order wins.
	tasks := []model.Task{
		task("t1", model.TaskStatusProcessing),
		task("t2", model.TaskStatusProcessing),
	}

	p := partitionTasks(tasks, time.Now(), logger.Get())

	require.NotNil(t, p.Current)
	assert.Equal(t, "t1", p.Current.ID)
	assert.Len(t, p.History, 1)
}

func TestPartitionTasks_Empty(t *testing.T) {
	p := partitionTasks(nil, time.Now(), logger.Get())
	assert.Nil(t, p.Current)
	assert.Empty(t, p.Pending)
	assert.Nil(t, p.NextInLine())
}

func TestReconciler_PollAndPublish(t *testing.T) {
	src := &fakeSource{responses: []listResponse{
		{tasks: []model.Task{
			task("t1", model.TaskStatusProcessing),
			task("t2", model.TaskStatusPending),
		}},
	}}
	r := New(context.Background(), src, time.Second)

	var updates []Partition
	r.Subscribe(func(p Partition) { updates = append(updates, p) })

	r.pollOnce()

	require.Len(t, updates, 1)
	assert.False(t, updates[0].Stale)
	require.NotNil(t, updates[0].Current)
	assert.Equal(t, "t1", updates[0].Current.ID)
	assert.False(t, r.Partition().LastSync.IsZero())
}

func TestReconciler_FailedPollKeepsPartition(t *testing.T) {
	src := &fakeSource{responses: []listResponse{
		{tasks: []model.Task{
			task("t1", model.TaskStatusProcessing),
			task("t2", model.TaskStatusPending),
		}},
		{err: errors.ErrRemoteUnavailable("queue service unreachable", nil)},
		{err: errors.ErrRemoteUnavailable("queue service unreachable", nil)},
	}}
	r := New(context.Background(), src, time.Second)

	var updates []Partition
	r.Subscribe(func(p Partition) { updates = append(updates, p) })

	r.pollOnce()
	goodSync := r.Partition().LastSync

	r.pollOnce() // failure: partition survives, flagged stale
	p := r.Partition()
	assert.True(t, p.Stale)
	require.NotNil(t, p.Current)
	assert.Equal(t, "t1", p.Current.ID)
	assert.Equal(t, 1, p.QueuePosition("t2"))
	assert.Equal(t, goodSync, p.LastSync, "failed poll must not advance last sync")

	r.pollOnce() // repeated failure publishes nothing new
	assert.Len(t, updates, 2)
}

func TestReconciler_RecoveryClearsStale(t *testing.T) {
	src := &fakeSource{responses: []listResponse{
		{err: errors.ErrRemoteUnavailable("queue service unreachable", nil)},
		{tasks: []model.Task{task("t1", model.TaskStatusPending)}},
	}}
	r := New(context.Background(), src, time.Second)

	r.pollOnce()
	assert.True(t, r.Partition().Stale)

	r.pollOnce()
	p := r.Partition()
	assert.False(t, p.Stale)
	assert.Equal(t, 1, p.QueuePosition("t1"))
}

func TestReconciler_StartStop(t *testing.T) {
	src := &fakeSource{responses: []listResponse{
		{tasks: []model.Task{task("t1", model.TaskStatusPending)}},
	}}
	r := New(context.Background(), src, 10*time.Millisecond)
	r.Start()
	r.Start() // no-op

	deadline := time.After(time.Second)
	for r.Partition().LastSync.IsZero() {
		select {
		case <-deadline:
			t.Fatal("reconciler never polled")
		case <-time.After(5 * time.Millisecond):
		}
	}

	r.Stop()
	assert.Equal(t, 1, r.Partition().QueuePosition("t1"))
}
