// Package reconcile maintains a local view of the remote task queue.
// Each poll fetches the full task set and re-partitions it from
// scratch; there is no incremental diffing. A failed poll keeps the
// previous partition so transient network errors never blank the
// dashboard.
package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/errors"
	"github.com/pontohub/pontohub/pkg/logger"
	"github.com/pontohub/pontohub/pkg/telemetry"
)

// TaskSource fetches the full remote task list
type TaskSource interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
}

// Partition is the reconciled view of the queue at one poll
type Partition struct {
	// Current is the single processing task, nil when the worker is idle
	Current *model.Task `json:"current,omitempty"`
	// Pending preserves server order
	Pending []model.Task `json:"pending"`
	// History holds terminal tasks
	History []model.Task `json:"history"`
	// Stale is set when the newest poll failed and this partition is a
	// carried-over snapshot
	Stale bool `json:"stale"`
	// LastSync is the wall-clock time of the last successful poll
	LastSync time.Time `json:"last_sync"`
}

// QueuePosition returns the 1-based position of a pending task, or 0
// when the task is not pending
func (p Partition) QueuePosition(taskID string) int {
	for i, task := range p.Pending {
		if task.ID == taskID {
			return i + 1
		}
	}
	return 0
}

// NextInLine returns the first pending task, or nil
func (p Partition) NextInLine() *model.Task {
	if len(p.Pending) == 0 {
		return nil
	}
	next := p.Pending[0]
	return &next
}

// Subscriber receives the partition after every successful poll and
// after the first failed poll that marks it stale
type Subscriber func(Partition)

// Reconciler polls the remote queue and publishes partitions
type Reconciler struct {
	source   TaskSource
	interval time.Duration

	mu        sync.RWMutex
	partition Partition
	subs      map[int]Subscriber
	nextSub   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running bool
	runMu   sync.Mutex

	failing bool

	log *zap.Logger
}

// New creates a reconciler polling the given source
func New(ctx context.Context, source TaskSource, interval time.Duration) *Reconciler {
	reconcileCtx, cancel := context.WithCancel(ctx)
	return &Reconciler{
		source:   source,
		interval: interval,
		subs:     make(map[int]Subscriber),
		ctx:      reconcileCtx,
		cancel:   cancel,
		log:      logger.Named("reconcile"),
	}
}

// Start begins polling. Safe to call once; repeated calls are no-ops.
func (r *Reconciler) Start() {
	r.runMu.Lock()
	if r.running {
		r.runMu.Unlock()
		return
	}
	r.running = true
	r.runMu.Unlock()

	r.log.Info("Starting queue reconciler", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.loop()
}

// Stop cancels the poll loop and waits for it to exit
func (r *Reconciler) Stop() {
	r.cancel()
	r.wg.Wait()
	r.log.Info("Queue reconciler stopped")
}

func (r *Reconciler) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pollOnce()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce()
		}
	}
}

func (r *Reconciler) pollOnce() {
	start := time.Now()
	tasks, err := r.source.ListTasks(r.ctx)
	telemetry.GetMetrics().RecordPoll("queue", err == nil, time.Since(start).Seconds())

	if err != nil {
		if r.ctx.Err() != nil {
			return
		}
		if errors.IsTransient(err) && r.failing {
			r.log.Debug("Task list fetch still failing", zap.Error(err))
		} else {
			r.log.Warn("Task list fetch failed, keeping last known partition", zap.Error(err))
		}
		r.failing = true
		r.markStale()
		return
	}
	r.failing = false

	partition := partitionTasks(tasks, time.Now(), r.log)
	telemetry.GetMetrics().RecordQueueSnapshot(currentCount(partition), len(partition.Pending), len(partition.History))

	r.publish(partition)
}

func currentCount(p Partition) int {
	if p.Current != nil {
		return 1
	}
	return 0
}

// partitionTasks splits the server task list. At most one task should
// be processing at a time; when the contract is violated the first in
// server order wins and the rest are treated as history.
func partitionTasks(tasks []model.Task, now time.Time, log *zap.Logger) Partition {
	p := Partition{
		Pending:  []model.Task{},
		History:  []model.Task{},
		LastSync: now,
	}

	for _, task := range tasks {
		switch task.Status {
		case model.TaskStatusProcessing:
			if p.Current == nil {
				current := task
				p.Current = &current
			} else {
				log.Warn("Multiple processing tasks reported by queue service",
					zap.String("kept", p.Current.ID),
					zap.String("extra", task.ID),
				)
				p.History = append(p.History, task)
			}
		case model.TaskStatusPending:
			p.Pending = append(p.Pending, task)
		default:
			p.History = append(p.History, task)
		}
	}

	return p
}

// markStale republishes the previous partition flagged stale. Only the
// first failure triggers a notification.
func (r *Reconciler) markStale() {
	r.mu.Lock()
	if r.partition.Stale {
		r.mu.Unlock()
		return
	}
	r.partition.Stale = true
	snapshot := r.partition
	subs := r.subscribersLocked()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (r *Reconciler) publish(p Partition) {
	r.mu.Lock()
	r.partition = p
	subs := r.subscribersLocked()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// Partition returns the current reconciled view
func (r *Reconciler) Partition() Partition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.partition
}

// Subscribe registers a callback for partition updates. The returned
// function removes the subscription.
func (r *Reconciler) Subscribe(fn Subscriber) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Reconciler) subscribersLocked() []Subscriber {
	out := make([]Subscriber, 0, len(r.subs))
	for _, fn := range r.subs {
		out = append(out, fn)
	}
	return out
}
