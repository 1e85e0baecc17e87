package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/logbuf"
	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/logger"
)

// Snapshot is the derived progress state published to subscribers
type Snapshot struct {
	Collaborators []model.Collaborator `json:"collaborators"`
	CurrentAction string               `json:"current_action,omitempty"`
}

// Subscriber receives a snapshot whenever derived progress changes
type Subscriber func(Snapshot)

// Tracker composes the log buffer with the collaborator roster and
// keeps the derived progress state current. Re-running inference over
// the same buffer is idempotent, so the tracker simply recomputes on
// every buffer change and publishes only when something differs.
type Tracker struct {
	buffer *logbuf.Buffer
	window int

	mu      sync.RWMutex
	collabs []model.Collaborator
	action  string
	subs    map[int]Subscriber
	nextSub int

	unsubscribe func()

	running bool
	runMu   sync.Mutex

	log *zap.Logger
}

// NewTracker creates a tracker over the given buffer. window bounds the
// current-action backward scan.
func NewTracker(buffer *logbuf.Buffer, window int) *Tracker {
	return &Tracker{
		buffer: buffer,
		window: window,
		subs:   make(map[int]Subscriber),
		log:    logger.Named("progress"),
	}
}

// Start subscribes to buffer changes. Safe to call once.
func (t *Tracker) Start() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	if t.running {
		return
	}
	t.running = true

	t.unsubscribe = t.buffer.Subscribe(func(logs []model.LogEntry) {
		t.recompute(logs)
	})
	t.log.Info("Progress tracker started")
}

// Stop detaches from the buffer
func (t *Tracker) Stop() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	t.log.Info("Progress tracker stopped")
}

// SetRoster replaces the tracked collaborator set. Derived fields are
// reset and immediately re-inferred from the current buffer contents.
func (t *Tracker) SetRoster(collabs []model.Collaborator) {
	reset := make([]model.Collaborator, len(collabs))
	for i, c := range collabs {
		c.Processados = 0
		c.Erros = nil
		reset[i] = c
	}

	t.mu.Lock()
	t.collabs = reset
	t.mu.Unlock()

	t.log.Info("Roster replaced", zap.Int("collaborators", len(reset)))
	t.recompute(t.buffer.Snapshot())
}

// Snapshot returns a copy of the current derived state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	collabs := make([]model.Collaborator, len(t.collabs))
	copy(collabs, t.collabs)
	return Snapshot{Collaborators: collabs, CurrentAction: t.action}
}

// Subscribe registers a callback invoked after every change to the
// derived state. The returned function removes the subscription.
func (t *Tracker) Subscribe(fn Subscriber) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *Tracker) recompute(logs []model.LogEntry) {
	t.mu.Lock()

	updated, changed := Infer(logs, t.collabs)
	action := CurrentAction(logs, t.window)
	// An empty scan keeps the previous action on screen, mirroring the
	// original dashboard behavior
	actionChanged := action != "" && action != t.action

	if !changed && !actionChanged {
		t.mu.Unlock()
		return
	}

	t.collabs = updated
	if actionChanged {
		t.action = action
	}
	snapshot := t.snapshotLocked()
	subs := make([]Subscriber, 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
