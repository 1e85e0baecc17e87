// Package logbuf implements the log ingestion buffer: an in-memory,
// deduplicated mirror of the remote execution log. The remote log has no
// stable line identifier and successive tail fetches return overlapping
// windows, so correctness rests entirely on the dedup key.
package logbuf

import (
	"sync"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/remote"
)

// Default sizing, overridable through config
const (
	DefaultCapacity      = 1000
	DefaultDedupCapacity = 2000
)

// Subscriber receives a snapshot of the full ordered sequence after
// every change. One notification per Append call, however many entries
// it carried.
type Subscriber func([]model.LogEntry)

// Buffer is the deduplicated log mirror. One writer (the ingest
// poller), many readers.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	dedupCap int

	nextID  int64
	entries []model.LogEntry

	// seen tracks dedup keys; seenOrder drives FIFO eviction once the
	// key set outgrows dedupCap
	seen      map[string]struct{}
	seenOrder []string

	subs    map[int]Subscriber
	nextSub int
}

// NewBuffer creates a buffer with the given entry and dedup-key bounds
func NewBuffer(capacity, dedupCapacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if dedupCapacity < capacity {
		dedupCapacity = DefaultDedupCapacity
	}
	return &Buffer{
		capacity: capacity,
		dedupCap: dedupCapacity,
		seen:     make(map[string]struct{}),
		subs:     make(map[int]Subscriber),
	}
}

// dedupKey identifies a remote log line across overlapping tail fetches
func dedupKey(timestamp, message string) string {
	return timestamp + "\n" + message
}

// Append ingests a batch of raw entries, discarding duplicates. It
// returns the number of accepted and rejected entries. Subscribers are
// notified once, after the whole batch is applied.
func (b *Buffer) Append(raw []remote.RawLogEntry) (accepted, rejected int) {
	b.mu.Lock()

	for _, r := range raw {
		key := dedupKey(r.Timestamp, r.Message)
		if _, dup := b.seen[key]; dup {
			rejected++
			continue
		}
		b.rememberKey(key)

		b.nextID++
		b.entries = append(b.entries, model.LogEntry{
			ID:        b.nextID,
			Timestamp: r.Timestamp,
			Level:     model.LogLevel(r.Level),
			Message:   r.Message,
		})
		accepted++
	}

	// Evict oldest entries past capacity
	if n := len(b.entries) - b.capacity; n > 0 {
		b.entries = append([]model.LogEntry(nil), b.entries[n:]...)
	}

	var snapshot []model.LogEntry
	var subs []Subscriber
	if accepted > 0 {
		snapshot = b.snapshotLocked()
		subs = b.subscribersLocked()
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return accepted, rejected
}

// rememberKey records a dedup key, evicting the oldest once the set is
// full. Caller holds the write lock.
func (b *Buffer) rememberKey(key string) {
	if len(b.seenOrder) >= b.dedupCap {
		oldest := b.seenOrder[0]
		b.seenOrder = b.seenOrder[1:]
		delete(b.seen, oldest)
	}
	b.seen[key] = struct{}{}
	b.seenOrder = append(b.seenOrder, key)
}

// Snapshot returns a copy of the current ordered sequence
func (b *Buffer) Snapshot() []model.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Buffer) snapshotLocked() []model.LogEntry {
	out := make([]model.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of buffered entries
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Clear drops all buffered entries. The dedup key set is kept so that
// lines already consumed do not reappear on the next overlapping fetch.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries = nil
	snapshot := []model.LogEntry{}
	subs := b.subscribersLocked()
	b.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers a callback invoked with a full snapshot after
// every change. The returned function removes the subscription.
func (b *Buffer) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Buffer) subscribersLocked() []Subscriber {
	out := make([]Subscriber, 0, len(b.subs))
	for _, fn := range b.subs {
		out = append(out, fn)
	}
	return out
}
