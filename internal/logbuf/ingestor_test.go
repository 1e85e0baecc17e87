package logbuf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/pkg/errors"
)

// fakeSource returns queued responses in order, then repeats the last
type fakeSource struct {
	responses []tailResponse
	calls     int
}

type tailResponse struct {
	logs []remote.RawLogEntry
	err  error
}

func (f *fakeSource) TailLogs(_ context.Context) ([]remote.RawLogEntry, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[idx]
	return r.logs, r.err
}

func TestIngestor_PollOnce(t *testing.T) {
	buf := NewBuffer(100, 200)
	src := &fakeSource{responses: []tailResponse{
		{logs: []remote.RawLogEntry{entry("t1", "a"), entry("t2", "b")}},
	}}

	ing := NewIngestor(context.Background(), buf, src, time.Second)
	ing.pollOnce()

	assert.Equal(t, 2, buf.Len())
}

func TestIngestor_FailedPollLeavesBufferUnchanged(t *testing.T) {
	buf := NewBuffer(100, 200)
	src := &fakeSource{responses: []tailResponse{
		{logs: []remote.RawLogEntry{entry("t1", "a")}},
		{err: errors.ErrRemoteUnavailable("queue service unreachable", nil)},
		{logs: []remote.RawLogEntry{entry("t1", "a"), entry("t2", "b")}},
	}}

	ing := NewIngestor(context.Background(), buf, src, time.Second)

	ing.pollOnce()
	assert.Equal(t, 1, buf.Len())

	ing.pollOnce() // transient failure absorbed
	assert.Equal(t, 1, buf.Len())

	ing.pollOnce() // recovery picks up only the new line
	assert.Equal(t, 2, buf.Len())
}

func TestIngestor_StartStop(t *testing.T) {
	buf := NewBuffer(100, 200)
	src := &fakeSource{responses: []tailResponse{
		{logs: []remote.RawLogEntry{entry("t1", "a")}},
	}}

	ing := NewIngestor(context.Background(), buf, src, 10*time.Millisecond)
	ing.Start()
	ing.Start() // second call is a no-op

	deadline := time.After(time.Second)
	for buf.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("ingestor never polled")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ing.Stop()
	assert.Equal(t, 1, buf.Len())
}
