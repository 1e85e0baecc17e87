package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontohub/pontohub/internal/logbuf"
	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/internal/remote"
)

func raw(ts, level, msg string) remote.RawLogEntry {
	return remote.RawLogEntry{Timestamp: ts, Level: level, Message: msg}
}

func TestTracker_FollowsBuffer(t *testing.T) {
	buf := logbuf.NewBuffer(100, 200)
	tracker := NewTracker(buf, 20)
	tracker.Start()
	defer tracker.Stop()

	tracker.SetRoster([]model.Collaborator{{Nome: "Ana", Meses: 3}})

	var updates []Snapshot
	tracker.Subscribe(func(s Snapshot) {
		updates = append(updates, s)
	})

	buf.Append([]remote.RawLogEntry{
		raw("t1", "info", "RESCISAO_MES_CONCLUIDO:Ana:1/3"),
	})
	buf.Append([]remote.RawLogEntry{
		raw("t2", "info", "RESCISAO_MES_CONCLUIDO:Ana:2/3"),
	})

	require.Len(t, updates, 2)
	assert.Equal(t, 1, updates[0].Collaborators[0].Processados)
	assert.Equal(t, 2, updates[1].Collaborators[0].Processados)
	assert.Equal(t, 67, updates[1].Collaborators[0].Percent())
}

func TestTracker_NoUpdateWithoutChange(t *testing.T) {
	buf := logbuf.NewBuffer(100, 200)
	tracker := NewTracker(buf, 20)
	tracker.Start()
	defer tracker.Stop()

	tracker.SetRoster([]model.Collaborator{{Nome: "Ana", Meses: 3}})

	var calls int
	tracker.Subscribe(func(Snapshot) { calls++ })

	// A line that matches no marker changes nothing
	buf.Append([]remote.RawLogEntry{raw("t1", "info", "linha comum")})
	assert.Equal(t, 0, calls)
}

func TestTracker_CurrentAction(t *testing.T) {
	buf := logbuf.NewBuffer(100, 200)
	tracker := NewTracker(buf, 20)
	tracker.Start()
	defer tracker.Stop()

	buf.Append([]remote.RawLogEntry{
		raw("t1", "info", "👤 Processando colaborador: Ana"),
	})

	assert.Equal(t, "👤 Processando colaborador: Ana", tracker.Snapshot().CurrentAction)

	// Non-glyph lines keep the previous action visible
	buf.Append([]remote.RawLogEntry{raw("t2", "info", "linha comum")})
	assert.Equal(t, "👤 Processando colaborador: Ana", tracker.Snapshot().CurrentAction)
}

func TestTracker_SetRosterRecomputesFromBuffer(t *testing.T) {
	buf := logbuf.NewBuffer(100, 200)
	buf.Append([]remote.RawLogEntry{
		raw("t1", "info", "RESCISAO_MES_CONCLUIDO:Bruno:2/4"),
	})

	tracker := NewTracker(buf, 20)
	tracker.Start()
	defer tracker.Stop()

	// Roster arriving after the logs still picks up prior markers
	tracker.SetRoster([]model.Collaborator{{Nome: "Bruno", Meses: 4}})

	snap := tracker.Snapshot()
	require.Len(t, snap.Collaborators, 1)
	assert.Equal(t, 2, snap.Collaborators[0].Processados)
}

func TestTracker_Unsubscribe(t *testing.T) {
	buf := logbuf.NewBuffer(100, 200)
	tracker := NewTracker(buf, 20)
	tracker.Start()
	defer tracker.Stop()
	tracker.SetRoster([]model.Collaborator{{Nome: "Ana", Meses: 3}})

	var calls int
	unsubscribe := tracker.Subscribe(func(Snapshot) { calls++ })
	unsubscribe()

	buf.Append([]remote.RawLogEntry{
		raw("t1", "info", "RESCISAO_MES_CONCLUIDO:Ana:1/3"),
	})
	assert.Equal(t, 0, calls)
}
