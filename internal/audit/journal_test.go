package audit

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"medical-consent-service/internal/adapters"
	"medical-consent-service/internal/domain/entities"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(action string) entities.AuditEvent {
	return entities.AuditEvent{
		ID:            uuid.New(),
		Action:        action,
		CallerAddress: "0xabc",
		Decision:      entities.DecisionAllowed,
		Timestamp:     time.Now().UTC(),
	}
}

func TestJournal_AppendAndTail(t *testing.T) {
	j, err := OpenMemoryJournal(zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()

	for _, a := range []string{"register", "set_consent", "add_record"} {
		_, err := j.Append(event(a))
		require.NoError(t, err)
	}

	tail, err := j.Tail(2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "set_consent", tail[0].Action)
	assert.Equal(t, "add_record", tail[1].Action)

	all, err := j.Tail(10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, uint64(3), j.Len())
}

func TestJournal_SequenceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit")

	j, err := OpenJournal(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = j.Append(event("register"))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = OpenJournal(path, zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()

	seq, err := j.Append(event("set_consent"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestJournal_HandleRejectsGarbage(t *testing.T) {
	j, err := OpenMemoryJournal(zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()

	assert.Error(t, j.Handle(context.Background(), []byte("not json")))
	assert.Equal(t, uint64(0), j.Len())
}

func TestQueueSink_DeliversToJournal(t *testing.T) {
	queue := adapters.NewInMemoryQueueAdapter(zerolog.Nop())
	j, err := OpenMemoryJournal(zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, queue.StartConsuming(context.Background(), Queue, j.Handle))
	sink := NewQueueSink(queue, zerolog.Nop())

	ev := event("rate_doctor")
	sink.Record(context.Background(), ev)
	require.NoError(t, queue.Close())

	tail, err := j.Tail(1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, ev.ID, tail[0].ID)

	raw, _ := json.Marshal(tail[0])
	assert.Contains(t, string(raw), `"decision":"allowed"`)
}
