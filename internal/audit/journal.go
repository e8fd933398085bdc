package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"medical-consent-service/internal/domain/entities"

	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	eventKeyPrefix = "audit_"
	seqLatestKey   = "seq_latest"
)

// Journal is an append-only LevelDB log of audit events. Keys are
// "audit_<zero-padded sequence>" so iteration order is append order.
type Journal struct {
	mu     sync.Mutex
	db     *leveldb.DB
	seq    uint64
	logger zerolog.Logger
}

// OpenJournal opens (or creates) the journal at path.
func OpenJournal(path string, logger zerolog.Logger) (*Journal, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open audit journal %s: %w", path, err)
	}
	return newJournal(db, logger)
}

// OpenMemoryJournal keeps the journal in memory.
func OpenMemoryJournal(logger zerolog.Logger) (*Journal, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory audit journal: %w", err)
	}
	return newJournal(db, logger)
}

func newJournal(db *leveldb.DB, logger zerolog.Logger) (*Journal, error) {
	j := &Journal{db: db, logger: logger.With().Str("component", "audit-journal").Logger()}
	raw, err := db.Get([]byte(seqLatestKey), nil)
	switch {
	case err == leveldb.ErrNotFound:
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("read journal sequence: %w", err)
	default:
		seq, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("corrupt journal sequence %q: %w", raw, err)
		}
		j.seq = seq
	}
	return j, nil
}

func eventKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", eventKeyPrefix, seq))
}

// Append stores the event and returns its sequence number.
func (j *Journal) Append(event entities.AuditEvent) (uint64, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	next := j.seq + 1
	batch := new(leveldb.Batch)
	batch.Put(eventKey(next), payload)
	batch.Put([]byte(seqLatestKey), []byte(strconv.FormatUint(next, 10)))
	if err := j.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("append audit event: %w", err)
	}
	j.seq = next
	return next, nil
}

// Handle is the queue consumer: it decodes one published event and appends it.
func (j *Journal) Handle(ctx context.Context, data []byte) error {
	var event entities.AuditEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode audit event: %w", err)
	}
	seq, err := j.Append(event)
	if err != nil {
		return err
	}
	j.logger.Debug().Uint64("seq", seq).Str("action", event.Action).Str("decision", string(event.Decision)).Msg("audit event journaled")
	return nil
}

// Tail returns up to n of the most recent events, oldest first.
func (j *Journal) Tail(n int) ([]entities.AuditEvent, error) {
	if n <= 0 {
		return nil, nil
	}
	iter := j.db.NewIterator(util.BytesPrefix([]byte(eventKeyPrefix)), nil)
	defer iter.Release()

	var out []entities.AuditEvent
	for ok := iter.Last(); ok && len(out) < n; ok = iter.Prev() {
		var event entities.AuditEvent
		if err := json.Unmarshal(iter.Value(), &event); err != nil {
			return nil, fmt.Errorf("decode journal entry %s: %w", iter.Key(), err)
		}
		out = append(out, event)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

func (j *Journal) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

func (j *Journal) Close() error {
	return j.db.Close()
}
