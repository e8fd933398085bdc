// Package audit carries access-control decisions out of the engine: a Sink
// publishes them on a queue and a Journal persists what it consumes.
package audit

import (
	"context"
	"encoding/json"

	"medical-consent-service/internal/adapters"
	"medical-consent-service/internal/domain/entities"

	"github.com/rs/zerolog"
)

// Queue is the queue name audit events travel on.
const Queue = "audit_events"

// Sink receives every decision. Implementations must not block the caller
// for long and must not fail the operation being audited.
type Sink interface {
	Record(ctx context.Context, event entities.AuditEvent)
}

type NopSink struct{}

func (NopSink) Record(context.Context, entities.AuditEvent) {}

// QueueSink publishes events as JSON through a QueueAdapter.
type QueueSink struct {
	queue  adapters.QueueAdapter
	logger zerolog.Logger
}

func NewQueueSink(queue adapters.QueueAdapter, logger zerolog.Logger) *QueueSink {
	return &QueueSink{queue: queue, logger: logger.With().Str("component", "audit-sink").Logger()}
}

func (s *QueueSink) Record(ctx context.Context, event entities.AuditEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("action", event.Action).Msg("marshal audit event")
		return
	}
	// Detached from the request so a cancelled caller still leaves a trail.
	if err := s.queue.Publish(context.WithoutCancel(ctx), Queue, payload); err != nil {
		s.logger.Error().Err(err).Str("action", event.Action).Str("event_id", event.ID.String()).Msg("publish audit event")
	}
}
