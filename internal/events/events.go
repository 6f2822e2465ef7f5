// Package events fans committed audit events out to downstream sinks: a
// Redis stream for other services and the SSE live feed for analyst
// sessions. Sinks never block the command that produced the events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

// Envelope is the wire form of an audit event.
type Envelope struct {
	EventID   uuid.UUID        `json:"event_id"`
	Kind      domain.AuditKind `json:"kind"`
	RecordID  int64            `json:"record_id"`
	Text      string           `json:"text"`
	Actor     string           `json:"actor,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewEnvelope wraps e with a fresh event id.
func NewEnvelope(e domain.AuditEvent) Envelope {
	return Envelope{
		EventID:   uuid.New(),
		Kind:      e.Kind,
		RecordID:  e.RecordID,
		Text:      e.Text,
		Actor:     e.Actor,
		Timestamp: e.Timestamp.UTC(),
	}
}

// Sink accepts envelopes without blocking on I/O.
type Sink interface {
	Name() string
	Send(ctx context.Context, envelopes []Envelope) error
}

// Fanout hands every batch to each sink in order and records the outcome.
type Fanout struct {
	sinks     []Sink
	telemetry *telemetry.Provider
	log       infralogger.Logger
}

// NewFanout drops nil sinks so optional ones can be passed unconditionally.
func NewFanout(log infralogger.Logger, tp *telemetry.Provider, sinks ...Sink) *Fanout {
	f := &Fanout{telemetry: tp, log: log}
	for _, s := range sinks {
		if s != nil && !isNilSink(s) {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func isNilSink(s Sink) bool {
	switch v := s.(type) {
	case *StreamPublisher:
		return v == nil
	case *Feed:
		return v == nil
	default:
		return false
	}
}

// Len reports the number of active sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Publish implements the review service's publisher.
func (f *Fanout) Publish(ctx context.Context, events []domain.AuditEvent) {
	if len(events) == 0 || len(f.sinks) == 0 {
		return
	}

	envelopes := make([]Envelope, len(events))
	for i, e := range events {
		envelopes[i] = NewEnvelope(e)
	}

	for _, s := range f.sinks {
		err := s.Send(ctx, envelopes)
		f.telemetry.RecordPublish(s.Name(), err)
		if err != nil {
			f.log.Warn("Audit event fan-out failed",
				infralogger.String("sink", s.Name()),
				infralogger.Int("events", len(envelopes)),
				infralogger.Error(err),
			)
		}
	}
}
