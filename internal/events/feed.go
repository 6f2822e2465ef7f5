package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/sse"
)

const (
	feedSinkName = "sse"
	// FeedEventPrefix prefixes SSE event types, e.g. "audit.status".
	FeedEventPrefix = "audit."
)

// Feed publishes envelopes to the SSE broker behind the live feed.
type Feed struct {
	broker sse.Broker
}

// NewFeed returns nil when b is nil.
func NewFeed(b sse.Broker) *Feed {
	if b == nil {
		return nil
	}
	return &Feed{broker: b}
}

// Name identifies the sink.
func (f *Feed) Name() string { return feedSinkName }

// Send publishes each envelope; the first broker error stops the batch.
func (f *Feed) Send(ctx context.Context, envelopes []Envelope) error {
	if f == nil {
		return nil
	}
	for _, env := range envelopes {
		if err := f.broker.Publish(ctx, sse.Event{
			Type: FeedEventPrefix + string(env.Kind),
			ID:   env.EventID.String(),
			Data: env,
		}); err != nil {
			return fmt.Errorf("publish %s for record %d: %w", env.Kind, env.RecordID, err)
		}
	}
	return nil
}

// RecordFilter limits a subscription to one record; a blank id passes all.
func RecordFilter(recordID string) (sse.EventFilter, error) {
	if recordID == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(recordID, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid record id %q", recordID)
	}
	return func(e sse.Event) bool {
		env, ok := e.Data.(Envelope)
		return ok && env.RecordID == id
	}, nil
}
