// Package sse fans events out to Server-Sent Events subscribers.
package sse

import (
	"context"
	"time"
)

// Event is one SSE message: "event: <Type>\nid: <ID>\ndata: <json Data>\n\n".
type Event struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Data any    `json:"data"`
}

// EventFilter reports whether a subscriber wants event.
type EventFilter func(event Event) bool

// Broker distributes published events to subscribers.
type Broker interface {
	// Publish enqueues event without blocking; it fails when the queue is full.
	Publish(ctx context.Context, event Event) error
	// Subscribe registers a subscriber until ctx ends or cancel is called.
	// The returned channel is closed on unsubscribe or broker stop.
	Subscribe(ctx context.Context, filter EventFilter) (events <-chan Event, cancel func(), err error)
	Start(ctx context.Context) error
	Stop() error
	ClientCount() int
	HeartbeatInterval() time.Duration
}

// Defaults.
const (
	DefaultEventBufferSize   = 256
	DefaultClientBufferSize  = 64
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultMaxClients        = 500
)

// Config tunes the broker. Zero values take defaults; MaxClients < 0 means unlimited.
type Config struct {
	EventBufferSize   int
	ClientBufferSize  int
	HeartbeatInterval time.Duration
	ShutdownTimeout   time.Duration
	MaxClients        int
}

func (c *Config) setDefaults() {
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = DefaultEventBufferSize
	}
	if c.ClientBufferSize <= 0 {
		c.ClientBufferSize = DefaultClientBufferSize
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxClients == 0 {
		c.MaxClients = DefaultMaxClients
	}
}
