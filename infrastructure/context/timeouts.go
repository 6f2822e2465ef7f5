// Package context holds the timeouts shared by startup, health and shutdown paths.
package context

import (
	"context"
	"time"
)

const (
	// PingTimeout bounds dependency pings at startup and in health checks.
	PingTimeout = 5 * time.Second
	// ShutdownTimeout bounds draining background workers on exit.
	ShutdownTimeout = 10 * time.Second
)

// WithPingTimeout derives a ping-bounded context from parent.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, PingTimeout)
}

// WithShutdownTimeout derives a shutdown-bounded context. The result is not
// cancelled with parent, so cleanup still runs after a cancelled run context.
func WithShutdownTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), ShutdownTimeout)
}
