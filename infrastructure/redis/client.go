// Package redis builds go-redis clients for the audit event stream and
// exposes their reachability to /health.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	infracontext "github.com/jonesrussell/north-cloud/link-review/infrastructure/context"
)

// Config holds connection settings. Zero PoolSize and WriteTimeout keep
// the go-redis defaults.
type Config struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	WriteTimeout time.Duration
}

// ErrEmptyAddress is returned when no address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

// NewClient connects and pings within the shared ping timeout. The client
// is closed if the ping fails.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Check returns a ping func suitable for infragin.PingChecker.
func Check(client *redis.Client) func() error {
	return func() error { return ping(context.Background(), client) }
}

func ping(parent context.Context, client *redis.Client) error {
	ctx, cancel := infracontext.WithPingTimeout(parent)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
