package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"

	infracontext "github.com/jonesrussell/north-cloud/link-review/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/link-review/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/link-review/internal/config"
	"github.com/jonesrussell/north-cloud/link-review/internal/events"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

// Events bundles the optional audit sinks. Broker is nil when the live
// feed is disabled; the stream is nil when Redis is disabled or unreachable.
type Events struct {
	Fanout *events.Fanout
	Broker sse.Broker
	stream *events.StreamPublisher
	redis  *redis.Client
}

// SetupEvents starts the Redis stream publisher and SSE broker that are
// enabled. Failing optional sinks are logged and skipped.
func SetupEvents(ctx context.Context, cfg *config.Config, tp *telemetry.Provider, log infralogger.Logger) *Events {
	ev := &Events{}

	if cfg.Redis.Enabled {
		client, err := infraredis.NewClient(ctx, infraredis.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Warn("Redis not available, event stream disabled", infralogger.Error(err))
		} else {
			ev.redis = client
			ev.stream = events.NewStreamPublisher(client, events.StreamConfig{
				Stream: cfg.Redis.Stream,
				MaxLen: cfg.Redis.MaxLen,
			}, tp, log)
			ev.stream.Start(ctx)
			log.Info("Event stream publisher started",
				infralogger.String("redis_address", cfg.Redis.Address),
				infralogger.String("stream", cfg.Redis.Stream),
			)
		}
	}

	if cfg.Feed.Enabled {
		broker := sse.NewBroker(log, sse.Config{
			MaxClients:        cfg.Feed.MaxClients,
			HeartbeatInterval: cfg.Feed.HeartbeatInterval,
		})
		if err := broker.Start(ctx); err != nil {
			log.Warn("Live feed disabled", infralogger.Error(err))
		} else {
			ev.Broker = broker
		}
	}

	ev.Fanout = events.NewFanout(log, tp, ev.stream, events.NewFeed(ev.Broker))
	log.Info("Audit fan-out ready", infralogger.Int("sinks", ev.Fanout.Len()))
	return ev
}

// StreamCheck pings the stream's Redis server, or is nil when the stream
// is disabled.
func (e *Events) StreamCheck() func() error {
	if e.redis == nil {
		return nil
	}
	return infraredis.Check(e.redis)
}

// Close stops the broker and waits for the stream worker to drain.
func (e *Events) Close(log infralogger.Logger) {
	if e.Broker != nil {
		if err := e.Broker.Stop(); err != nil {
			log.Warn("Failed to stop live feed", infralogger.Error(err))
		}
	}

	if e.stream != nil {
		ctx, cancel := infracontext.WithShutdownTimeout(context.Background())
		defer cancel()
		select {
		case <-e.stream.Done():
		case <-ctx.Done():
			log.Warn("Event stream did not drain before shutdown")
		}
	}

	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			log.Warn("Failed to close redis client", infralogger.Error(err))
		}
	}
}
