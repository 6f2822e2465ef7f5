package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

const (
	// DefaultStream is the Redis stream audit events are appended to.
	DefaultStream = "link-review-events"

	defaultQueueSize     = 1024
	defaultMaxLen        = 100000
	asyncPublishTimeout  = 5 * time.Second
	streamSinkName       = "redis"
	streamPayloadField   = "event"
	streamRecordIDField  = "record_id"
	streamEventKindField = "kind"
)

// ErrQueueFull is returned by Send when the publish queue is saturated.
var ErrQueueFull = errors.New("event stream queue is full")

// StreamConfig tunes a StreamPublisher. Zero values take defaults.
type StreamConfig struct {
	Stream    string
	MaxLen    int64
	QueueSize int
}

// StreamPublisher appends envelopes to a Redis stream from a single
// background worker, preserving publish order.
type StreamPublisher struct {
	client    *redis.Client
	stream    string
	maxLen    int64
	queue     chan []Envelope
	telemetry *telemetry.Provider
	log       infralogger.Logger

	startOnce sync.Once
	done      chan struct{}
}

// NewStreamPublisher returns nil when client is nil.
func NewStreamPublisher(client *redis.Client, cfg StreamConfig, tp *telemetry.Provider, log infralogger.Logger) *StreamPublisher {
	if client == nil {
		return nil
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultMaxLen
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &StreamPublisher{
		client:    client,
		stream:    cfg.Stream,
		maxLen:    cfg.MaxLen,
		queue:     make(chan []Envelope, cfg.QueueSize),
		telemetry: tp,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Name identifies the sink.
func (p *StreamPublisher) Name() string { return streamSinkName }

// Start runs the worker until ctx ends, then drains what is queued.
func (p *StreamPublisher) Start(ctx context.Context) {
	if p == nil {
		return
	}
	p.startOnce.Do(func() {
		go p.run(ctx)
	})
}

// Done is closed once the worker has drained and exited.
func (p *StreamPublisher) Done() <-chan struct{} { return p.done }

// Send enqueues envelopes without blocking.
func (p *StreamPublisher) Send(_ context.Context, envelopes []Envelope) error {
	if p == nil {
		return nil
	}
	select {
	case p.queue <- envelopes:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *StreamPublisher) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case batch := <-p.queue:
			p.publishBatch(batch)
		case <-ctx.Done():
			for {
				select {
				case batch := <-p.queue:
					p.publishBatch(batch)
				default:
					return
				}
			}
		}
	}
}

func (p *StreamPublisher) publishBatch(batch []Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
	defer cancel()

	for _, env := range batch {
		streamID, err := p.Publish(ctx, env)
		if err != nil {
			p.telemetry.RecordPublish(streamSinkName, err)
			p.log.Error("Failed to publish audit event",
				infralogger.String("stream", p.stream),
				infralogger.Int64("record_id", env.RecordID),
				infralogger.String("kind", string(env.Kind)),
				infralogger.Error(err),
			)
			continue
		}
		p.log.Debug("Published audit event",
			infralogger.String("stream", p.stream),
			infralogger.String("stream_id", streamID),
			infralogger.Int64("record_id", env.RecordID),
		)
	}
}

// Publish appends one envelope synchronously and returns its stream id.
func (p *StreamPublisher) Publish(ctx context.Context, env Envelope) (string, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			streamPayloadField:   string(payload),
			streamRecordIDField:  strconv.FormatInt(env.RecordID, 10),
			streamEventKindField: string(env.Kind),
		},
	})
	if err = result.Err(); err != nil {
		return "", fmt.Errorf("publish to stream: %w", err)
	}
	return result.Val(), nil
}
