package sse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
)

var (
	// ErrBufferFull is returned by Publish when the broker queue is saturated.
	ErrBufferFull = errors.New("sse publish buffer full")
	// ErrTooManyClients is returned by Subscribe at the subscriber limit.
	ErrTooManyClients = errors.New("sse subscriber limit reached")
)

type subscriber struct {
	id       uint64
	events   chan Event
	filter   EventFilter
	once     sync.Once
	stopWait func() bool
}

func (s *subscriber) close() {
	s.once.Do(func() {
		if s.stopWait != nil {
			s.stopWait()
		}
		close(s.events)
	})
}

// deliver returns false when the subscriber cannot keep up.
func (s *subscriber) deliver(e Event) bool {
	if s.filter != nil && !s.filter(e) {
		return true
	}
	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

type broker struct {
	cfg    Config
	log    infralogger.Logger
	queue  chan Event
	nextID atomic.Uint64

	mu   sync.RWMutex
	subs map[uint64]*subscriber

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBroker returns a broker; call Start before publishing.
func NewBroker(log infralogger.Logger, cfg Config) Broker {
	cfg.setDefaults()
	return &broker{
		cfg:   cfg,
		log:   log,
		queue: make(chan Event, cfg.EventBufferSize),
		subs:  make(map[uint64]*subscriber),
		done:  make(chan struct{}),
	}
}

func (b *broker) Start(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)
	go b.loop(ctx)
	b.log.Info("SSE broker started",
		infralogger.Int("max_clients", b.cfg.MaxClients),
		infralogger.Duration("heartbeat_interval", b.cfg.HeartbeatInterval),
	)
	return nil
}

func (b *broker) Stop() error {
	if b.cancel == nil {
		return nil
	}
	b.cancel()
	select {
	case <-b.done:
	case <-time.After(b.cfg.ShutdownTimeout):
		b.log.Warn("SSE broker shutdown timed out")
	}
	return nil
}

func (b *broker) Publish(ctx context.Context, event Event) error {
	select {
	case b.queue <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", event.Type, ctx.Err())
	default:
		return fmt.Errorf("publish %s: %w", event.Type, ErrBufferFull)
	}
}

func (b *broker) Subscribe(ctx context.Context, filter EventFilter) (<-chan Event, func(), error) {
	s := &subscriber{
		id:     b.nextID.Add(1),
		events: make(chan Event, b.cfg.ClientBufferSize),
		filter: filter,
	}
	s.stopWait = context.AfterFunc(ctx, func() { b.remove(s.id) })

	b.mu.Lock()
	if b.cfg.MaxClients > 0 && len(b.subs) >= b.cfg.MaxClients {
		b.mu.Unlock()
		s.stopWait()
		return nil, nil, ErrTooManyClients
	}
	b.subs[s.id] = s
	b.mu.Unlock()

	// ctx may have ended before the subscriber was registered.
	if ctx.Err() != nil {
		b.remove(s.id)
	}

	return s.events, func() { b.remove(s.id) }, nil
}

func (b *broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *broker) HeartbeatInterval() time.Duration {
	return b.cfg.HeartbeatInterval
}

func (b *broker) loop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case e := <-b.queue:
			b.broadcast(e)
		case <-ctx.Done():
			b.removeAll()
			return
		}
	}
}

func (b *broker) broadcast(e Event) {
	b.mu.RLock()
	var slow []uint64
	for id, s := range b.subs {
		if !s.deliver(e) {
			slow = append(slow, id)
		}
	}
	b.mu.RUnlock()

	for _, id := range slow {
		b.log.Warn("Dropping slow SSE subscriber", infralogger.String("event_type", e.Type))
		b.remove(id)
	}
}

func (b *broker) remove(id uint64) {
	b.mu.Lock()
	s, ok := b.subs[id]
	delete(b.subs, id)
	b.mu.Unlock()
	if ok {
		s.close()
	}
}

func (b *broker) removeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[uint64]*subscriber)
	b.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}
