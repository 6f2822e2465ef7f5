package store

import (
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// GenesisText is the event every initialized history starts with.
const GenesisText = "Added by crawling"

// History is an append-only audit log per record id.
type History interface {
	// EnsureInitialized seeds the genesis event when id has no history yet.
	// It reports whether it seeded.
	EnsureInitialized(id int64) bool
	// Append adds an event stamped with the log clock.
	Append(id int64, text, actor string) domain.HistoryEvent
	// List returns id's events in insertion order; empty for unknown ids.
	List(id int64) []domain.HistoryEvent
}

// MemoryHistory is an in-memory History.
type MemoryHistory struct {
	mu     sync.RWMutex
	events map[int64][]domain.HistoryEvent
	now    func() time.Time
}

// NewMemoryHistory returns an empty log stamping events with now.
// A nil now uses time.Now.
func NewMemoryHistory(now func() time.Time) *MemoryHistory {
	if now == nil {
		now = time.Now
	}
	return &MemoryHistory{
		events: make(map[int64][]domain.HistoryEvent),
		now:    now,
	}
}

func (h *MemoryHistory) EnsureInitialized(id int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.events[id]; ok {
		return false
	}
	h.appendLocked(id, GenesisText, "")
	return true
}

func (h *MemoryHistory) Append(id int64, text, actor string) domain.HistoryEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.appendLocked(id, text, actor)
}

// appendLocked keeps timestamps non-decreasing within a record even if the
// clock steps backwards.
func (h *MemoryHistory) appendLocked(id int64, text, actor string) domain.HistoryEvent {
	ts := h.now().UTC()
	if prev := h.events[id]; len(prev) > 0 {
		if last := prev[len(prev)-1].Timestamp; ts.Before(last) {
			ts = last
		}
	}

	e := domain.HistoryEvent{RecordID: id, Timestamp: ts, Text: text, Actor: actor}
	h.events[id] = append(h.events[id], e)
	return e
}

func (h *MemoryHistory) List(id int64) []domain.HistoryEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	src := h.events[id]
	out := make([]domain.HistoryEvent, len(src))
	copy(out, src)
	return out
}
