// Package store holds the process-lifetime review state: per-record override
// patches and per-record audit history. Both are safe for concurrent use.
package store

import (
	"sync"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// Overrides stores one accumulated patch per record id.
type Overrides interface {
	// Get returns the accumulated patch for id, or an empty patch.
	Get(id int64) domain.Patch
	// Apply merges p over the stored patch for id and returns the result.
	Apply(id int64, p domain.Patch) domain.Patch
	// Len reports how many ids carry overrides.
	Len() int
}

// MemoryOverrides is an in-memory Overrides.
type MemoryOverrides struct {
	mu      sync.RWMutex
	patches map[int64]domain.Patch
}

// NewMemoryOverrides returns an empty store.
func NewMemoryOverrides() *MemoryOverrides {
	return &MemoryOverrides{patches: make(map[int64]domain.Patch)}
}

// Get returns a copy of the stored patch.
func (s *MemoryOverrides) Get(id int64) domain.Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patches[id].Clone()
}

// Apply merges p right-biased into the stored patch. No validation happens here.
func (s *MemoryOverrides) Apply(id int64, p domain.Patch) domain.Patch {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.patches[id].Merge(p)
	s.patches[id] = merged
	return merged.Clone()
}

// Len reports how many ids carry overrides.
func (s *MemoryOverrides) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patches)
}
