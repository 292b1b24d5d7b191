package idempotency

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory processed set. Provider retry
// windows are far shorter than a thousand events, so insertion-order
// eviction beyond this horizon is safe.
const DefaultCapacity = 1000

/* MemoryStore is a bounded, mutex-guarded Store.
 * Processed ids are kept in insertion order and the oldest evicted first
 * once capacity is exceeded. In-flight claims live in a separate set and
 * are always released, so they never count against the bound.
 */
type MemoryStore struct {
	mu        sync.Mutex
	capacity  int
	processed map[string]time.Time
	order     []string
	inFlight  map[string]struct{}
}

// NewMemoryStore creates a MemoryStore keeping at most capacity processed ids.
// A non-positive capacity falls back to DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity:  capacity,
		processed: make(map[string]time.Time),
		inFlight:  make(map[string]struct{}),
	}
}

// Seen reports whether the id completed processing.
func (s *MemoryStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[id]
	return ok, nil
}

// Begin claims the id. The check and the claim share one critical section
// so two concurrent deliveries of the same id can never both win.
func (s *MemoryStore) Begin(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processed[id]; ok {
		return false, nil
	}
	if _, ok := s.inFlight[id]; ok {
		return false, nil
	}
	s.inFlight[id] = struct{}{}
	return true, nil
}

// Commit records the id as processed and evicts the oldest entries past capacity.
func (s *MemoryStore) Commit(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, id)
	if _, ok := s.processed[id]; ok {
		return nil
	}

	s.processed[id] = at
	s.order = append(s.order, id)

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.processed, oldest)
	}
	return nil
}

// Release drops the in-flight claim so a redelivery can start over.
func (s *MemoryStore) Release(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
	return nil
}

// Len returns the number of processed ids currently retained.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed)
}
