package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps partitions in process memory. It backs dry runs and
// tests; a throttle hook can make it behave like a store under pressure.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]any
	throttle   ThrottleFunc
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		partitions: make(map[string]map[string]any),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BatchUpsert stores every item the throttle does not reject.
func (s *MemoryStore) BatchUpsert(ctx context.Context, partition string, items []Item) ([]Item, error) {
	if err := checkBatch(partition, items); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rejected []Item
	if s.throttle != nil {
		rejected = s.throttle(partition, items)
	}
	skip := make(map[string]struct{}, len(rejected))
	for _, it := range rejected {
		skip[it.Key] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = make(map[string]any)
		s.partitions[partition] = p
	}

	var unprocessed []Item
	for _, it := range items {
		if _, ok := skip[it.Key]; ok {
			unprocessed = append(unprocessed, it)
			continue
		}
		p[it.Key] = it.Value
	}
	return unprocessed, nil
}

// Get returns the value stored under key in partition.
func (s *MemoryStore) Get(partition, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.partitions[partition][key]
	return v, ok
}

// Len returns the number of keys in partition.
func (s *MemoryStore) Len(partition string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.partitions[partition])
}
