// Package dedupe tracks natural keys so a dataset can be checked for
// collisions before it is persisted.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Size returns the number of distinct keys recorded.
	Size() int64
}

// inMemoryDeduper is an unbounded set guarded by a mutex. Nothing is ever
// evicted: a dataset is checked in one pass and then discarded.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	size     atomic.Int64
	capacity int
}

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Size implements Deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
