// Package dedupe tracks which fixtures are being simulated so that a fixture
// is never run twice at the same time, inside one batch or across batches.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records claimed fixture ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id is claimed and claims it if not.
	// Returns true if id was already claimed (or the tracker is full), false
	// if the caller now owns it.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord releases a claim once the fixture has been persisted or has
	// failed, so a later batch may pick it up again.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{seen: make(map[string]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
