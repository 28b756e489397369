// Package dedupe tracks recently seen telemetry frame IDs so replayed
// frames are ticked at most once.
package dedupe

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 1024

// Deduper records seen frame IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a frame that could not be queued can be resent.
	Unrecord(ctx context.Context, id string)

	Size() int
}

// inMemoryDeduper keeps the most recent maxSize IDs; older ones are evicted
// least-recently-added first.
type inMemoryDeduper struct {
	seen    *lru.Cache[string, struct{}]
	maxSize int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	// only fails for a non-positive size, which options rule out
	d.seen, _ = lru.New[string, struct{}](d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	// ContainsOrAdd does not refresh recency, so eviction follows insertion order.
	seen, _ := d.seen.ContainsOrAdd(id, struct{}{})
	return seen
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.seen.Remove(id)
}

// Size returns the number of IDs currently remembered.
func (d *inMemoryDeduper) Size() int {
	return d.seen.Len()
}
