// Package dedupe tracks request ids so retried reward submissions are
// applied at most once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen request ids.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id, allowing the submission to be retried. Used
	// when an id was recorded but the increment failed afterwards.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ringDeduper is a bounded in-memory Deduper. Ids live in a map for O(1)
// membership and in a fixed-size ring for FIFO eviction; the oldest id is
// dropped when the bound is reached. The map value is the id's ring slot,
// so Unrecord can vacate its slot and eviction only removes an id that
// still owns the slot being reclaimed.
type ringDeduper struct {
	mu   sync.Mutex
	seen map[string]int
	ring []string
	next int
	size int
}

// NewRingDeduper creates a bounded deduper with configuration options.
func NewRingDeduper(opts ...Option) Deduper {
	d := &ringDeduper{
		size: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, d.size)
	d.ring = make([]string, d.size)
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if old := d.ring[d.next]; old != "" {
		// An unrecorded-and-re-recorded id may hold a newer slot; it must
		// survive reclamation of its stale one.
		if slot, ok := d.seen[old]; ok && slot == d.next {
			delete(d.seen, old)
		}
	}
	d.ring[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % len(d.ring)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot, ok := d.seen[id]; ok {
		d.ring[slot] = ""
		delete(d.seen, id)
	}
}

func (d *ringDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
