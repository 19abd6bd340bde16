// Package dedupe tracks record identifiers already seen within one
// fetch, so records repeated across page boundaries can be skipped.
package dedupe

import "context"

// Deduper records seen record IDs so repeats can be detected.
// Implementations need not be safe for concurrent use; the fetch loop
// consults the deduper from a single goroutine.
type Deduper interface {
	// SeenAndRecord checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the current number of recorded IDs.
	Size() int
}

// inMemory implements Deduper with a map plus insertion-order eviction:
// when the bound is reached, the oldest recorded ID is forgotten first.
type inMemory struct {
	seen    map[string]struct{}
	order   []string
	maxSize int // 0 or negative = unbounded
}

// defaultMaxSize bounds memory on pathological inputs while staying far
// above any realistic page walk.
const defaultMaxSize = 100_000

// NewInMemory creates an in-memory deduper.
func NewInMemory(opts ...Option) Deduper {
	d := &inMemory{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})

	return d
}

// SeenAndRecord checks if id was seen and records it if not.
func (d *inMemory) SeenAndRecord(_ context.Context, id string) bool {
	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}

	d.seen[id] = struct{}{}

	if d.maxSize > 0 {
		d.order = append(d.order, id)
	}

	return false
}

// Size returns the current number of recorded IDs.
func (d *inMemory) Size() int {
	return len(d.seen)
}
