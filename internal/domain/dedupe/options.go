// Package dedupe tracks record identifiers already seen within one fetch.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemory)

// WithMaxSize sets the maximum number of IDs to keep in memory.
// If maxSize > 0: bounded, oldest entries evicted first.
// If maxSize <= 0: unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemory) {
		d.maxSize = maxSize
	}
}
