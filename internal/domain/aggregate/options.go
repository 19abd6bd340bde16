package aggregate

// settings collects the tunable aggregation behavior.
type settings struct {
	strictOrphans bool
}

// Option applies a configuration option to Compute.
type Option func(*settings)

// WithStrictOrphans makes a post without a matching user an error
// instead of silently dropping it.
func WithStrictOrphans() Option {
	return func(s *settings) {
		s.strictOrphans = true
	}
}
