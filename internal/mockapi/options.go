package mockapi

import (
	"encoding/json"

	"github.com/caplink/userpulse/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithUserCount sets how many user fixtures to generate.
func WithUserCount(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.userCount = n
		}
	}
}

// WithPostCount sets how many post fixtures to generate.
func WithPostCount(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.postCount = n
		}
	}
}

// WithSeed sets the fixture generation seed.
func WithSeed(seed int64) Option {
	return func(s *Server) {
		s.seed = seed
	}
}

// WithFailFirst makes the server answer the first n collection requests
// with the configured failure status.
func WithFailFirst(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.failFirst = n
		}
	}
}

// WithFailStatus sets the status code used for injected failures.
func WithFailStatus(status int) Option {
	return func(s *Server) {
		if status >= 400 {
			s.failStatus = status
		}
	}
}

// WithRecords serves the given raw records instead of generated fixtures.
// Records are served verbatim, so tests can inject malformed entries.
func WithRecords(users, posts []json.RawMessage) Option {
	return func(s *Server) {
		s.records = map[string][]json.RawMessage{
			resourceUsers: users,
			resourcePosts: posts,
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
