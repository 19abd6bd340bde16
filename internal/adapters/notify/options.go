// Package notify delivers run summaries.
package notify

import (
	"time"

	"github.com/caplink/userpulse/pkg/logger"
)

// Option applies a configuration option to the Mailer.
type Option func(*Mailer)

// WithSender sets the from address recorded on simulated sends.
func WithSender(addr string) Option {
	return func(m *Mailer) {
		if addr != "" {
			m.sender = addr
		}
	}
}

// WithDelay sets the simulated delivery latency.
func WithDelay(d time.Duration) Option {
	return func(m *Mailer) {
		if d >= 0 {
			m.delay = d
		}
	}
}

// WithLogger sets a custom logger for the mailer.
func WithLogger(l logger.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}
