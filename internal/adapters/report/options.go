// Package report renders user metrics into PDF and spreadsheet files.
package report

import (
	"time"

	"github.com/caplink/userpulse/pkg/logger"
)

// Option applies a configuration option to the Emitter.
type Option func(*Emitter)

// WithOutputDir sets the directory report files are written into.
func WithOutputDir(dir string) Option {
	return func(e *Emitter) {
		if dir != "" {
			e.outputDir = dir
		}
	}
}

// WithBaseName overrides the report file base name.
func WithBaseName(name string) Option {
	return func(e *Emitter) {
		if name != "" {
			e.baseName = name
		}
	}
}

// WithClock injects the timestamp source used in file names.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the emitter.
func WithLogger(l logger.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}
