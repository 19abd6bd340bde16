// Package config defines pipeline configuration structures and loading.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Validation failures wrap ErrInvalidConfig so callers can errors.Is.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration for one report run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile duplicates log output into a file when set.
	LogFile string `koanf:"log_file"`

	// BaseURL is the API root resources are fetched from.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// PageSize sets how many records are requested per page.
	PageSize int `koanf:"page_size"`

	// MaxRetries caps retry attempts after a failed request.
	MaxRetries int `koanf:"max_retries"`

	// BaseDelay and MaxDelay bound the exponential retry backoff.
	BaseDelay time.Duration `koanf:"base_delay"`
	MaxDelay  time.Duration `koanf:"max_delay"`

	// Pagination selects the paging convention: page or offset.
	Pagination string `koanf:"pagination"`

	// MaxPages bounds pages fetched per resource; 0 means unlimited.
	MaxPages int `koanf:"max_pages"`

	// Dedupe skips records repeated across page boundaries.
	Dedupe bool `koanf:"dedupe"`

	// OutputDir is where report files are written.
	OutputDir string `koanf:"output_dir"`

	// Formats lists the report formats to render.
	Formats []string `koanf:"formats"`

	// MinPosts drops users with fewer posts from the report; 0 keeps all.
	MinPosts int `koanf:"min_posts"`

	// StrictOrphans fails the run when a post references an unknown user.
	StrictOrphans bool `koanf:"strict_orphans"`

	// EmailEnabled turns on the simulated report notification.
	EmailEnabled bool `koanf:"email_enabled"`

	// EmailRecipient and EmailSender address the simulated notification.
	EmailRecipient string `koanf:"email_recipient"`
	EmailSender    string `koanf:"email_sender"`

	// MetricsPushURL is the pushgateway endpoint; empty disables pushing.
	MetricsPushURL string `koanf:"metrics_push_url"`

	// MetricsJob names the pushgateway job grouping.
	MetricsJob string `koanf:"metrics_job"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		BaseURL:        "https://jsonplaceholder.typicode.com",
		Timeout:        30 * time.Second,
		PageSize:       100,
		MaxRetries:     3,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
		Pagination:     "page",
		MaxPages:       10,
		OutputDir:      "output",
		Formats:        []string{"pdf", "xlsx"},
		EmailRecipient: "reports@caplink.example",
		EmailSender:    "userpulse@caplink.example",
		MetricsJob:     "userpulse",
	}
}

// Validate checks for values the pipeline cannot run with. Format
// strings are parsed later by the report package, at wiring time.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.PageSize <= 0:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	case c.BaseDelay <= 0:
		return fmt.Errorf("%w: base_delay must be positive", ErrInvalidConfig)
	case c.MaxDelay < c.BaseDelay:
		return fmt.Errorf("%w: max_delay must not be below base_delay", ErrInvalidConfig)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case len(c.Formats) == 0:
		return fmt.Errorf("%w: at least one report format is required", ErrInvalidConfig)
	}

	if c.Pagination != "page" && c.Pagination != "offset" {
		return fmt.Errorf("%w: pagination must be page or offset, got %q", ErrInvalidConfig, c.Pagination)
	}

	return nil
}
