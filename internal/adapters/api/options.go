// Package api fetches paginated JSON resources over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/caplink/userpulse/pkg/logger"
)

// PaginationMode selects how page boundaries are encoded in the query
// string.
type PaginationMode string

// Supported pagination modes.
const (
	// PaginationPage requests 1-based page numbers (?_page=N).
	PaginationPage PaginationMode = "page"
	// PaginationOffset requests record offsets (?_start=N).
	PaginationOffset PaginationMode = "offset"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the API root resource paths are resolved against.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPageSize sets how many records are requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxRetries caps how many times a failed request is retried.
// Zero disables retries entirely.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the exponential backoff bounds between retries.
func WithBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.baseDelay = base
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// WithPagination selects the pagination convention.
func WithPagination(mode PaginationMode) Option {
	return func(c *Client) {
		if mode == PaginationPage || mode == PaginationOffset {
			c.pagination = mode
		}
	}
}

// WithParamNames overrides the query parameter names for page position
// and page size.
func WithParamNames(page, limit string) Option {
	return func(c *Client) {
		if page != "" {
			c.pageParam = page
		}
		if limit != "" {
			c.limitParam = limit
		}
	}
}

// WithMaxPages bounds the number of pages fetched per resource.
// Zero or negative means unlimited.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithDedupe drops records whose id was already seen on an earlier page.
func WithDedupe() Option {
	return func(c *Client) {
		c.dedupe = true
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
