package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fetch errors.
var (
	ErrEmptyBaseURL = errors.New("base URL must not be empty")
)

// NetworkError reports a request that kept failing after every retry.
type NetworkError struct {
	Resource string
	Attempts int
	Err      error // last underlying failure
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: giving up after %d attempts: %v", e.Resource, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Resource   string
	StatusCode int
	Body       string
}

// maxBodyInMessage keeps error strings readable when servers return
// full HTML error pages.
const maxBodyInMessage = 160

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Resource, e.StatusCode)
	}

	body := e.Body
	if len(body) > maxBodyInMessage {
		body = body[:maxBodyInMessage] + "..."
	}

	return fmt.Sprintf("fetch %s: unexpected status %d: %s", e.Resource, e.StatusCode, body)
}
