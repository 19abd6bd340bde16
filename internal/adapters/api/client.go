// Package api fetches paginated JSON resources over HTTP with retry,
// exponential backoff, and optional cross-page deduplication.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/caplink/userpulse/internal/domain/dedupe"
	"github.com/caplink/userpulse/pkg/logger"
	"github.com/caplink/userpulse/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultPageSize   = 100
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
	defaultMaxPages   = 0 // unlimited
)

// Client pages through REST resources.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	pageSize   int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	pagination PaginationMode
	pageParam  string
	limitParam string
	maxPages   int
	dedupe     bool
	logger     logger.Logger
}

// New creates a Client. A base URL must be supplied via WithBaseURL
// before FetchAll is called.
func New(opts ...Option) *Client {
	c := &Client{
		timeout:    defaultTimeout,
		pageSize:   defaultPageSize,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		pagination: PaginationPage,
		maxPages:   defaultMaxPages,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	if c.logger == nil {
		c.logger = logger.Get()
	}

	return c
}

// FetchAll walks every page of resource and returns the raw records in
// the order the API produced them.
//
// A page shorter than the configured page size marks the end of the
// collection. Transient failures (transport errors, timeouts, 5xx) are
// retried with exponential backoff; exhausting the retries surfaces as
// a NetworkError wrapping the last failure. Non-retryable statuses
// surface immediately as an HTTPError.
func (c *Client) FetchAll(ctx context.Context, resource string) ([]json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	start := time.Now()

	var (
		records []json.RawMessage
		tracker dedupe.Deduper
	)

	if c.dedupe {
		tracker = dedupe.NewInMemory()
	}

	for page := 1; c.maxPages <= 0 || page <= c.maxPages; page++ {
		batch, err := c.fetchPage(ctx, resource, page)
		if err != nil {
			return nil, err
		}

		for _, rec := range batch {
			if tracker != nil && seenBefore(ctx, tracker, rec) {
				metrics.RecordRecordDuplicate(resource)
				continue
			}

			records = append(records, rec)
		}

		c.logger.Debug(ctx, "fetched page",
			logger.String("resource", resource),
			logger.Int("page", page),
			logger.Int("records", len(batch)),
		)

		if len(batch) < c.pageSize {
			break
		}
	}

	metrics.UpdateRecordsFetched(resource, len(records))
	c.logger.Info(ctx, "fetch complete",
		logger.String("resource", resource),
		logger.Int("records", len(records)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return records, nil
}

// fetchPage requests one page, retrying transient failures up to the
// configured bound.
func (c *Client) fetchPage(ctx context.Context, resource string, page int) ([]json.RawMessage, error) {
	u := c.pageURL(resource, page)

	var lastErr error

	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			metrics.RecordFetchRetry(resource)

			if err := c.backoff(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		batch, retryable, err := c.doRequest(ctx, resource, u)
		if err == nil {
			return batch, nil
		}

		// A parent cancellation ends the walk regardless of retry budget.
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("fetch %s: %w", resource, cerr)
		}

		if !retryable {
			c.logger.Error(ctx, "request failed",
				logger.String("resource", resource),
				logger.String("url", u),
				logger.Error(err),
			)

			return nil, err
		}

		lastErr = err
		c.logger.Warn(ctx, "request failed; will retry",
			logger.String("resource", resource),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", c.maxRetries+1),
			logger.Error(err),
		)
	}

	return nil, &NetworkError{Resource: resource, Attempts: c.maxRetries + 1, Err: lastErr}
}

// doRequest performs a single HTTP round trip and classifies the
// outcome. retryable reports whether a failure is worth another attempt.
func (c *Client) doRequest(ctx context.Context, resource, u string) (batch []json.RawMessage, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFetchFailure(resource)
		return nil, true, fmt.Errorf("request %s: %w", resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordFetchRequest(resource, strconv.Itoa(resp.StatusCode))
	metrics.RecordFetchLatency(resource, float64(time.Since(start).Milliseconds()))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetchFailure(resource)
		return nil, true, fmt.Errorf("read %s response: %w", resource, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		herr := &HTTPError{Resource: resource, StatusCode: resp.StatusCode, Body: string(body)}
		return nil, resp.StatusCode >= http.StatusInternalServerError, herr
	}

	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, false, fmt.Errorf("decode %s page: %w", resource, err)
	}

	return batch, false, nil
}

// backoff waits before retry number n (1-based). The delay doubles each
// retry from the base, clamped at the configured maximum, and the wait
// aborts as soon as ctx is done.
func (c *Client) backoff(ctx context.Context, n int) error {
	delay := c.baseDelay
	for i := 1; i < n; i++ {
		delay *= 2
		if c.maxDelay > 0 && delay >= c.maxDelay {
			break
		}
	}

	if c.maxDelay > 0 && delay > c.maxDelay {
		delay = c.maxDelay
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("backoff interrupted: %w", ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

// pageURL renders the query for one page in the configured pagination
// convention.
func (c *Client) pageURL(resource string, page int) string {
	v := url.Values{}

	if c.pagination == PaginationOffset {
		v.Set(c.pageParamName(), strconv.Itoa((page-1)*c.pageSize))
	} else {
		v.Set(c.pageParamName(), strconv.Itoa(page))
	}

	v.Set(c.limitParamName(), strconv.Itoa(c.pageSize))

	return c.baseURL + "/" + resource + "?" + v.Encode()
}

func (c *Client) pageParamName() string {
	if c.pageParam != "" {
		return c.pageParam
	}

	if c.pagination == PaginationOffset {
		return "_start"
	}

	return "_page"
}

func (c *Client) limitParamName() string {
	if c.limitParam != "" {
		return c.limitParam
	}

	return "_limit"
}

// seenBefore reports whether rec's id was already returned on an
// earlier page. Records without a usable id are always kept.
func seenBefore(ctx context.Context, tracker dedupe.Deduper, rec json.RawMessage) bool {
	var peek struct {
		ID json.Number `json:"id"`
	}

	if err := json.Unmarshal(rec, &peek); err != nil || peek.ID == "" {
		return false
	}

	return tracker.SeenAndRecord(ctx, peek.ID.String())
}
