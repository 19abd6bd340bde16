// Package mockapi serves a JSONPlaceholder-flavored API with deterministic
// fixtures. It backs local pipeline runs and integration tests so neither
// has to reach the public API.
package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caplink/userpulse/pkg/logger"
)

// Resource paths served by the mock API.
const (
	resourceUsers = "users"
	resourcePosts = "posts"
)

// Defaults for generated fixtures and failure injection.
const (
	defaultUserCount  = 10
	defaultPostCount  = 100
	defaultSeed       = 42
	defaultFailStatus = http.StatusServiceUnavailable
	defaultPageLimit  = 10
)

// Server holds fixture records and serves them over HTTP.
type Server struct {
	userCount  int
	postCount  int
	seed       int64
	failFirst  int
	failStatus int
	records    map[string][]json.RawMessage
	logger     logger.Logger

	mu       sync.Mutex
	requests int
}

// New creates a Server with generated fixtures unless records were injected.
func New(opts ...Option) *Server {
	s := &Server{
		userCount:  defaultUserCount,
		postCount:  defaultPostCount,
		seed:       defaultSeed,
		failStatus: defaultFailStatus,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.records == nil {
		s.records = generateRecords(s.userCount, s.postCount, s.seed)
	}
	return s
}

// Register attaches all mock API routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/users", s.logRequests(s.handleCollection(resourceUsers)))
	mux.HandleFunc("/posts", s.logRequests(s.handleCollection(resourcePosts)))
	mux.HandleFunc("/healthz", s.logRequests(s.handleHealth))

	users, posts := s.Counts()
	s.logger.Info(ctx, "mock api routes registered",
		logger.Int("users", users),
		logger.Int("posts", posts),
	)
}

// Counts reports how many fixture records each collection holds.
func (s *Server) Counts() (users, posts int) {
	return len(s.records[resourceUsers]), len(s.records[resourcePosts])
}

// Requests reports how many collection requests the server has seen.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// handleCollection serves GET requests for one record collection.
func (s *Server) handleCollection(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
			return
		}
		if status, failed := s.injectedFailure(); failed {
			writeError(w, status, "injected_failure")
			return
		}

		records := s.records[resource]
		lo, hi := slicePage(r, len(records))
		page := records[lo:hi]
		if page == nil {
			// Empty collections still encode as [] rather than null.
			page = []json.RawMessage{}
		}
		writeJSON(w, http.StatusOK, page)
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
	Posts  int    `json:"posts"`
}

// handleHealth handles GET /healthz requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	users, posts := s.Counts()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Users: users, Posts: posts})
}

// injectedFailure counts the request and reports whether it should fail.
// The first failFirst collection requests are answered with failStatus.
func (s *Server) injectedFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if s.requests <= s.failFirst {
		return s.failStatus, true
	}
	return 0, false
}

// slicePage resolves pagination query params against a collection of the
// given size. Both JSONPlaceholder conventions are honored: _page/_limit
// (1-based pages, default limit 10) and _start/_limit (0-based offsets).
// Without params the whole collection is returned.
func slicePage(r *http.Request, total int) (lo, hi int) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	start := -1
	if v := q.Get("_start"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			start = n
		}
	}
	if start < 0 {
		if v := q.Get("_page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				if limit == 0 {
					limit = defaultPageLimit
				}
				start = (n - 1) * limit
			}
		}
	}

	if start < 0 {
		start = 0
	}
	if limit == 0 {
		limit = total
	}

	lo = min(start, total)
	hi = min(lo+limit, total)
	return lo, hi
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Code: code, Message: http.StatusText(status)})
}

// logRequests wraps a handler with a request id and debug request logging.
func (s *Server) logRequests(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.New().String()
		w.Header().Set("X-Request-Id", requestID)

		// Capture the status code for the log line
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Debug(r.Context(), "mock api request",
			logger.String("request_id", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.RequestURI()),
			logger.Int("status", wrapped.statusCode),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
