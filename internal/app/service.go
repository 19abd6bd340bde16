// Package service orchestrates one report pipeline pass: fetch raw
// records, validate them, aggregate per-user metrics, render report
// files, and announce the result.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caplink/userpulse/internal/adapters/api"
	"github.com/caplink/userpulse/internal/adapters/notify"
	"github.com/caplink/userpulse/internal/adapters/report"
	"github.com/caplink/userpulse/internal/domain/aggregate"
	"github.com/caplink/userpulse/internal/domain/model"
	"github.com/caplink/userpulse/internal/domain/validate"
	"github.com/caplink/userpulse/pkg/logger"
	"github.com/caplink/userpulse/pkg/metrics"
)

// Fetcher pulls every record of one resource, following pagination
// until the collection is exhausted.
type Fetcher interface {
	FetchAll(ctx context.Context, resource string) ([]json.RawMessage, error)
}

// Emitter renders user metrics into report files and returns the
// written paths.
type Emitter interface {
	EmitAll(ctx context.Context, ms []model.UserMetrics, formats ...report.Format) ([]string, error)
}

// Notifier announces a finished run.
type Notifier interface {
	Send(ctx context.Context, s notify.Summary) error
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID          string
	UsersFetched   int
	PostsFetched   int
	UsersValid     int
	PostsValid     int
	UsersRejected  int
	PostsRejected  int
	OrphansDropped int
	Metrics        []model.UserMetrics
	ReportPaths    []string
	FetchDuration  time.Duration
	EmitDuration   time.Duration
	Duration       time.Duration
}

// Defaults mirror the public JSONPlaceholder deployment.
const (
	defaultBaseURL    = "https://jsonplaceholder.typicode.com"
	defaultTimeout    = 30 * time.Second
	defaultPageSize   = 100
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
	defaultMaxPages   = 10
	defaultOutputDir  = "output"
)

// Service wires the pipeline stages together for Run.
type Service struct {
	// Stage implementations
	fetcher  Fetcher
	emitter  Emitter
	notifier Notifier

	// Fetch configuration
	baseURL    string
	timeout    time.Duration
	pageSize   int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	pagination api.PaginationMode
	maxPages   int
	dedupe     bool

	// Aggregation and report configuration
	minPosts      int
	strictOrphans bool
	outputDir     string
	formats       []report.Format

	// Notification configuration
	emailEnabled   bool
	emailRecipient string
	emailSender    string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBaseURL sets the API root records are fetched from.
func WithBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPageSize sets how many records are requested per page.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithMaxRetries caps retry attempts after a failed request.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithBackoff sets the exponential backoff bounds between retries.
func WithBackoff(base, maxDelay time.Duration) Option {
	return func(s *Service) {
		if base > 0 {
			s.baseDelay = base
		}
		if maxDelay > 0 {
			s.maxDelay = maxDelay
		}
	}
}

// WithPagination selects the pagination convention.
func WithPagination(mode api.PaginationMode) Option {
	return func(s *Service) {
		if mode == api.PaginationPage || mode == api.PaginationOffset {
			s.pagination = mode
		}
	}
}

// WithMaxPages bounds pages fetched per resource. Zero means unlimited.
func WithMaxPages(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxPages = n
		}
	}
}

// WithDedupe drops records repeated across page boundaries.
func WithDedupe() Option {
	return func(s *Service) {
		s.dedupe = true
	}
}

// WithMinPosts drops users with fewer posts from the report.
func WithMinPosts(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minPosts = n
		}
	}
}

// WithStrictOrphans fails the run when a post references an unknown
// user instead of dropping the post.
func WithStrictOrphans() Option {
	return func(s *Service) {
		s.strictOrphans = true
	}
}

// WithOutputDir sets where report files are written.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithFormats sets the report formats rendered per run.
func WithFormats(formats ...report.Format) Option {
	return func(s *Service) {
		if len(formats) > 0 {
			s.formats = formats
		}
	}
}

// WithEmail enables the run notification to the given recipient.
func WithEmail(recipient string) Option {
	return func(s *Service) {
		if recipient != "" {
			s.emailEnabled = true
			s.emailRecipient = recipient
		}
	}
}

// WithEmailSender overrides the notification sender address.
func WithEmailSender(sender string) Option {
	return func(s *Service) {
		if sender != "" {
			s.emailSender = sender
		}
	}
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithEmitter replaces the default report emitter.
func WithEmitter(e Emitter) Option {
	return func(s *Service) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithNotifier replaces the default simulated mailer.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration. Stages not
// replaced by options are built from the configured values.
func New(opts ...Option) *Service {
	s := &Service{
		baseURL:    defaultBaseURL,
		timeout:    defaultTimeout,
		pageSize:   defaultPageSize,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		pagination: api.PaginationPage,
		maxPages:   defaultMaxPages,
		outputDir:  defaultOutputDir,
		formats:    []report.Format{report.FormatPDF, report.FormatXLSX},
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.fetcher == nil {
		s.fetcher = s.buildFetcher()
	}
	if s.emitter == nil {
		s.emitter = report.NewEmitter(
			report.WithOutputDir(s.outputDir),
			report.WithLogger(s.logger),
		)
	}
	if s.notifier == nil {
		s.notifier = s.buildNotifier()
	}

	return s
}

// buildFetcher assembles the HTTP client from the fetch configuration.
func (s *Service) buildFetcher() Fetcher {
	opts := []api.Option{
		api.WithBaseURL(s.baseURL),
		api.WithTimeout(s.timeout),
		api.WithPageSize(s.pageSize),
		api.WithMaxRetries(s.maxRetries),
		api.WithBackoff(s.baseDelay, s.maxDelay),
		api.WithPagination(s.pagination),
		api.WithMaxPages(s.maxPages),
		api.WithLogger(s.logger),
	}
	if s.dedupe {
		opts = append(opts, api.WithDedupe())
	}
	return api.New(opts...)
}

func (s *Service) buildNotifier() Notifier {
	opts := []notify.Option{
		notify.WithLogger(s.logger),
	}
	if s.emailSender != "" {
		opts = append(opts, notify.WithSender(s.emailSender))
	}
	return notify.New(opts...)
}

// Run executes one full pipeline pass and reports its outcome.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	start := time.Now()

	s.logger.Info(ctx, "starting report run",
		logger.String("run_id", runID),
		logger.String("base_url", s.baseURL),
		logger.Int("page_size", s.pageSize),
	)

	result, err := s.run(ctx, runID)
	if err != nil {
		metrics.RecordRunFailure()
		s.logger.Error(ctx, "report run failed",
			logger.String("run_id", runID),
			logger.String("kind", errorKind(err)),
			logger.Error(err),
		)
		return nil, err
	}

	result.Duration = time.Since(start)
	metrics.RecordRunCompleted(float64(result.Duration.Milliseconds()))
	s.logger.Info(ctx, "report run completed",
		logger.String("run_id", runID),
		logger.Int("users", len(result.Metrics)),
		logger.Int("reports", len(result.ReportPaths)),
		logger.Duration("elapsed", result.Duration),
	)

	return result, nil
}

// run walks the pipeline stages in order. Stages hand results forward
// as plain values; the only parallelism lives inside EmitAll.
func (s *Service) run(ctx context.Context, runID string) (*RunResult, error) {
	result := &RunResult{RunID: runID}

	fetchStart := time.Now()
	rawUsers, err := s.fetcher.FetchAll(ctx, validate.ResourceUsers)
	if err != nil {
		return nil, err
	}
	rawPosts, err := s.fetcher.FetchAll(ctx, validate.ResourcePosts)
	if err != nil {
		return nil, err
	}
	result.FetchDuration = time.Since(fetchStart)
	result.UsersFetched = len(rawUsers)
	result.PostsFetched = len(rawPosts)

	users, userErrs := validate.Users(rawUsers)
	s.reportValidation(ctx, validate.ResourceUsers, userErrs)
	metrics.RecordRecordsValid(validate.ResourceUsers, len(users))
	result.UsersValid = len(users)
	result.UsersRejected = len(userErrs)

	posts, postErrs := validate.Posts(rawPosts)
	s.reportValidation(ctx, validate.ResourcePosts, postErrs)
	metrics.RecordRecordsValid(validate.ResourcePosts, len(posts))
	result.PostsValid = len(posts)
	result.PostsRejected = len(postErrs)

	if len(users) == 0 {
		return nil, ErrNoUsers
	}

	aggStart := time.Now()
	var aggOpts []aggregate.Option
	if s.strictOrphans {
		aggOpts = append(aggOpts, aggregate.WithStrictOrphans())
	}
	computed, err := aggregate.Compute(users, posts, aggOpts...)
	if err != nil {
		return nil, err
	}
	metrics.RecordAggregationLatency(float64(time.Since(aggStart).Milliseconds()))
	metrics.UpdateUsersAggregated(len(computed))

	kept := 0
	for _, m := range computed {
		kept += m.TotalPosts
	}
	result.OrphansDropped = len(posts) - kept
	if result.OrphansDropped > 0 {
		metrics.RecordOrphansDropped(result.OrphansDropped)
		s.logger.Warn(ctx, "dropped posts referencing unknown users",
			logger.String("run_id", runID),
			logger.Int("count", result.OrphansDropped),
		)
	}

	final := computed
	if s.minPosts > 0 {
		final = aggregate.FilterActive(final, s.minPosts)
	}
	final = aggregate.SortByPostCount(final)
	result.Metrics = final

	emitStart := time.Now()
	paths, err := s.emitter.EmitAll(ctx, final, s.formats...)
	if err != nil {
		return nil, err
	}
	result.EmitDuration = time.Since(emitStart)
	result.ReportPaths = paths

	s.notifyRun(ctx, result)

	return result, nil
}

// reportValidation logs and counts rejected records. Rejections are
// warnings, not failures.
func (s *Service) reportValidation(ctx context.Context, resource string, errs []validate.RecordError) {
	if len(errs) == 0 {
		return
	}

	metrics.RecordRecordsRejected(resource, len(errs))
	s.logger.Warn(ctx, "rejected invalid records",
		logger.String("resource", resource),
		logger.Int("count", len(errs)),
		logger.Error(validate.Error(resource, errs)),
	)
	for _, re := range errs {
		s.logger.Debug(ctx, "record rejected",
			logger.String("resource", resource),
			logger.Int("index", re.Index),
			logger.String("field", re.Field),
			logger.String("reason", re.Reason),
		)
	}
}

// notifyRun sends the run summary when email is enabled. Delivery
// failures do not fail the run.
func (s *Service) notifyRun(ctx context.Context, result *RunResult) {
	if !s.emailEnabled || s.emailRecipient == "" {
		return
	}

	totalPosts := 0
	for _, m := range result.Metrics {
		totalPosts += m.TotalPosts
	}

	summary := notify.Summary{
		Recipient:    s.emailRecipient,
		Subject:      fmt.Sprintf("User activity report %s", time.Now().UTC().Format("2006-01-02")),
		UserCount:    len(result.Metrics),
		TotalPosts:   totalPosts,
		MeanAvgChars: aggregate.MeanAvgChars(result.Metrics),
		ReportPaths:  result.ReportPaths,
	}
	if err := s.notifier.Send(ctx, summary); err != nil {
		s.logger.Warn(ctx, "report notification failed",
			logger.String("run_id", result.RunID),
			logger.Error(err),
		)
	}
}

// errorKind classifies a run failure for the final error log line.
func errorKind(err error) string {
	var (
		netErr    *api.NetworkError
		httpErr   *api.HTTPError
		orphanErr *aggregate.OrphanError
		ioErr     *report.IOError
	)
	switch {
	case errors.Is(err, ErrNoUsers):
		return "no_users"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &orphanErr):
		return "orphan"
	case errors.As(err, &ioErr):
		return "io"
	case errors.Is(err, report.ErrUnknownFormat):
		return "format"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
