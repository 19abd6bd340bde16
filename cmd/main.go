package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caplink/userpulse/internal/adapters/api"
	"github.com/caplink/userpulse/internal/adapters/report"
	app "github.com/caplink/userpulse/internal/app"
	"github.com/caplink/userpulse/internal/config"
	"github.com/caplink/userpulse/pkg/logger"
	"github.com/caplink/userpulse/pkg/metrics"
)

func main() {
	os.Exit(run())
}

// run carries the exit code so deferred cleanup still happens before
// the process exits.
func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since the logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Initialize logging from configuration
	logOpts := []logger.Option{
		logger.WithLevel(cfg.LogLevel),
	}
	if cfg.LogFormat == "json" {
		logOpts = append(logOpts, logger.WithJSONFormat())
	}
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile))
	}
	if err := logger.Init(logOpts...); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Parse report formats up front so typos fail before any fetch.
	formats := make([]report.Format, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		format, err := report.ParseFormat(f)
		if err != nil {
			log.Error(ctx, "unknown report format", logger.String("format", f), logger.Error(err))
			return 1
		}
		formats = append(formats, format)
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithBaseURL(cfg.BaseURL),
		app.WithTimeout(cfg.Timeout),
		app.WithPageSize(cfg.PageSize),
		app.WithMaxRetries(cfg.MaxRetries),
		app.WithBackoff(cfg.BaseDelay, cfg.MaxDelay),
		app.WithPagination(api.PaginationMode(cfg.Pagination)),
		app.WithMaxPages(cfg.MaxPages),
		app.WithMinPosts(cfg.MinPosts),
		app.WithOutputDir(cfg.OutputDir),
		app.WithFormats(formats...),
		app.WithEmailSender(cfg.EmailSender),
	}
	if cfg.Dedupe {
		opts = append(opts, app.WithDedupe())
	}
	if cfg.StrictOrphans {
		opts = append(opts, app.WithStrictOrphans())
	}
	if cfg.EmailEnabled {
		opts = append(opts, app.WithEmail(cfg.EmailRecipient))
	}

	svc := app.New(opts...)

	result, runErr := svc.Run(ctx)

	// Push metrics for failed runs too when a gateway is configured.
	if cfg.MetricsPushURL != "" {
		if err := metrics.Push(ctx, cfg.MetricsPushURL, cfg.MetricsJob); err != nil {
			log.Warn(ctx, "metrics push failed", logger.Error(err))
		}
	}

	if runErr != nil {
		// Run already logged the failure with its kind.
		return 1
	}

	log.Info(ctx, "reports ready",
		logger.Int("users", len(result.Metrics)),
		logger.Any("paths", result.ReportPaths),
	)
	return 0
}
