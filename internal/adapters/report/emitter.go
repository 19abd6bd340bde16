// Package report renders user metrics into PDF and spreadsheet files.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caplink/userpulse/internal/domain/model"
	"github.com/caplink/userpulse/pkg/logger"
	"github.com/caplink/userpulse/pkg/metrics"
)

// Format identifies a report output format. The value doubles as the
// file extension.
type Format string

// Supported report formats.
const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Default emitter configuration.
const (
	defaultOutputDir = "output"
	defaultBaseName  = "user_analytics_report"
	timestampLayout  = "20060102_150405"
	outputDirPerm    = 0o755
)

// Emitter writes report files into a single output directory.
type Emitter struct {
	outputDir string
	baseName  string
	now       func() time.Time
	logger    logger.Logger
}

// NewEmitter creates an Emitter with default configuration.
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		outputDir: defaultOutputDir,
		baseName:  defaultBaseName,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Emit renders ms in the given format and returns the written path.
// Filesystem failures surface as an IOError naming the path and
// operation.
func (e *Emitter) Emit(ctx context.Context, ms []model.UserMetrics, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("emit %s: %w", format, err)
	}

	// Resolved locally: Emit runs on several goroutines under EmitAll.
	log := e.logger
	if log == nil {
		log = logger.Get()
	}

	if err := os.MkdirAll(e.outputDir, outputDirPerm); err != nil {
		metrics.RecordReportError(string(format))
		return "", &IOError{Path: e.outputDir, Op: "mkdir", Err: err}
	}

	name := fmt.Sprintf("%s_%s.%s", e.baseName, e.now().UTC().Format(timestampLayout), format)
	path := filepath.Join(e.outputDir, name)

	start := time.Now()

	var err error
	switch format {
	case FormatPDF:
		err = writePDF(path, ms, e.now().UTC())
	case FormatXLSX:
		err = writeXLSX(path, ms)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}

	if err != nil {
		metrics.RecordReportError(string(format))
		return "", err
	}

	metrics.RecordReportDuration(string(format), float64(time.Since(start).Milliseconds()))
	metrics.RecordReportWritten(string(format))
	log.Info(ctx, "report written",
		logger.String("format", string(format)),
		logger.String("path", path),
		logger.Int("users", len(ms)),
	)

	return path, nil
}

// EmitAll renders every requested format in parallel. Formats write to
// disjoint files, so the only coordination is the final join; the first
// failure cancels the remaining renders.
func (e *Emitter) EmitAll(ctx context.Context, ms []model.UserMetrics, formats ...Format) ([]string, error) {
	if len(formats) == 0 {
		return nil, nil
	}

	paths := make([]string, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		i, f := i, f
		g.Go(func() error {
			p, err := e.Emit(gctx, ms, f)
			if err != nil {
				return err
			}

			paths[i] = p

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paths, nil
}
