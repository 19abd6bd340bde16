// Package notify delivers run summaries. The mailer is a simulation:
// it logs the message and waits a short delay instead of talking to a
// real SMTP server.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caplink/userpulse/pkg/logger"
	"github.com/caplink/userpulse/pkg/metrics"
)

// Summary is the content of one run notification.
type Summary struct {
	Recipient    string
	Subject      string
	UserCount    int
	TotalPosts   int
	MeanAvgChars float64
	ReportPaths  []string
}

// Default mailer configuration.
const (
	defaultSender = "userpulse@caplink.example"
	defaultDelay  = 500 * time.Millisecond
)

// Mailer simulates email delivery of report summaries.
type Mailer struct {
	sender string
	delay  time.Duration
	logger logger.Logger
}

// New creates a Mailer.
func New(opts ...Option) *Mailer {
	m := &Mailer{
		sender: defaultSender,
		delay:  defaultDelay,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logger.Get()
	}

	return m
}

// Send simulates delivering the summary. The artificial latency honors
// ctx, so a cancelled run never hangs on its notification.
func (m *Mailer) Send(ctx context.Context, s Summary) error {
	if s.Recipient == "" {
		return ErrNoRecipient
	}

	messageID := uuid.New().String()

	m.logger.Info(ctx, "sending report email",
		logger.String("message_id", messageID),
		logger.String("from", m.sender),
		logger.String("to", s.Recipient),
		logger.String("subject", s.Subject),
	)

	select {
	case <-ctx.Done():
		return fmt.Errorf("send interrupted: %w", ctx.Err())
	case <-time.After(m.delay):
	}

	m.logger.Info(ctx, "report email sent (simulated)",
		logger.String("message_id", messageID),
		logger.Int("users", s.UserCount),
		logger.Int("total_posts", s.TotalPosts),
		logger.Float64("avg_chars", s.MeanAvgChars),
		logger.Int("attachments", len(s.ReportPaths)),
	)
	metrics.RecordEmailSent()

	return nil
}
