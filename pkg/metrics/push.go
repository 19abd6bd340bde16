package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// defaultJob groups pushed metrics when no job name is configured.
const defaultJob = "userpulse"

// Push delivers everything collected on the custom registry to a
// pushgateway. Batch runs exit right after finishing, so scraping the
// process is not an option.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return ErrNoPushURL
	}

	if job == "" {
		job = defaultJob
	}

	if err := push.New(url, job).Gatherer(customRegistry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}

	return nil
}
