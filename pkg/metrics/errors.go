package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrNoPushURL = errors.New("pushgateway URL not configured")
)
