package notify

import "errors"

// Sentinel kinds for notification errors.
var (
	ErrNoRecipient = errors.New("no recipient configured")
)
