package service

import (
	"errors"
)

// Sentinel kinds for pipeline errors.
var (
	// ErrNoUsers aborts a run when validation leaves no users to
	// aggregate.
	ErrNoUsers = errors.New("no valid users to aggregate")
)
