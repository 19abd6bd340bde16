package report

import (
	"errors"
	"fmt"
)

// Sentinel kinds for report errors.
var (
	ErrUnknownFormat = errors.New("unknown report format")
)

// IOError reports a failed filesystem operation while writing a report.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
