package validate

import "fmt"

// ValidationError aggregates every rejected record for one resource.
// It is reported, never used to discard the valid records alongside it.
type ValidationError struct {
	Resource string
	Records  []RecordError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d invalid records", e.Resource, len(e.Records))
}

// Error wraps a rejection list for callers that need a single error
// value. Returns nil when errs is empty.
func Error(resource string, errs []RecordError) error {
	if len(errs) == 0 {
		return nil
	}

	return &ValidationError{Resource: resource, Records: errs}
}
