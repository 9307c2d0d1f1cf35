package ingest

import (
	"fmt"

	"github.com/PratikDhanave/safedrive-service/internal/validate"
)

// ValidationError reports a payload that failed the schema check.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Kind   validate.Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s data: %s", e.Kind, e.Reason)
}

// PersistenceError wraps a failed store write. Err carries the store's message
// verbatim so callers can surface it.
type PersistenceError struct {
	Kind validate.Kind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
