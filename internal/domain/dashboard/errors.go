package dashboard

import (
	"fmt"

	"github.com/rentalhub/backend/internal/domain/shared"
)

// Engine error kinds. InvalidIdentity fails the request before any
// query is issued; Timeout and QueryError abort the whole composition,
// never producing a partially zeroed report.
var (
	ErrInvalidIdentity = shared.NewDomainError("INVALID_IDENTITY", "Caller identity is missing or malformed")
	ErrTimeout         = shared.NewDomainError("TIMEOUT", "Dashboard computation exceeded the request deadline")
)

// ErrUnknownField indicates a predicate referenced a field the target
// entity does not expose.
var ErrUnknownField = shared.NewDomainError("UNKNOWN_FIELD", "Predicate references an unknown field")

// QueryError wraps a backing-store failure for one sub-computation.
type QueryError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	return fmt.Sprintf("dashboard query %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err as a query failure for the named operation
func NewQueryError(op string, err error) *QueryError {
	return &QueryError{Op: op, Err: err}
}
