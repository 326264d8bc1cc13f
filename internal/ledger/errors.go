package ledger

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the ledger returns wraps exactly one of these so
// callers can branch on errors.Is without string matching. Validation errors
// are fixable by correcting input; conflict and invalid-state errors mean the
// caller's view is stale and must be re-fetched, never blindly retried.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
	ErrAuth         = errors.New("not authorized")
)

// Specific errors, each wrapping its kind.
var (
	ErrEmptyReport     = fmt.Errorf("%w: report has no line items", ErrValidation)
	ErrEmptyReason     = fmt.Errorf("%w: rejection reason is required", ErrValidation)
	ErrImmutableReport = fmt.Errorf("%w: report already submitted", ErrInvalidState)
	ErrImmutableEntry  = fmt.Errorf("%w: entry is no longer pending", ErrInvalidState)
	ErrEntryNotPending = fmt.Errorf("%w: entry is not pending", ErrInvalidState)
	ErrAlreadyPulled   = fmt.Errorf("%w: report already pulled", ErrConflict)
	ErrNotSubmitted    = fmt.Errorf("%w: report is not submitted", ErrConflict)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
