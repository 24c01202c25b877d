package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for state-machine violations. Callers match with errors.Is.
var (
	// ErrInvalidTransition is returned when a status change is not legal from
	// the row's current state (e.g. approving an already-resolved expense, or
	// attaching a schedule to a repaying advance).
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrDuplicatePayroll is returned when the same worker appears twice in one
	// payroll batch. A row that already exists in the store does not raise this;
	// the worker is skipped so a retried batch stays idempotent.
	ErrDuplicatePayroll = errors.New("duplicate payroll row for worker")

	// ErrScheduleMismatch is returned when installment amounts do not sum to
	// the advance amount within the 0.01 tolerance.
	ErrScheduleMismatch = errors.New("installments do not sum to the advance amount")

	// ErrAdvanceOutstanding is returned when issuing a new advance to a worker
	// who still has one that is not completed. Auto-deduction assumes at most
	// one live advance per worker, so we enforce it at issue time.
	ErrAdvanceOutstanding = errors.New("worker already has an outstanding advance")

	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned by the application layer when the caller's role
	// does not permit the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports bad input rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
