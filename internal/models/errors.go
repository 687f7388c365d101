package models

import "fmt"

// ValidationError reports a rejected field on an incoming record. Handlers map
// it to a 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup miss for a named resource. Handlers map it to
// a 404 response.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// StoreError wraps a failure from the storage layer with the operation that
// hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PartialReconciliationError signals that a ledger row was written but the
// follow-up balance update failed, leaving the stored balance stale until a
// recompute repairs it. The entry itself is durable.
type PartialReconciliationError struct {
	PortfolioName string
	EntryID       string
	Err           error
}

func (e *PartialReconciliationError) Error() string {
	return fmt.Sprintf("entry %s saved but balance update for portfolio %q failed: %v",
		e.EntryID, e.PortfolioName, e.Err)
}

func (e *PartialReconciliationError) Unwrap() error { return e.Err }
