package qdjango

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by First and Get when the query matches
	// no rows.
	ErrNotFound = errors.New("no results found")
	// Rollback can be returned from functions passed to Orm.Transaction
	// to roll the transaction back without Transaction returning an
	// error.
	Rollback = errors.New("transaction rolled back")
)

// UnsupportedOperationError is returned when an operation can't be
// expressed for the queryset it was invoked on, e.g. an update or delete
// over a queryset with joins. It's detected at compile time, before
// anything reaches the backend.
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("can't %s: %s", e.Op, e.Reason)
}

// ExecutionError wraps any failure reported by the backend while executing
// a statement. The backend detail is preserved as an opaque cause, never
// parsed.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %q: %v", e.Query, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func execError(query string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Query: query, Err: err}
}
