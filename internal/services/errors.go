package services

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing customer, product, or recommendation row.
// Reported to the caller, never retried.
var ErrNotFound = errors.New("not found")

// ValidationError reports an unusable request input. Reported to the caller,
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PersistenceError wraps a storage write failure. Fatal for the request that
// triggered it; rows written earlier in the same request are not rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
