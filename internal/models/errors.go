package models

import (
	"errors"
	"fmt"
)

// ErrNotFound marks operations targeting an id that does not exist or is
// soft-deleted. Soft-deleted todos are indistinguishable from missing ones
// everywhere except purge.
var ErrNotFound = errors.New("todo not found")

// ValidationError reports a field value rejected before it reached the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure of the underlying durable store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
