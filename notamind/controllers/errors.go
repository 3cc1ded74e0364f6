package controllers

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced note or attachment that does not
// exist.
var ErrNotFound = errors.New("not found")

// ValidationError marks malformed or missing required input. Raised
// before any mutation is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// QuotaExceededError marks a create or upload refused because the
// configured ceiling is already reached. The ceiling is echoed in the
// message.
type QuotaExceededError struct {
	Resource string
	Limit    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s limit reached: at most %d allowed", e.Resource, e.Limit)
}

// StorageError wraps an unexpected failure in either store. No
// partial-state guarantee beyond the failed call itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
