package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrReferenced is returned when a delete is blocked because other rows
	// still point at the record.
	ErrReferenced = errors.New("persistence: still referenced")
)

// MissingReferenceError reports a nested write that named a record which does
// not exist, e.g. a packing entry pointing at an unknown equipment id. It
// unwraps to ErrNotFound so callers can treat it uniformly.
type MissingReferenceError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("persistence: %s %s not found", e.Entity, e.ID)
}

// Unwrap lets errors.Is(err, ErrNotFound) succeed.
func (e *MissingReferenceError) Unwrap() error {
	return ErrNotFound
}
