package db

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned by an insert that hit a uniqueness constraint.
	// Callers recover from it; it is never a failure on its own.
	ErrConflict = errors.New("unique constraint conflict")

	// ErrNotFound is returned by a lookup by natural key that matched no row.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable matches every infrastructure failure of a store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError reports a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

// Unwrap lets errors.Is match both ErrStoreUnavailable and the driver error.
func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
