package resolver

import (
	"errors"
	"fmt"
)

// ErrVanished is returned when an insert reported a conflict but the
// conflicting row could not be read back.
var ErrVanished = errors.New("conflicting row not found")

// Error reports a failed resolution of one natural key.
type Error struct {
	Entity string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve %s %q: %v", e.Entity, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
