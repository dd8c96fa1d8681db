package parsing

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every RejectedRecord.
var ErrMalformedRecord = errors.New("malformed record")

// RejectedRecord reports a raw record the normalizer refused under its policy.
type RejectedRecord struct {
	Reason string
}

func (e *RejectedRecord) Error() string {
	return fmt.Sprintf("record rejected: %s", e.Reason)
}

// Is makes errors.Is(err, ErrMalformedRecord) hold for rejections.
func (e *RejectedRecord) Is(target error) bool {
	return target == ErrMalformedRecord
}
