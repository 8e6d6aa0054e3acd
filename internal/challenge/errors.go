package challenge

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable wraps any failure of the day store, attempt
	// counter or task catalog. The operation made no further writes and can
	// be retried.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvariantViolation marks stored data that breaks the attempt's
	// structure. The manager recovers by re-seeding the attempt.
	ErrInvariantViolation = errors.New("invariant violation")

	ErrDayLocked  = errors.New("day is locked")
	ErrDayClosed  = errors.New("day is closed")
	ErrNotStarted = errors.New("challenge not started")

	// ErrAttemptFailed is returned for edits after the attempt was lost and
	// before the failure was dismissed.
	ErrAttemptFailed = errors.New("attempt failed")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}

func invariantErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
