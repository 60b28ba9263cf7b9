package domain

import (
	"context"
	"errors"
	"fmt"
)

// Rejections: business-rule outcomes, never retried.
var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrDeviceMismatch   = errors.New("device mismatch")
	ErrUnknownUser      = errors.New("unknown user")
	ErrNoOfficeInRange  = errors.New("no office in range")
)

// Operational failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsRejection reports whether err is a business-rule rejection rather than
// an operational failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, ErrDeviceMismatch) ||
		errors.Is(err, ErrUnknownUser) ||
		errors.Is(err, ErrNoOfficeInRange)
}

// WrapStoreError tags a store failure with ErrStoreUnavailable, keeping the
// cause in the message. Deadline and cancellation are called out explicitly.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out: %w", op, ErrStoreUnavailable)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: canceled: %w", op, ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", op, err, ErrStoreUnavailable)
}
