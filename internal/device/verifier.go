package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// Result is the outcome of a fingerprint check.
type Result int

const (
	Match Result = iota
	Mismatch
	UnknownUser
	// Registered means the user had no fingerprint and the reported device
	// was stored as theirs. Only produced when auto-registration is on.
	Registered
)

func (r Result) String() string {
	switch r {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case UnknownUser:
		return "unknown_user"
	case Registered:
		return "registered"
	default:
		return "invalid"
	}
}

// Passed reports whether the check-in may continue.
func (r Result) Passed() bool {
	return r == Match || r == Registered
}

// FingerprintStore reads and registers device fingerprints.
type FingerprintStore interface {
	FindFingerprint(ctx context.Context, userID string) (*domain.DeviceFingerprint, error)
	RegisterFingerprint(ctx context.Context, fp domain.DeviceFingerprint) error
}

// Verifier compares a reported device against the user's registered one.
type Verifier struct {
	store        FingerprintStore
	timeout      time.Duration
	autoRegister bool
}

// NewVerifier creates a verifier. autoRegister makes first-seen users
// register the reported device instead of being rejected.
func NewVerifier(store FingerprintStore, timeout time.Duration, autoRegister bool) *Verifier {
	return &Verifier{
		store:        store,
		timeout:      timeout,
		autoRegister: autoRegister,
	}
}

// Verify looks up the stored fingerprint for userID and compares all five
// descriptor fields. A store failure is returned as an error, never as a pass.
func (v *Verifier) Verify(ctx context.Context, userID string, reported domain.Descriptor) (Result, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	stored, err := v.store.FindFingerprint(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		if !v.autoRegister {
			return UnknownUser, nil
		}
		fp := domain.DeviceFingerprint{
			UserID:    userID,
			Device:    reported,
			CreatedAt: time.Now().UTC(),
		}
		if err := v.store.RegisterFingerprint(ctx, fp); err != nil {
			return UnknownUser, fmt.Errorf("failed to register fingerprint: %w", err)
		}
		return Registered, nil
	}
	if err != nil {
		return Mismatch, fmt.Errorf("failed to look up fingerprint: %w", err)
	}

	if !stored.Device.Equal(reported) {
		return Mismatch, nil
	}
	return Match, nil
}
