package store

import (
	"context"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// Store is the persistence surface the pipeline needs. Implementations
// wrap every driver failure in domain.ErrStoreUnavailable.
type Store interface {
	// FindFingerprint returns the most recently stored fingerprint for the
	// user, or domain.ErrNotFound.
	FindFingerprint(ctx context.Context, userID string) (*domain.DeviceFingerprint, error)
	// RegisterFingerprint stores fp unless the user already has one.
	RegisterFingerprint(ctx context.Context, fp domain.DeviceFingerprint) error
	// ListOffices returns all offices in storage order.
	ListOffices(ctx context.Context) ([]domain.Office, error)
	// InsertAttendance inserts rec and returns its generated id.
	InsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error)
}
