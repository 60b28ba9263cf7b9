package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// Store is an in-memory store. Offices keep insertion order.
type Store struct {
	mu           sync.RWMutex
	fingerprints map[string]domain.DeviceFingerprint
	offices      []domain.Office
	records      []domain.AttendanceRecord

	// Err, when set, is returned by every operation.
	Err error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		fingerprints: make(map[string]domain.DeviceFingerprint),
	}
}

// AddOffice appends an office to the end of the storage order.
func (s *Store) AddOffice(o domain.Office) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offices = append(s.offices, o)
}

// PutFingerprint stores fp, replacing any existing fingerprint of the user.
func (s *Store) PutFingerprint(fp domain.DeviceFingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[fp.UserID] = fp
}

// Records returns a copy of every inserted attendance record.
func (s *Store) Records() []domain.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttendanceRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) FindFingerprint(ctx context.Context, userID string) (*domain.DeviceFingerprint, error) {
	if err := s.check(ctx, "memstore.FindFingerprint"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fp, ok := s.fingerprints[userID]
	if !ok {
		return nil, fmt.Errorf("fingerprint for %q: %w", userID, domain.ErrNotFound)
	}
	return &fp, nil
}

func (s *Store) RegisterFingerprint(ctx context.Context, fp domain.DeviceFingerprint) error {
	if err := s.check(ctx, "memstore.RegisterFingerprint"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fingerprints[fp.UserID]; exists {
		return nil
	}
	if fp.CreatedAt.IsZero() {
		fp.CreatedAt = time.Now().UTC()
	}
	s.fingerprints[fp.UserID] = fp
	return nil
}

func (s *Store) ListOffices(ctx context.Context) ([]domain.Office, error) {
	if err := s.check(ctx, "memstore.ListOffices"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Office, len(s.offices))
	copy(out, s.offices)
	return out, nil
}

func (s *Store) InsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error) {
	if err := s.check(ctx, "memstore.InsertAttendance"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.New().String()
	s.records = append(s.records, *rec)
	return rec.ID, nil
}

func (s *Store) check(ctx context.Context, op string) error {
	if s.Err != nil {
		return domain.WrapStoreError(op, s.Err)
	}
	return domain.WrapStoreError(op, ctx.Err())
}
