package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// Repository handles database operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindFingerprint returns the registered device of a user
func (r *Repository) FindFingerprint(ctx context.Context, userID string) (*domain.DeviceFingerprint, error) {
	const op = "repository.FindFingerprint"

	query := `
		SELECT user_id, os_name, os_version, brand, model, manufacturer, created_at
		FROM device_fingerprints
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var fp domain.DeviceFingerprint
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&fp.UserID,
		&fp.Device.OSName,
		&fp.Device.OSVersion,
		&fp.Device.Brand,
		&fp.Device.Model,
		&fp.Device.Manufacturer,
		&fp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: user %s: %w", op, userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.WrapStoreError(op, err)
	}

	return &fp, nil
}

// RegisterFingerprint stores a fingerprint unless the user already has one
func (r *Repository) RegisterFingerprint(ctx context.Context, fp domain.DeviceFingerprint) error {
	const op = "repository.RegisterFingerprint"

	query := `
		INSERT INTO device_fingerprints (user_id, os_name, os_version, brand, model, manufacturer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		fp.UserID,
		fp.Device.OSName,
		fp.Device.OSVersion,
		fp.Device.Brand,
		fp.Device.Model,
		fp.Device.Manufacturer,
		fp.CreatedAt,
	)
	if err != nil {
		return domain.WrapStoreError(op, describePgError(err))
	}

	return nil
}

// ListOffices returns every office in insertion order
func (r *Repository) ListOffices(ctx context.Context) ([]domain.Office, error) {
	const op = "repository.ListOffices"

	query := `
		SELECT id, name, latitude, longitude
		FROM offices
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.WrapStoreError(op, err)
	}
	defer rows.Close()

	var offices []domain.Office
	for rows.Next() {
		var o domain.Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Point.Latitude, &o.Point.Longitude); err != nil {
			return nil, domain.WrapStoreError(op, err)
		}
		offices = append(offices, o)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapStoreError(op, err)
	}

	return offices, nil
}

// InsertAttendance inserts an attendance record and returns its id
func (r *Repository) InsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error) {
	const op = "repository.InsertAttendance"

	office, err := json.Marshal(rec.Office)
	if err != nil {
		return "", fmt.Errorf("%s: failed to marshal office: %w", op, err)
	}

	var raw []byte
	if json.Valid(rec.RawPayload) {
		raw = rec.RawPayload
	}

	query := `
		INSERT INTO attendance_records (
			id, user_id, latitude, longitude,
			os_name, os_version, brand, model, manufacturer,
			record_date, record_time, office, raw_payload, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	id := uuid.New()
	_, err = r.pool.Exec(ctx, query,
		id,
		rec.UserID,
		rec.Point.Latitude,
		rec.Point.Longitude,
		rec.Device.OSName,
		rec.Device.OSVersion,
		rec.Device.Brand,
		rec.Device.Model,
		rec.Device.Manufacturer,
		rec.Date,
		rec.Time,
		office,
		raw,
		rec.RecordedAt,
	)
	if err != nil {
		return "", domain.WrapStoreError(op, describePgError(err))
	}

	rec.ID = id.String()
	return rec.ID, nil
}

// describePgError adds the SQLSTATE to postgres errors
func describePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("pg error %s (%s): %w", pgErr.Code, pgErr.ConstraintName, err)
	}
	return err
}
