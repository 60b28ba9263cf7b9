package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/septivank/attendance-ingestion-worker/tools/clock"
)

// Writer inserts attendance records.
type Writer interface {
	InsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error)
}

// Recorder builds and persists attendance records.
type Recorder struct {
	writer  Writer
	timeout time.Duration
	now     func() time.Time
}

// NewRecorder creates a recorder stamping records with the wall clock.
func NewRecorder(writer Writer, timeout time.Duration) *Recorder {
	return &Recorder{
		writer:  writer,
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to stamp records.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record inserts a new attendance record for event at office and returns
// its id. It always inserts; replaying an event produces another record.
func (r *Recorder) Record(ctx context.Context, event domain.CheckInEvent, office domain.Office) (string, error) {
	recordedAt := r.now().UTC()
	date, tm := clock.Split(recordedAt)

	rec := &domain.AttendanceRecord{
		UserID:     event.UserID,
		Point:      event.Point,
		Device:     event.Device,
		Date:       date,
		Time:       tm,
		Office:     office,
		RecordedAt: recordedAt,
		RawPayload: event.Raw,
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	id, err := r.writer.InsertAttendance(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return id, nil
}
