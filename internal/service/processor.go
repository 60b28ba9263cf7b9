package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/septivank/attendance-ingestion-worker/internal/attendance"
	"github.com/septivank/attendance-ingestion-worker/internal/device"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/septivank/attendance-ingestion-worker/internal/geo"
	"github.com/septivank/attendance-ingestion-worker/internal/logging"
	"github.com/septivank/attendance-ingestion-worker/internal/metrics"
	"github.com/septivank/attendance-ingestion-worker/internal/validator"
	"go.uber.org/zap"
)

// Stage is a step of check-in processing.
type Stage string

const (
	StageReceived      Stage = "received"
	StageParsed        Stage = "parsed"
	StageDeviceChecked Stage = "device_checked"
	StageGeofenced     Stage = "geofenced"
	StageRecorded      Stage = "recorded"
	StageAcknowledged  Stage = "acknowledged"
	StageRejected      Stage = "rejected"
)

// Outcome labels, also used as metric label values.
const (
	OutcomeRecorded       = "recorded"
	OutcomeMalformed      = "malformed"
	OutcomeDeviceMismatch = "device_mismatch"
	OutcomeUnknownUser    = "unknown_user"
	OutcomeNoOffice       = "no_office"
	OutcomeError          = "error"
)

// Result describes how far a message got through the pipeline.
type Result struct {
	Stage Stage
	// RejectedAt is the last stage reached before rejection.
	RejectedAt Stage
	Outcome    string
	UserID     string
	Device     device.Result
	Office     *domain.Office
	Distance   float64
	RecordID   string
}

// ProcessorService handles check-in messages
type ProcessorService struct {
	validator *validator.Validator
	verifier  *device.Verifier
	locator   *geo.Locator
	recorder  *attendance.Recorder
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewProcessorService creates a new processor service
func NewProcessorService(
	validator *validator.Validator,
	verifier *device.Verifier,
	locator *geo.Locator,
	recorder *attendance.Recorder,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *ProcessorService {
	return &ProcessorService{
		validator: validator,
		verifier:  verifier,
		locator:   locator,
		recorder:  recorder,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessMessage is the queue handler. It returns nil only when an
// attendance record was written.
func (s *ProcessorService) ProcessMessage(ctx context.Context, body []byte) error {
	_, err := s.Process(ctx, body)
	return err
}

// Process runs one message through parse, device check, geofence and record.
// Rejections wrap the matching domain sentinel; anything else is an
// operational failure.
func (s *ProcessorService) Process(ctx context.Context, body []byte) (Result, error) {
	res := Result{Stage: StageReceived}

	event, err := s.validator.ParseCheckIn(body)
	if err != nil {
		return s.reject(res, OutcomeMalformed, err, s.logger)
	}
	res.Stage = StageParsed
	res.UserID = event.UserID

	logger := logging.WithUserID(s.logger, event.UserID)
	logger.Info("processing check-in",
		zap.Float64("latitude", event.Point.Latitude),
		zap.Float64("longitude", event.Point.Longitude),
	)

	start := time.Now()
	verdict, err := s.verifier.Verify(ctx, event.UserID, event.Device)
	s.metrics.ObserveStage("device_check", time.Since(start))
	res.Device = verdict
	if err != nil {
		return s.reject(res, OutcomeError, fmt.Errorf("device check failed: %w", err), logger)
	}
	switch verdict {
	case device.Mismatch:
		return s.reject(res, OutcomeDeviceMismatch, fmt.Errorf("user %s: %w", event.UserID, domain.ErrDeviceMismatch), logger)
	case device.UnknownUser:
		return s.reject(res, OutcomeUnknownUser, fmt.Errorf("user %s: %w", event.UserID, domain.ErrUnknownUser), logger)
	case device.Registered:
		logger.Info("registered first device for user", zap.String("model", event.Device.Model))
	}
	res.Stage = StageDeviceChecked

	start = time.Now()
	office, dist, err := s.locator.Locate(ctx, event.Point)
	s.metrics.ObserveStage("geofence", time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrNoOfficeInRange) {
			return s.reject(res, OutcomeNoOffice, err, logger)
		}
		return s.reject(res, OutcomeError, fmt.Errorf("geofence failed: %w", err), logger)
	}
	res.Stage = StageGeofenced
	res.Office = office
	res.Distance = dist

	start = time.Now()
	id, err := s.recorder.Record(ctx, event, *office)
	s.metrics.ObserveStage("record", time.Since(start))
	if err != nil {
		return s.reject(res, OutcomeError, err, logger)
	}
	res.Stage = StageRecorded
	res.RecordID = id
	res.Outcome = OutcomeRecorded
	s.metrics.IncrementOutcome(OutcomeRecorded)

	logger.Info("attendance recorded",
		zap.String("record_id", id),
		zap.String("office_id", office.ID),
		zap.Float64("distance_m", dist),
	)

	return res, nil
}

func (s *ProcessorService) reject(res Result, outcome string, err error, logger *zap.Logger) (Result, error) {
	res.RejectedAt = res.Stage
	res.Stage = StageRejected
	res.Outcome = outcome
	s.metrics.IncrementOutcome(outcome)

	fields := []zap.Field{
		zap.String("stage", string(res.RejectedAt)),
		zap.String("outcome", outcome),
		zap.Error(err),
	}
	if domain.IsRejection(err) {
		logger.Warn("check-in rejected, no record written", fields...)
	} else {
		logger.Error("check-in processing failed", fields...)
	}

	return res, err
}
