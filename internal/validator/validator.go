package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// CheckInMessage is the JSON body published on the check-in queue. An empty
// string counts as a missing field. Keys match case-insensitively.
type CheckInMessage struct {
	UserID       string   `json:"userid" validate:"required"`
	Latitude     *float64 `json:"latitude" validate:"required,lat"`
	Longitude    *float64 `json:"longitude" validate:"required,lng"`
	OSName       string   `json:"osName" validate:"required"`
	OSVersion    string   `json:"osVersion" validate:"required"`
	Brand        string   `json:"brand" validate:"required"`
	Model        string   `json:"model" validate:"required"`
	Manufacturer string   `json:"manufacturer" validate:"required"`
}

// Validator turns raw queue payloads into check-in events.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the coordinate rules registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("lat", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= -90 && lat <= 90
	})
	_ = v.RegisterValidation("lng", func(fl validator.FieldLevel) bool {
		lng := fl.Field().Float()
		return lng >= -180 && lng <= 180
	})
	return &Validator{validate: v}
}

// ParseCheckIn decodes and validates body. Every failure wraps
// domain.ErrMalformedMessage.
func (v *Validator) ParseCheckIn(body []byte) (domain.CheckInEvent, error) {
	var msg CheckInMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return domain.CheckInEvent{}, fmt.Errorf("failed to unmarshal message: %v: %w", err, domain.ErrMalformedMessage)
	}

	if err := v.validate.Struct(msg); err != nil {
		return domain.CheckInEvent{}, fmt.Errorf("%s: %w", describe(err), domain.ErrMalformedMessage)
	}

	return domain.CheckInEvent{
		UserID: msg.UserID,
		Point: domain.Point{
			Latitude:  *msg.Latitude,
			Longitude: *msg.Longitude,
		},
		Device: domain.Descriptor{
			OSName:       msg.OSName,
			OSVersion:    msg.OSVersion,
			Brand:        msg.Brand,
			Model:        msg.Model,
			Manufacturer: msg.Manufacturer,
		},
		Raw: body,
	}, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			parts = append(parts, fmt.Sprintf("missing field %s", fe.Field()))
			continue
		}
		parts = append(parts, fmt.Sprintf("invalid field %s", fe.Field()))
	}
	return strings.Join(parts, ", ")
}
