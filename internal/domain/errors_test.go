package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsRejection(t *testing.T) {
	assert.True(t, domain.IsRejection(fmt.Errorf("parse: %w", domain.ErrMalformedMessage)))
	assert.True(t, domain.IsRejection(domain.ErrDeviceMismatch))
	assert.True(t, domain.IsRejection(domain.ErrUnknownUser))
	assert.True(t, domain.IsRejection(domain.ErrNoOfficeInRange))

	assert.False(t, domain.IsRejection(domain.ErrStoreUnavailable))
	assert.False(t, domain.IsRejection(errors.New("boom")))
	assert.False(t, domain.IsRejection(nil))
}

func TestWrapStoreError(t *testing.T) {
	assert.Nil(t, domain.WrapStoreError("op", nil))

	err := domain.WrapStoreError("repository.ListOffices", context.DeadlineExceeded)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "timed out")

	err = domain.WrapStoreError("repository.ListOffices", errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDescriptorEqual(t *testing.T) {
	a := domain.Descriptor{OSName: "Android", OSVersion: "13", Brand: "Pixel", Model: "7", Manufacturer: "Google"}
	b := a
	assert.True(t, a.Equal(b))

	b.Model = "7a"
	assert.False(t, a.Equal(b))
}
