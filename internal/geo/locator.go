package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// ThresholdMeters is the maximum distance from an office that still counts
// as being at that office.
const ThresholdMeters = 200.0

// OfficeSource returns every registered office in storage order.
type OfficeSource interface {
	ListOffices(ctx context.Context) ([]domain.Office, error)
}

// Locator resolves a point to a registered office.
type Locator struct {
	offices OfficeSource
	timeout time.Duration
}

// NewLocator creates a locator. A zero timeout leaves the caller's context untouched.
func NewLocator(offices OfficeSource, timeout time.Duration) *Locator {
	return &Locator{
		offices: offices,
		timeout: timeout,
	}
}

// Locate returns the first office, in storage order, whose distance to p is
// within ThresholdMeters. It is not a nearest-office search: when several
// offices are in range the earliest stored one wins.
func (l *Locator) Locate(ctx context.Context, p domain.Point) (*domain.Office, float64, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	offices, err := l.offices.ListOffices(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offices: %w", err)
	}

	for i := range offices {
		d := Distance(p, offices[i].Point)
		if d <= ThresholdMeters {
			office := offices[i]
			return &office, d, nil
		}
	}

	return nil, 0, fmt.Errorf("%d offices checked: %w", len(offices), domain.ErrNoOfficeInRange)
}
