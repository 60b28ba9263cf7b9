package clock

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Split returns the UTC calendar date and wall-clock time of t.
func Split(t time.Time) (date, clock string) {
	u := t.UTC()
	return u.Format(DateLayout), u.Format(TimeLayout)
}
