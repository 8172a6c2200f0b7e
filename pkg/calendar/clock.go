// Package calendar holds the date arithmetic shared by scheduling and
// reporting: an injectable clock, week windows and weekday selections.
package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Used in tests.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// Today returns the calendar date of clock's now in loc.
func Today(clock Clock, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(clock.Now().In(loc))
}

// Weekday returns the day of week for d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// ParseDate parses YYYY-MM-DD. Empty input yields the zero date and no error.
func ParseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}

// IsZero reports whether d is the zero date.
func IsZero(d civil.Date) bool {
	return d == civil.Date{}
}
