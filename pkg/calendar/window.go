package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var ErrInvertedRange = errors.New("end date is before start date")

// WeekStart selects the first day of a reporting week.
type WeekStart time.Weekday

const (
	WeekStartsSunday = WeekStart(time.Sunday)
	WeekStartsMonday = WeekStart(time.Monday)
)

func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sun", "sunday":
		return WeekStartsSunday, nil
	case "mon", "monday":
		return WeekStartsMonday, nil
	}
	return 0, fmt.Errorf("unknown week start %q", s)
}

func (w WeekStart) String() string {
	return strings.ToLower(time.Weekday(w).String())
}

// Window is an inclusive range of calendar dates.
type Window struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

func NewWindow(start, end civil.Date) (Window, error) {
	if !start.IsValid() || !end.IsValid() {
		return Window{}, fmt.Errorf("invalid date range %s..%s", start, end)
	}
	if end.Before(start) {
		return Window{}, ErrInvertedRange
	}
	return Window{Start: start, End: end}, nil
}

// WeekOf returns the seven-day window containing d.
func WeekOf(d civil.Date, ws WeekStart) Window {
	offset := (int(Weekday(d)) - int(ws) + 7) % 7
	start := d.AddDays(-offset)
	return Window{Start: start, End: start.AddDays(6)}
}

func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Len is the number of dates in the window.
func (w Window) Len() int {
	return w.End.DaysSince(w.Start) + 1
}

// Days lists every date of the window in ascending order.
func (w Window) Days() []civil.Date {
	days := make([]civil.Date, 0, w.Len())
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Strings lists the window's dates as YYYY-MM-DD.
func (w Window) Strings() []string {
	days := w.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

// Year returns the window spanning Jan 1..Dec 31 of year.
func Year(year int) Window {
	return Window{
		Start: civil.Date{Year: year, Month: time.January, Day: 1},
		End:   civil.Date{Year: year, Month: time.December, Day: 31},
	}
}

// Intersect returns the overlap of w and o and whether one exists.
func (w Window) Intersect(o Window) (Window, bool) {
	start, end := w.Start, w.End
	if o.Start.After(start) {
		start = o.Start
	}
	if o.End.Before(end) {
		end = o.End
	}
	if end.Before(start) {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}
