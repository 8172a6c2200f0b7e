package calendar

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var ErrNoWeekdays = fmt.Errorf("no weekdays selected")

// WeekdaySet is a selection of days of the week indexed by time.Weekday.
type WeekdaySet [7]bool

// ParseWeekdays builds a set from names such as "monday" or "mon".
func ParseWeekdays(names []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, name := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return WeekdaySet{}, fmt.Errorf("unknown weekday %q", name)
		}
		set[wd] = true
	}
	return set, nil
}

// WeekdaysFromFlags builds a set from a {"monday": true, ...} selection.
func WeekdaysFromFlags(flags map[string]bool) (WeekdaySet, error) {
	var names []string
	for name, on := range flags {
		if on {
			names = append(names, name)
		}
	}
	return ParseWeekdays(names)
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s[d]
}

func (s WeekdaySet) Empty() bool {
	return s == WeekdaySet{}
}

// Expand returns every date in w whose weekday is in set, ascending.
// An empty set is an error rather than an empty result.
func Expand(w Window, set WeekdaySet) ([]civil.Date, error) {
	if set.Empty() {
		return nil, ErrNoWeekdays
	}
	if w.End.Before(w.Start) {
		return nil, ErrInvertedRange
	}
	var dates []civil.Date
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		if set.Has(Weekday(d)) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
