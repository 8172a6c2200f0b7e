package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestExpand_MondayWednesdayFriday(t *testing.T) {
	set, err := ParseWeekdays([]string{"monday", "wednesday", "friday"})
	require.NoError(t, err)

	w, err := NewWindow(date("2025-01-06"), date("2025-01-12"))
	require.NoError(t, err)

	dates, err := Expand(w, set)
	require.NoError(t, err)
	assert.Equal(t, []civil.Date{date("2025-01-06"), date("2025-01-08"), date("2025-01-10")}, dates)
}

func TestExpand_EmptySelection(t *testing.T) {
	w := Window{Start: date("2025-01-06"), End: date("2025-01-12")}
	_, err := Expand(w, WeekdaySet{})
	assert.ErrorIs(t, err, ErrNoWeekdays)
}

func TestExpand_NoMatchingDay(t *testing.T) {
	set, err := ParseWeekdays([]string{"sun"})
	require.NoError(t, err)

	dates, err := Expand(Window{Start: date("2025-01-06"), End: date("2025-01-08")}, set)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestNewWindow_Inverted(t *testing.T) {
	_, err := NewWindow(date("2025-01-12"), date("2025-01-06"))
	assert.ErrorIs(t, err, ErrInvertedRange)

	_, err = NewWindow(civil.Date{}, date("2025-01-06"))
	assert.Error(t, err)
}

func TestWeekOf(t *testing.T) {
	wed := date("2025-01-08")

	mon := WeekOf(wed, WeekStartsMonday)
	assert.Equal(t, date("2025-01-06"), mon.Start)
	assert.Equal(t, date("2025-01-12"), mon.End)

	sun := WeekOf(wed, WeekStartsSunday)
	assert.Equal(t, date("2025-01-05"), sun.Start)
	assert.Equal(t, date("2025-01-11"), sun.End)

	// A Sunday opens its own Sunday week and closes the Monday week.
	sunday := date("2025-01-12")
	assert.Equal(t, sunday, WeekOf(sunday, WeekStartsSunday).Start)
	assert.Equal(t, date("2025-01-06"), WeekOf(sunday, WeekStartsMonday).Start)
}

func TestWindow_DaysAndIntersect(t *testing.T) {
	w := Window{Start: date("2024-12-30"), End: date("2025-01-02")}
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}, w.Strings())
	assert.True(t, w.Contains(date("2025-01-01")))
	assert.False(t, w.Contains(date("2025-01-03")))

	in2025, ok := w.Intersect(Year(2025))
	require.True(t, ok)
	assert.Equal(t, 2, in2025.Len())

	_, ok = w.Intersect(Year(2023))
	assert.False(t, ok)
}

func TestParseWeekStart(t *testing.T) {
	ws, err := ParseWeekStart("Sunday")
	require.NoError(t, err)
	assert.Equal(t, WeekStartsSunday, ws)
	assert.Equal(t, "sunday", ws.String())

	ws, err = ParseWeekStart("mon")
	require.NoError(t, err)
	assert.Equal(t, WeekStartsMonday, ws)

	_, err = ParseWeekStart("friday")
	assert.Error(t, err)
}

func TestToday_UsesLocation(t *testing.T) {
	clock := FixedClock{At: time.Date(2025, 1, 6, 23, 30, 0, 0, time.UTC)}
	assert.Equal(t, date("2025-01-06"), Today(clock, time.UTC))

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, date("2025-01-07"), Today(clock, tokyo))
}

func TestWeekdaysFromFlags(t *testing.T) {
	set, err := WeekdaysFromFlags(map[string]bool{"monday": true, "tuesday": false, "friday": true})
	require.NoError(t, err)
	assert.True(t, set.Has(time.Monday))
	assert.False(t, set.Has(time.Tuesday))
	assert.True(t, set.Has(time.Friday))

	_, err = WeekdaysFromFlags(map[string]bool{"someday": true})
	assert.Error(t, err)
}
