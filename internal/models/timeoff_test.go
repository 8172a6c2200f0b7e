package models

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestTimeOffRequest_DayCount(t *testing.T) {
	start := civil.Date{Year: 2025, Month: 3, Day: 30}
	single := &TimeOffRequest{RequestDate: start}
	assert.Equal(t, 1, single.DayCount())
	assert.Equal(t, []civil.Date{start}, single.Days())

	end := civil.Date{Year: 2025, Month: 4, Day: 2}
	ranged := &TimeOffRequest{RequestDate: start, EndDate: &end}
	assert.Equal(t, 4, ranged.DayCount())
	assert.Equal(t, []civil.Date{
		start,
		{Year: 2025, Month: 3, Day: 31},
		{Year: 2025, Month: 4, Day: 1},
		end,
	}, ranged.Days())
}

func TestTimeOffRequest_Covers(t *testing.T) {
	start := civil.Date{Year: 2025, Month: 1, Day: 6}
	end := civil.Date{Year: 2025, Month: 1, Day: 8}
	r := &TimeOffRequest{RequestDate: start, EndDate: &end}

	assert.False(t, r.Covers(civil.Date{Year: 2025, Month: 1, Day: 5}))
	assert.True(t, r.Covers(start))
	assert.True(t, r.Covers(civil.Date{Year: 2025, Month: 1, Day: 7}))
	assert.True(t, r.Covers(end))
	assert.False(t, r.Covers(civil.Date{Year: 2025, Month: 1, Day: 9}))
}

func TestDeduction_Overlaps(t *testing.T) {
	from := civil.Date{Year: 2025, Month: 1, Day: 6}
	to := civil.Date{Year: 2025, Month: 1, Day: 12}
	before := civil.Date{Year: 2025, Month: 1, Day: 1}
	after := civil.Date{Year: 2025, Month: 1, Day: 20}

	open := &Deduction{StartDate: before}
	assert.True(t, open.Overlaps(from, to))

	ended := &Deduction{StartDate: before, EndDate: &before}
	assert.False(t, ended.Overlaps(from, to))

	future := &Deduction{StartDate: after}
	assert.False(t, future.Overlaps(from, to))
}
