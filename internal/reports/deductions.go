package reports

import (
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
)

// DeductionSummary totals a driver's deductions in effect during a window.
// The figures are informational and are never subtracted from earnings.
type DeductionSummary struct {
	UserID       string  `json:"userId"`
	WeeklyTotal  float64 `json:"weeklyTotal"`
	MonthlyTotal float64 `json:"monthlyTotal"`
	OneTimeTotal float64 `json:"oneTimeTotal"`
	Count        int     `json:"count"`
}

// SummarizeDeductions groups ACTIVE deductions overlapping w by driver.
// WEEKLY and MONTHLY amounts are summed per frequency; ONE_TIME amounts count
// only when their start date falls inside w.
func SummarizeDeductions(w calendar.Window, deductions []*models.Deduction) map[string]*DeductionSummary {
	out := make(map[string]*DeductionSummary)
	for _, d := range deductions {
		if d.Status != models.DeductionActive || !d.Overlaps(w.Start, w.End) {
			continue
		}
		if d.Frequency == models.FrequencyOneTime && !w.Contains(d.StartDate) {
			continue
		}

		id := d.UserID.Hex()
		s := out[id]
		if s == nil {
			s = &DeductionSummary{UserID: id}
			out[id] = s
		}
		switch d.Frequency {
		case models.FrequencyWeekly:
			s.WeeklyTotal = round2(s.WeeklyTotal + d.Amount)
		case models.FrequencyMonthly:
			s.MonthlyTotal = round2(s.MonthlyTotal + d.Amount)
		case models.FrequencyOneTime:
			s.OneTimeTotal = round2(s.OneTimeTotal + d.Amount)
		}
		s.Count++
	}
	return out
}
