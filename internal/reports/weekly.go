package reports

import (
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
)

type DailyEarning struct {
	Date           string  `json:"date"`
	CompletedTasks int     `json:"completedTasks"`
	Earnings       float64 `json:"earnings"`
}

type WeeklyStats struct {
	TotalTasks     int            `json:"totalTasks"`
	CompletedTasks int            `json:"completedTasks"`
	AcceptedTasks  int            `json:"acceptedTasks"`
	PendingTasks   int            `json:"pendingTasks"`
	RejectedTasks  int            `json:"rejectedTasks"`
	CancelledTasks int            `json:"cancelledTasks"`
	Earnings       float64        `json:"earnings"`
	DaysWorked     int            `json:"daysWorked"`
	AveragePerDay  float64        `json:"averagePerDay"`
	Rating         float64        `json:"rating"`
	Daily          []DailyEarning `json:"daily"`
}

type DriverWeekly struct {
	Driver      DriverRef   `json:"driver"`
	WeeklyStats WeeklyStats `json:"weeklyStats"`
}

type WeeklyTotals struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	AcceptedTasks  int     `json:"acceptedTasks"`
	PendingTasks   int     `json:"pendingTasks"`
	Earnings       float64 `json:"earnings"`
	DaysWorked     int     `json:"daysWorked"`
	AveragePerDay  float64 `json:"averagePerDay"`
	AverageRating  float64 `json:"averageRating"`
}

// WeeklyReport holds one entry per rostered driver. Tasks assigned to users
// outside the roster, such as former drivers, are summed in Unattributed so
// that Totals still cover every assigned task in the window.
type WeeklyReport struct {
	WeekStart    string         `json:"weekStart"`
	WeekEnd      string         `json:"weekEnd"`
	Drivers      []DriverWeekly `json:"drivers"`
	Unattributed WeeklyStats    `json:"unattributed"`
	Totals       WeeklyTotals   `json:"totals"`
}

// BuildWeekly computes per-driver counts and earnings for w. Earnings sum the
// price of COMPLETED tasks scheduled inside w. DaysWorked is the WORKED count
// of the activity matrix for the same window, so both views always agree.
func BuildWeekly(w calendar.Window, drivers []*models.User, tasks []*models.Task) *WeeklyReport {
	activity := BuildActivity(w, drivers, tasks, nil, ActivityOptions{})

	counts := make(map[string]*WeeklyStats)
	for _, t := range tasks {
		if t.AssignedToID == nil || !w.Contains(t.ScheduledDate) {
			continue
		}
		id := t.AssignedToID.Hex()
		stats := counts[id]
		if stats == nil {
			stats = &WeeklyStats{}
			counts[id] = stats
		}
		stats.TotalTasks++
		switch t.Status {
		case models.TaskCompleted:
			stats.CompletedTasks++
			stats.Earnings = round2(stats.Earnings + t.Price)
		case models.TaskAccepted:
			stats.AcceptedTasks++
		case models.TaskPending:
			stats.PendingTasks++
		case models.TaskRejected:
			stats.RejectedTasks++
		case models.TaskCancelled:
			stats.CancelledTasks++
		}
	}

	report := &WeeklyReport{
		WeekStart: w.Start.String(),
		WeekEnd:   w.End.String(),
		Drivers:   make([]DriverWeekly, 0, len(activity.Drivers)),
	}

	var ratingSum float64
	rostered := make(map[string]bool, len(activity.Drivers))
	for _, da := range activity.Drivers {
		rostered[da.Driver.ID] = true
		stats := WeeklyStats{}
		if c := counts[da.Driver.ID]; c != nil {
			stats = *c
		}
		stats.DaysWorked = da.Summary.DaysWorked
		stats.AveragePerDay = averagePerDay(stats.Earnings, stats.DaysWorked)
		stats.Rating = da.Driver.Rating
		stats.Daily = make([]DailyEarning, 0, len(activity.Dates))
		for _, d := range activity.Dates {
			day := da.DailyActivity[d]
			stats.Daily = append(stats.Daily, DailyEarning{
				Date:           d,
				CompletedTasks: day.CompletedCount,
				Earnings:       day.Earnings,
			})
		}

		report.Totals.TotalTasks += stats.TotalTasks
		report.Totals.CompletedTasks += stats.CompletedTasks
		report.Totals.AcceptedTasks += stats.AcceptedTasks
		report.Totals.PendingTasks += stats.PendingTasks
		report.Totals.Earnings = round2(report.Totals.Earnings + stats.Earnings)
		report.Totals.DaysWorked += stats.DaysWorked
		ratingSum += stats.Rating

		report.Drivers = append(report.Drivers, DriverWeekly{Driver: da.Driver, WeeklyStats: stats})
	}

	for id, c := range counts {
		if rostered[id] {
			continue
		}
		u := &report.Unattributed
		u.TotalTasks += c.TotalTasks
		u.CompletedTasks += c.CompletedTasks
		u.AcceptedTasks += c.AcceptedTasks
		u.PendingTasks += c.PendingTasks
		u.RejectedTasks += c.RejectedTasks
		u.CancelledTasks += c.CancelledTasks
		u.Earnings = round2(u.Earnings + c.Earnings)
	}
	report.Totals.TotalTasks += report.Unattributed.TotalTasks
	report.Totals.CompletedTasks += report.Unattributed.CompletedTasks
	report.Totals.AcceptedTasks += report.Unattributed.AcceptedTasks
	report.Totals.PendingTasks += report.Unattributed.PendingTasks
	report.Totals.Earnings = round2(report.Totals.Earnings + report.Unattributed.Earnings)

	report.Totals.AveragePerDay = averagePerDay(report.Totals.Earnings, report.Totals.DaysWorked)
	if n := len(report.Drivers); n > 0 {
		report.Totals.AverageRating = round2(ratingSum / float64(n))
	}
	return report
}

// Driver returns the entry for driverID, if present.
func (r *WeeklyReport) Driver(driverID string) (DriverWeekly, bool) {
	for _, d := range r.Drivers {
		if d.Driver.ID == driverID {
			return d, true
		}
	}
	return DriverWeekly{}, false
}

func averagePerDay(total float64, days int) float64 {
	if days == 0 {
		return 0
	}
	return round2(total / float64(days))
}
