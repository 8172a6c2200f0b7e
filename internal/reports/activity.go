// Package reports folds tasks, time-off and deductions into the read-only
// aggregates behind the activity grid, weekly earnings and exports.
package reports

import (
	"math"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
)

type Activity string

const (
	Worked Activity = "WORKED"
	Off    Activity = "OFF"
	Idle   Activity = "IDLE"
)

type DriverRef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PersonalID string  `json:"personalId"`
	Rating     float64 `json:"rating"`
}

func RefOf(u *models.User) DriverRef {
	return DriverRef{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		PersonalID: u.PersonalID,
		Rating:     u.Rating,
	}
}

type DayActivity struct {
	Activity       Activity `json:"activity"`
	TaskCount      int      `json:"taskCount"`
	CompletedCount int      `json:"completedCount"`
	Earnings       float64  `json:"earnings"`
	TimeOffStatus  string   `json:"timeOffStatus,omitempty"`
}

type ActivitySummary struct {
	DaysWorked     int     `json:"daysWorked"`
	DaysOff        int     `json:"daysOff"`
	DaysIdle       int     `json:"daysIdle"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	TotalEarnings  float64 `json:"totalEarnings"`
}

type DriverActivity struct {
	Driver        DriverRef              `json:"driver"`
	DailyActivity map[string]DayActivity `json:"dailyActivity"`
	Summary       ActivitySummary        `json:"summary"`
}

type DateTotals struct {
	Worked         int     `json:"worked"`
	Off            int     `json:"off"`
	Idle           int     `json:"idle"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	Earnings       float64 `json:"earnings"`
}

type ActivityTotals struct {
	ByDate         map[string]DateTotals `json:"byDate"`
	DaysWorked     int                   `json:"daysWorked"`
	DaysOff        int                   `json:"daysOff"`
	TotalTasks     int                   `json:"totalTasks"`
	CompletedTasks int                   `json:"completedTasks"`
	TotalEarnings  float64               `json:"totalEarnings"`
}

type ActivityReport struct {
	Dates   []string         `json:"dates"`
	Drivers []DriverActivity `json:"drivers"`
	Totals  ActivityTotals   `json:"totals"`
}

type ActivityOptions struct {
	// IncludePendingTimeOff also marks days covered by PENDING requests as OFF.
	IncludePendingTimeOff bool
}

// BuildActivity classifies every driver x date of w as WORKED, OFF or IDLE.
//
// A day with at least one task (any status) is WORKED; only COMPLETED tasks
// add to CompletedCount and Earnings. A day with no task but a qualifying
// time-off request is OFF; anything else is IDLE. Inactive drivers are listed
// only when they have tasks in the window. Drivers keep the roster order.
func BuildActivity(w calendar.Window, drivers []*models.User, tasks []*models.Task, timeOff []*models.TimeOffRequest, opts ActivityOptions) *ActivityReport {
	dates := w.Strings()

	tasksByDriver := make(map[string][]*models.Task)
	for _, t := range tasks {
		if t.AssignedToID == nil || !w.Contains(t.ScheduledDate) {
			continue
		}
		id := t.AssignedToID.Hex()
		tasksByDriver[id] = append(tasksByDriver[id], t)
	}

	offByDriver := make(map[string]map[string]models.TimeOffStatus)
	for _, r := range timeOff {
		if !countsAsOff(r.Status, opts) {
			continue
		}
		id := r.UserID.Hex()
		if offByDriver[id] == nil {
			offByDriver[id] = make(map[string]models.TimeOffStatus)
		}
		for _, d := range r.Days() {
			if !w.Contains(d) {
				continue
			}
			key := d.String()
			// An approved record wins over a pending one on the same day.
			if prev, ok := offByDriver[id][key]; !ok || prev != models.TimeOffApproved {
				offByDriver[id][key] = r.Status
			}
		}
	}

	report := &ActivityReport{
		Dates:   dates,
		Drivers: []DriverActivity{},
		Totals:  ActivityTotals{ByDate: make(map[string]DateTotals, len(dates))},
	}
	for _, d := range dates {
		report.Totals.ByDate[d] = DateTotals{}
	}

	for _, driver := range drivers {
		id := driver.ID.Hex()
		driverTasks := tasksByDriver[id]
		if !driver.IsActive && len(driverTasks) == 0 {
			continue
		}

		daily := make(map[string]DayActivity, len(dates))
		for _, d := range dates {
			daily[d] = DayActivity{Activity: Idle}
		}
		for _, t := range driverTasks {
			key := t.ScheduledDate.String()
			day := daily[key]
			day.Activity = Worked
			day.TaskCount++
			if t.Status == models.TaskCompleted {
				day.CompletedCount++
				day.Earnings = round2(day.Earnings + t.Price)
			}
			daily[key] = day
		}
		for key, status := range offByDriver[id] {
			day := daily[key]
			day.TimeOffStatus = string(status)
			if day.Activity != Worked {
				day.Activity = Off
			}
			daily[key] = day
		}

		var summary ActivitySummary
		for _, d := range dates {
			day := daily[d]
			totals := report.Totals.ByDate[d]
			switch day.Activity {
			case Worked:
				summary.DaysWorked++
				totals.Worked++
			case Off:
				summary.DaysOff++
				totals.Off++
			default:
				summary.DaysIdle++
				totals.Idle++
			}
			summary.TotalTasks += day.TaskCount
			summary.CompletedTasks += day.CompletedCount
			summary.TotalEarnings = round2(summary.TotalEarnings + day.Earnings)

			totals.TotalTasks += day.TaskCount
			totals.CompletedTasks += day.CompletedCount
			totals.Earnings = round2(totals.Earnings + day.Earnings)
			report.Totals.ByDate[d] = totals
		}

		report.Totals.DaysWorked += summary.DaysWorked
		report.Totals.DaysOff += summary.DaysOff
		report.Totals.TotalTasks += summary.TotalTasks
		report.Totals.CompletedTasks += summary.CompletedTasks
		report.Totals.TotalEarnings = round2(report.Totals.TotalEarnings + summary.TotalEarnings)

		report.Drivers = append(report.Drivers, DriverActivity{
			Driver:        RefOf(driver),
			DailyActivity: daily,
			Summary:       summary,
		})
	}

	return report
}

func countsAsOff(status models.TimeOffStatus, opts ActivityOptions) bool {
	switch status {
	case models.TimeOffApproved:
		return true
	case models.TimeOffPending:
		return opts.IncludePendingTimeOff
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
