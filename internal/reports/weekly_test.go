package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
)

func TestBuildWeekly(t *testing.T) {
	alice := driver("Alice", "D-1", 4.9)
	bob := driver("Bob", "D-2", 4.5)

	tasks := []*models.Task{
		task(alice, "2025-01-06", models.TaskCompleted, 40),
		task(alice, "2025-01-06", models.TaskCompleted, 10.5),
		task(alice, "2025-01-08", models.TaskCompleted, 25),
		task(alice, "2025-01-09", models.TaskAccepted, 100),
		task(bob, "2025-01-07", models.TaskPending, 60),
		task(alice, "2025-01-13", models.TaskCompleted, 500),
	}

	report := BuildWeekly(week(), []*models.User{alice, bob}, tasks)
	assert.Equal(t, "2025-01-06", report.WeekStart)
	assert.Equal(t, "2025-01-12", report.WeekEnd)

	a, ok := report.Driver(alice.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, 3, a.WeeklyStats.CompletedTasks)
	assert.Equal(t, 1, a.WeeklyStats.AcceptedTasks)
	assert.Equal(t, 75.5, a.WeeklyStats.Earnings)
	assert.Equal(t, 3, a.WeeklyStats.DaysWorked)
	assert.Equal(t, 25.17, a.WeeklyStats.AveragePerDay)
	assert.Equal(t, 4.9, a.WeeklyStats.Rating)
	require.Len(t, a.WeeklyStats.Daily, 7)
	assert.Equal(t, DailyEarning{Date: "2025-01-06", CompletedTasks: 2, Earnings: 50.5}, a.WeeklyStats.Daily[0])

	b, ok := report.Driver(bob.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, 1, b.WeeklyStats.PendingTasks)
	assert.Equal(t, 0.0, b.WeeklyStats.Earnings)
	assert.Equal(t, 0.0, b.WeeklyStats.AveragePerDay)

	assert.Equal(t, 75.5, report.Totals.Earnings)
	assert.Equal(t, 3, report.Totals.CompletedTasks)
	assert.Equal(t, 1, report.Totals.AcceptedTasks)
	assert.Equal(t, 1, report.Totals.PendingTasks)
	assert.Equal(t, 4, report.Totals.DaysWorked)
	assert.Equal(t, 18.88, report.Totals.AveragePerDay)
	assert.Equal(t, 4.7, report.Totals.AverageRating)
}

func TestBuildWeekly_TotalsIncludeTasksOutsideRoster(t *testing.T) {
	alice := driver("Alice", "D-1", 5)
	former := driver("Former", "D-0", 4)

	tasks := []*models.Task{
		task(alice, "2025-01-06", models.TaskCompleted, 20),
		task(former, "2025-01-07", models.TaskCompleted, 35.25),
		task(former, "2025-01-08", models.TaskAccepted, 10),
	}

	report := BuildWeekly(week(), []*models.User{alice}, tasks)

	require.Len(t, report.Drivers, 1)
	assert.Equal(t, 20.0, report.Drivers[0].WeeklyStats.Earnings)
	assert.Equal(t, 1, report.Unattributed.CompletedTasks)
	assert.Equal(t, 1, report.Unattributed.AcceptedTasks)
	assert.Equal(t, 35.25, report.Unattributed.Earnings)

	assert.Equal(t, 55.25, report.Totals.Earnings)
	assert.Equal(t, 2, report.Totals.CompletedTasks)
	assert.Equal(t, 3, report.Totals.TotalTasks)
	assert.Equal(t, 1, report.Totals.DaysWorked)
	assert.Equal(t, 5.0, report.Totals.AverageRating)
}

func TestBuildWeekly_NoWorkNeverDividesByZero(t *testing.T) {
	idle := driver("Idle", "D-9", 5)
	report := BuildWeekly(week(), []*models.User{idle}, nil)

	require.Len(t, report.Drivers, 1)
	assert.Equal(t, 0, report.Drivers[0].WeeklyStats.DaysWorked)
	assert.Equal(t, 0.0, report.Drivers[0].WeeklyStats.AveragePerDay)
	assert.Equal(t, 0.0, report.Totals.AveragePerDay)
}

func TestBuildWeekly_SundayAndMondayWindowsDiffer(t *testing.T) {
	alice := driver("Alice", "D-1", 5)
	sunday := task(alice, "2025-01-12", models.TaskCompleted, 30)

	mondayWeek := calendar.WeekOf(day("2025-01-08"), calendar.WeekStartsMonday)
	sundayWeek := calendar.WeekOf(day("2025-01-08"), calendar.WeekStartsSunday)

	assert.Equal(t, 30.0, BuildWeekly(mondayWeek, []*models.User{alice}, []*models.Task{sunday}).Totals.Earnings)
	assert.Equal(t, 0.0, BuildWeekly(sundayWeek, []*models.User{alice}, []*models.Task{sunday}).Totals.Earnings)
}

func TestSummarizeDeductions(t *testing.T) {
	alice := driver("Alice", "D-1", 5)
	end := day("2025-01-01")
	deductions := []*models.Deduction{
		{UserID: alice.ID, Amount: 150, Frequency: models.FrequencyWeekly, Status: models.DeductionActive, StartDate: day("2024-12-01")},
		{UserID: alice.ID, Amount: 20, Frequency: models.FrequencyWeekly, Status: models.DeductionInactive, StartDate: day("2024-12-01")},
		{UserID: alice.ID, Amount: 80, Frequency: models.FrequencyMonthly, Status: models.DeductionActive, StartDate: day("2024-12-01")},
		{UserID: alice.ID, Amount: 35, Frequency: models.FrequencyOneTime, Status: models.DeductionActive, StartDate: day("2025-01-09")},
		{UserID: alice.ID, Amount: 12, Frequency: models.FrequencyOneTime, Status: models.DeductionActive, StartDate: day("2024-12-20")},
		{UserID: alice.ID, Amount: 99, Frequency: models.FrequencyWeekly, Status: models.DeductionActive, StartDate: day("2024-11-01"), EndDate: &end},
	}

	summary := SummarizeDeductions(week(), deductions)[alice.ID.Hex()]
	require.NotNil(t, summary)
	assert.Equal(t, 150.0, summary.WeeklyTotal)
	assert.Equal(t, 80.0, summary.MonthlyTotal)
	assert.Equal(t, 35.0, summary.OneTimeTotal)
	assert.Equal(t, 3, summary.Count)
}
