package services

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
)

func TestDeductionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to active", func(t *testing.T) {
		f := newFixture()
		deductions := new(MockDeductionStore)
		users := new(MockUserStore)
		svc := NewDeductionService(deductions, users, nil, f.opts)

		users.On("FindByID", ctx, f.company, f.driver.UserID).Return(f.user(f.driver, "Alice", 5), nil)
		deductions.On("Create", ctx, mock.MatchedBy(func(d *models.Deduction) bool {
			return d.Status == models.DeductionActive && d.EndDate == nil && d.Amount == 150
		})).Return(func(_ context.Context, d *models.Deduction) *models.Deduction { return d }, nil)

		got, err := svc.Create(ctx, f.admin, &DeductionRequest{
			UserID:    f.driver.UserID.Hex(),
			Type:      "VAN_RENTAL",
			Amount:    150,
			Frequency: "WEEKLY",
			StartDate: "2025-01-01",
		})

		require.NoError(t, err)
		assert.Equal(t, models.FrequencyWeekly, got.Frequency)
	})

	t.Run("rejects non-positive amounts and inverted dates", func(t *testing.T) {
		f := newFixture()
		users := new(MockUserStore)
		users.On("FindByID", ctx, f.company, f.driver.UserID).Return(f.user(f.driver, "Alice", 5), nil)
		svc := NewDeductionService(new(MockDeductionStore), users, nil, f.opts)
		base := DeductionRequest{UserID: f.driver.UserID.Hex(), Type: "FUEL", Amount: 10, Frequency: "ONE_TIME", StartDate: "2025-01-10"}

		zero := base
		zero.Amount = 0
		_, err := svc.Create(ctx, f.admin, &zero)
		assert.ErrorIs(t, err, models.ErrValidation)

		inverted := base
		inverted.EndDate = "2025-01-01"
		_, err = svc.Create(ctx, f.admin, &inverted)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestDeductionService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	deductions := new(MockDeductionStore)
	svc := NewDeductionService(deductions, new(MockUserStore), nil, f.opts)

	deductions.On("List", ctx, mock.MatchedBy(func(filter models.DeductionFilter) bool {
		return filter.UserID != nil && *filter.UserID == f.driver.UserID
	})).Return([]*models.Deduction{
		{UserID: f.driver.UserID, Amount: 150, Frequency: models.FrequencyWeekly, Status: models.DeductionActive, StartDate: civil.Date{Year: 2024, Month: 6, Day: 1}},
		{UserID: f.driver.UserID, Amount: 40, Frequency: models.FrequencyOneTime, Status: models.DeductionActive, StartDate: jan(20)},
	}, nil)

	report, err := svc.Summary(ctx, f.driver, "2025-01-06", "2025-01-12")

	require.NoError(t, err)
	require.Len(t, report.Drivers, 1)
	assert.Equal(t, 150.0, report.Drivers[0].WeeklyTotal)
	assert.Zero(t, report.Drivers[0].OneTimeTotal)
	assert.Equal(t, 1, report.Drivers[0].Count)
}
