package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/repository"
	"github.com/susp3kt93/myfleet-sub000/pkg/batch"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockTaskStore struct{ mock.Mock }

func (m *MockTaskStore) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	args := m.Called(ctx, task)
	if fn, ok := args.Get(0).(func(context.Context, *models.Task) *models.Task); ok {
		return fn(ctx, task), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskStore) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Task, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskStore) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskStore) Transition(ctx context.Context, p repository.TransitionParams) (*models.Task, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskStore) UpdateFields(ctx context.Context, companyID, id primitive.ObjectID, allowed []models.TaskStatus, set bson.M, unset []string) (*models.Task, error) {
	args := m.Called(ctx, companyID, id, allowed, set, unset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, companyID, id primitive.ObjectID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) FindByID(ctx context.Context, companyID, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) ListDrivers(ctx context.Context, companyID primitive.ObjectID, includeInactive bool) ([]*models.User, error) {
	args := m.Called(ctx, companyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserStore) ApplyRatingPenalty(ctx context.Context, companyID, id primitive.ObjectID, penalty float64, bounds models.RatingBounds) (*models.User, error) {
	args := m.Called(ctx, companyID, id, penalty, bounds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// fakeCompanies serves a fixed company per id.
type fakeCompanies map[primitive.ObjectID]*models.Company

func (f fakeCompanies) FindByID(_ context.Context, id primitive.ObjectID) (*models.Company, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, models.ErrNotFound
}

type MockTimeOffStore struct{ mock.Mock }

func (m *MockTimeOffStore) Create(ctx context.Context, req *models.TimeOffRequest) (*models.TimeOffRequest, error) {
	args := m.Called(ctx, req)
	if fn, ok := args.Get(0).(func(context.Context, *models.TimeOffRequest) *models.TimeOffRequest); ok {
		return fn(ctx, req), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeOffRequest), args.Error(1)
}

func (m *MockTimeOffStore) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.TimeOffRequest, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeOffRequest), args.Error(1)
}

func (m *MockTimeOffStore) List(ctx context.Context, filter models.TimeOffFilter) ([]*models.TimeOffRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TimeOffRequest), args.Error(1)
}

func (m *MockTimeOffStore) Review(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M) (*models.TimeOffRequest, error) {
	args := m.Called(ctx, companyID, id, from, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeOffRequest), args.Error(1)
}

func (m *MockTimeOffStore) Update(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus, set bson.M, unset []string) (*models.TimeOffRequest, error) {
	args := m.Called(ctx, companyID, id, from, set, unset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeOffRequest), args.Error(1)
}

func (m *MockTimeOffStore) Delete(ctx context.Context, companyID, id primitive.ObjectID, from []models.TimeOffStatus) error {
	return m.Called(ctx, companyID, id, from).Error(0)
}

type MockVehicleStore struct{ mock.Mock }

func (m *MockVehicleStore) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	args := m.Called(ctx, vehicle)
	if fn, ok := args.Get(0).(func(context.Context, *models.Vehicle) *models.Vehicle); ok {
		return fn(ctx, vehicle), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) FindByPlate(ctx context.Context, companyID primitive.ObjectID, plate string) (*models.Vehicle, error) {
	args := m.Called(ctx, companyID, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) List(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) UpdateMileage(ctx context.Context, companyID, id primitive.ObjectID, mileage int, set bson.M) (*models.Vehicle, error) {
	args := m.Called(ctx, companyID, id, mileage, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) Update(ctx context.Context, companyID, id primitive.ObjectID, expect bson.M, set bson.M, unset []string) (*models.Vehicle, error) {
	args := m.Called(ctx, companyID, id, expect, set, unset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) Delete(ctx context.Context, companyID, id primitive.ObjectID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

type MockDeductionStore struct{ mock.Mock }

func (m *MockDeductionStore) Create(ctx context.Context, d *models.Deduction) (*models.Deduction, error) {
	args := m.Called(ctx, d)
	if fn, ok := args.Get(0).(func(context.Context, *models.Deduction) *models.Deduction); ok {
		return fn(ctx, d), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deduction), args.Error(1)
}

func (m *MockDeductionStore) FindByID(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Deduction, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deduction), args.Error(1)
}

func (m *MockDeductionStore) List(ctx context.Context, filter models.DeductionFilter) ([]*models.Deduction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deduction), args.Error(1)
}

func (m *MockDeductionStore) Replace(ctx context.Context, d *models.Deduction) (*models.Deduction, error) {
	args := m.Called(ctx, d)
	if fn, ok := args.Get(0).(func(context.Context, *models.Deduction) *models.Deduction); ok {
		return fn(ctx, d), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deduction), args.Error(1)
}

func (m *MockDeductionStore) Delete(ctx context.Context, companyID, id primitive.ObjectID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// fixture holds the ids and options shared by service tests. The clock is
// 2025-01-08 10:00 UTC, a Wednesday.
type fixture struct {
	company primitive.ObjectID
	admin   models.Actor
	driver  models.Actor
	other   models.Actor
	events  *recorder
	opts    Options
}

func newFixture() *fixture {
	company := primitive.NewObjectID()
	rec := &recorder{}
	policy := DefaultPolicy()
	return &fixture{
		company: company,
		admin:   models.Actor{UserID: primitive.NewObjectID(), CompanyID: company, Role: models.RoleAdmin},
		driver:  models.Actor{UserID: primitive.NewObjectID(), CompanyID: company, Role: models.RoleDriver},
		other:   models.Actor{UserID: primitive.NewObjectID(), CompanyID: company, Role: models.RoleDriver},
		events:  rec,
		opts: Options{
			Clock:  calendar.FixedClock{At: time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)},
			Events: rec,
			Policy: &policy,
			Batch:  &batch.Config{ChunkSize: 50, RetryAttempts: 1, RetryBackoff: time.Millisecond},
		},
	}
}

func (f *fixture) user(a models.Actor, name string, rating float64) *models.User {
	return &models.User{
		ID:         a.UserID,
		CompanyID:  f.company,
		Name:       name,
		PersonalID: "P-" + name,
		Role:       a.Role,
		Rating:     rating,
		IsActive:   true,
	}
}
