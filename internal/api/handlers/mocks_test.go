package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/reports"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
)

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) task(args mock.Arguments) (*models.Task, error) {
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *mockTaskService) Create(ctx context.Context, actor models.Actor, req *services.CreateTaskRequest) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, req))
}

func (m *mockTaskService) CreateRecurring(ctx context.Context, actor models.Actor, req *services.CreateRecurringRequest) (*services.RecurringResult, error) {
	args := m.Called(ctx, actor, req)
	r, _ := args.Get(0).(*services.RecurringResult)
	return r, args.Error(1)
}

func (m *mockTaskService) Get(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *mockTaskService) List(ctx context.Context, actor models.Actor, q services.TaskQuery) ([]*models.Task, error) {
	args := m.Called(ctx, actor, q)
	list, _ := args.Get(0).([]*models.Task)
	return list, args.Error(1)
}

func (m *mockTaskService) Today(ctx context.Context, actor models.Actor) ([]*models.Task, error) {
	args := m.Called(ctx, actor)
	list, _ := args.Get(0).([]*models.Task)
	return list, args.Error(1)
}

func (m *mockTaskService) Update(ctx context.Context, actor models.Actor, id string, req *services.UpdateTaskRequest) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, id, req))
}

func (m *mockTaskService) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockTaskService) Accept(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *mockTaskService) Reject(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *mockTaskService) Complete(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *mockTaskService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	return m.task(m.Called(ctx, actor, id))
}

type mockTimeOffService struct{ mock.Mock }

func (m *mockTimeOffService) record(args mock.Arguments) (*models.TimeOffRequest, error) {
	r, _ := args.Get(0).(*models.TimeOffRequest)
	return r, args.Error(1)
}

func (m *mockTimeOffService) Submit(ctx context.Context, actor models.Actor, req *services.SubmitTimeOffRequest) (*models.TimeOffRequest, error) {
	return m.record(m.Called(ctx, actor, req))
}

func (m *mockTimeOffService) Get(ctx context.Context, actor models.Actor, id string) (*models.TimeOffRequest, error) {
	return m.record(m.Called(ctx, actor, id))
}

func (m *mockTimeOffService) List(ctx context.Context, actor models.Actor, q services.TimeOffQuery) ([]*models.TimeOffRequest, error) {
	args := m.Called(ctx, actor, q)
	list, _ := args.Get(0).([]*models.TimeOffRequest)
	return list, args.Error(1)
}

func (m *mockTimeOffService) Update(ctx context.Context, actor models.Actor, id string, req *services.UpdateTimeOffRequest) (*models.TimeOffRequest, error) {
	return m.record(m.Called(ctx, actor, id, req))
}

func (m *mockTimeOffService) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockTimeOffService) Approve(ctx context.Context, actor models.Actor, id string, req *services.ReviewRequest) (*models.TimeOffRequest, error) {
	return m.record(m.Called(ctx, actor, id, req))
}

func (m *mockTimeOffService) Reject(ctx context.Context, actor models.Actor, id string, req *services.ReviewRequest) (*models.TimeOffRequest, error) {
	return m.record(m.Called(ctx, actor, id, req))
}

func (m *mockTimeOffService) DriverStats(ctx context.Context, actor models.Actor, year int) (*services.TimeOffStats, error) {
	args := m.Called(ctx, actor, year)
	s, _ := args.Get(0).(*services.TimeOffStats)
	return s, args.Error(1)
}

type mockVehicleService struct{ mock.Mock }

func (m *mockVehicleService) vehicle(args mock.Arguments) (*models.Vehicle, error) {
	v, _ := args.Get(0).(*models.Vehicle)
	return v, args.Error(1)
}

func (m *mockVehicleService) Create(ctx context.Context, actor models.Actor, req *services.CreateVehicleRequest) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, req))
}

func (m *mockVehicleService) Get(ctx context.Context, actor models.Actor, id string) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, id))
}

func (m *mockVehicleService) List(ctx context.Context, actor models.Actor, q services.VehicleQuery) ([]*models.Vehicle, error) {
	args := m.Called(ctx, actor, q)
	list, _ := args.Get(0).([]*models.Vehicle)
	return list, args.Error(1)
}

func (m *mockVehicleService) Update(ctx context.Context, actor models.Actor, id string, req *services.UpdateVehicleRequest) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, id, req))
}

func (m *mockVehicleService) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockVehicleService) UpdateMileage(ctx context.Context, actor models.Actor, id string, req *services.MileageRequest) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, id, req))
}

func (m *mockVehicleService) SetStatus(ctx context.Context, actor models.Actor, id string, req *services.StatusRequest) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, id, req))
}

func (m *mockVehicleService) Assign(ctx context.Context, actor models.Actor, id string, req *services.AssignRequest) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, id, req))
}

func (m *mockVehicleService) Unassign(ctx context.Context, actor models.Actor, id string) (*models.Vehicle, error) {
	return m.vehicle(m.Called(ctx, actor, id))
}

type mockDeductionService struct{ mock.Mock }

func (m *mockDeductionService) deduction(args mock.Arguments) (*models.Deduction, error) {
	d, _ := args.Get(0).(*models.Deduction)
	return d, args.Error(1)
}

func (m *mockDeductionService) Create(ctx context.Context, actor models.Actor, req *services.DeductionRequest) (*models.Deduction, error) {
	return m.deduction(m.Called(ctx, actor, req))
}

func (m *mockDeductionService) Update(ctx context.Context, actor models.Actor, id string, req *services.DeductionRequest) (*models.Deduction, error) {
	return m.deduction(m.Called(ctx, actor, id, req))
}

func (m *mockDeductionService) Get(ctx context.Context, actor models.Actor, id string) (*models.Deduction, error) {
	return m.deduction(m.Called(ctx, actor, id))
}

func (m *mockDeductionService) List(ctx context.Context, actor models.Actor, userID string) ([]*models.Deduction, error) {
	args := m.Called(ctx, actor, userID)
	list, _ := args.Get(0).([]*models.Deduction)
	return list, args.Error(1)
}

func (m *mockDeductionService) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockDeductionService) Summary(ctx context.Context, actor models.Actor, startDate, endDate string) (*services.DeductionSummaryReport, error) {
	args := m.Called(ctx, actor, startDate, endDate)
	s, _ := args.Get(0).(*services.DeductionSummaryReport)
	return s, args.Error(1)
}

type mockReportService struct{ mock.Mock }

func (m *mockReportService) DriverActivity(ctx context.Context, actor models.Actor, q services.ReportQuery) (*reports.ActivityReport, error) {
	args := m.Called(ctx, actor, q)
	r, _ := args.Get(0).(*reports.ActivityReport)
	return r, args.Error(1)
}

func (m *mockReportService) Weekly(ctx context.Context, actor models.Actor, q services.ReportQuery) (*reports.WeeklyReport, error) {
	args := m.Called(ctx, actor, q)
	r, _ := args.Get(0).(*reports.WeeklyReport)
	return r, args.Error(1)
}

func (m *mockReportService) export(args mock.Arguments) (*services.Export, error) {
	e, _ := args.Get(0).(*services.Export)
	return e, args.Error(1)
}

func (m *mockReportService) ExportCSV(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error) {
	return m.export(m.Called(ctx, actor, q))
}

func (m *mockReportService) ExportXLSX(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error) {
	return m.export(m.Called(ctx, actor, q))
}

func (m *mockReportService) ExportPDF(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error) {
	return m.export(m.Called(ctx, actor, q))
}

var (
	_ TaskService      = (*mockTaskService)(nil)
	_ TimeOffService   = (*mockTimeOffService)(nil)
	_ VehicleService   = (*mockVehicleService)(nil)
	_ DeductionService = (*mockDeductionService)(nil)
	_ ReportService    = (*mockReportService)(nil)
)
