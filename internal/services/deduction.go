package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/reports"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeductionService manages informational deductions. Amounts are reported
// beside earnings and never subtracted from them.
type DeductionService struct {
	core
	deductions DeductionStore
	users      UserStore
}

func NewDeductionService(deductions DeductionStore, users UserStore, companies CompanyStore, opts Options) *DeductionService {
	return &DeductionService{
		core:       newCore(companies, opts),
		deductions: deductions,
		users:      users,
	}
}

type DeductionRequest struct {
	UserID      string  `json:"userId" validate:"required,mongodb"`
	Type        string  `json:"type" validate:"required,oneof=VAN_RENTAL PENALTY INSURANCE FUEL EQUIPMENT OTHER"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Frequency   string  `json:"frequency" validate:"required,oneof=WEEKLY MONTHLY ONE_TIME"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	StartDate   string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type DeductionSummaryReport struct {
	StartDate string                      `json:"startDate"`
	EndDate   string                      `json:"endDate"`
	Drivers   []*reports.DeductionSummary `json:"drivers"`
}

func (s *DeductionService) Create(ctx context.Context, actor models.Actor, req *DeductionRequest) (*models.Deduction, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	d := &models.Deduction{ID: primitive.NewObjectID(), CompanyID: actor.CompanyID, CreatedAt: s.now()}
	if err := s.apply(ctx, actor, d, req); err != nil {
		return nil, err
	}
	return s.deductions.Create(ctx, d)
}

func (s *DeductionService) Update(ctx context.Context, actor models.Actor, id string, req *DeductionRequest) (*models.Deduction, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	d, err := s.deductions.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, actor, d, req); err != nil {
		return nil, err
	}
	return s.deductions.Replace(ctx, d)
}

func (s *DeductionService) apply(ctx context.Context, actor models.Actor, d *models.Deduction, req *DeductionRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	userID, err := parseRefID("userId", req.UserID)
	if err != nil {
		return err
	}
	driver, err := s.users.FindByID(ctx, actor.CompanyID, userID)
	if err != nil {
		return err
	}
	if !driver.IsDriver() {
		return fmt.Errorf("%w: user %s is not a driver", models.ErrValidation, req.UserID)
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return err
	}
	var end *civil.Date
	if req.EndDate != "" {
		e, err := parseDate("endDate", req.EndDate)
		if err != nil {
			return err
		}
		if e.Before(start) {
			return fmt.Errorf("%w: endDate is before startDate", models.ErrValidation)
		}
		end = &e
	}

	status := models.DeductionStatus(req.Status)
	if status == "" {
		status = models.DeductionActive
	}

	d.UserID = userID
	d.Type = models.DeductionType(req.Type)
	d.Description = strings.TrimSpace(req.Description)
	d.Amount = req.Amount
	d.Frequency = models.DeductionFrequency(req.Frequency)
	d.Status = status
	d.StartDate = start
	d.EndDate = end
	d.UpdatedAt = s.now()
	return nil
}

func (s *DeductionService) Get(ctx context.Context, actor models.Actor, id string) (*models.Deduction, error) {
	d, err := s.deductions.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && d.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: deduction %s belongs to another driver", models.ErrPermissionDenied, id)
	}
	return d, nil
}

// List returns deductions, optionally for one driver. Drivers only see their own.
func (s *DeductionService) List(ctx context.Context, actor models.Actor, userID string) ([]*models.Deduction, error) {
	filter := models.DeductionFilter{CompanyID: actor.CompanyID}
	switch {
	case !actor.IsAdmin():
		self := actor.UserID
		filter.UserID = &self
	case userID != "":
		oid, err := parseRefID("userId", userID)
		if err != nil {
			return nil, err
		}
		filter.UserID = &oid
	}
	return s.deductions.List(ctx, filter)
}

func (s *DeductionService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	oid, err := parsePathID("deduction", id)
	if err != nil {
		return err
	}
	return s.deductions.Delete(ctx, actor.CompanyID, oid)
}

// Summary totals ACTIVE deductions in effect during [startDate, endDate]
// per driver.
func (s *DeductionService) Summary(ctx context.Context, actor models.Actor, startDate, endDate string) (*DeductionSummaryReport, error) {
	w, err := parseWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}
	list, err := s.List(ctx, actor, "")
	if err != nil {
		return nil, err
	}

	report := &DeductionSummaryReport{StartDate: w.Start.String(), EndDate: w.End.String(), Drivers: []*reports.DeductionSummary{}}
	summaries := reports.SummarizeDeductions(w, list)
	for _, d := range list {
		if sum, ok := summaries[d.UserID.Hex()]; ok {
			report.Drivers = append(report.Drivers, sum)
			delete(summaries, d.UserID.Hex())
		}
	}
	return report, nil
}
