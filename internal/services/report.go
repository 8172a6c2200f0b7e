package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/reports"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// ReportService assembles read-only aggregates. Every call recomputes from
// the current tasks and time-off; nothing is persisted.
type ReportService struct {
	core
	tasks      TaskStore
	users      UserStore
	timeOff    TimeOffStore
	deductions DeductionStore
}

func NewReportService(tasks TaskStore, users UserStore, timeOff TimeOffStore, deductions DeductionStore, companies CompanyStore, opts Options) *ReportService {
	return &ReportService{
		core:       newCore(companies, opts),
		tasks:      tasks,
		users:      users,
		timeOff:    timeOff,
		deductions: deductions,
	}
}

// ReportQuery selects the window either as an explicit StartDate..EndDate,
// or as the week containing WeekStart using WeekStartDay (sunday|monday).
// With neither, the current week is used.
type ReportQuery struct {
	StartDate      string
	EndDate        string
	WeekStart      string
	WeekStartDay   string
	IncludePending bool
	DriverID       string
}

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type reportData struct {
	window  calendar.Window
	drivers []*models.User
	tasks   []*models.Task
	timeOff []*models.TimeOffRequest
}

func (s *ReportService) DriverActivity(ctx context.Context, actor models.Actor, q ReportQuery) (*reports.ActivityReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	defer s.metrics.ObserveReport("activity", time.Now())

	data, err := s.load(ctx, actor, q, true)
	if err != nil {
		return nil, err
	}
	return reports.BuildActivity(data.window, data.drivers, data.tasks, data.timeOff,
		reports.ActivityOptions{IncludePendingTimeOff: q.IncludePending}), nil
}

// Weekly returns the earnings report. Drivers get a report holding only themselves.
func (s *ReportService) Weekly(ctx context.Context, actor models.Actor, q ReportQuery) (*reports.WeeklyReport, error) {
	defer s.metrics.ObserveReport("weekly", time.Now())

	data, err := s.load(ctx, actor, q, false)
	if err != nil {
		return nil, err
	}
	return reports.BuildWeekly(data.window, data.drivers, data.tasks), nil
}

func (s *ReportService) ExportCSV(ctx context.Context, actor models.Actor, q ReportQuery) (*Export, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	defer s.metrics.ObserveReport("csv", time.Now())

	data, err := s.load(ctx, actor, q, false)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := reports.WriteCSV(&buf, reports.TaskRows(data.tasks, data.drivers)); err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return &Export{
		Filename:    reports.CSVFilename(data.window.Start.String()),
		ContentType: ContentTypeCSV,
		Body:        buf.Bytes(),
	}, nil
}

func (s *ReportService) ExportXLSX(ctx context.Context, actor models.Actor, q ReportQuery) (*Export, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	defer s.metrics.ObserveReport("xlsx", time.Now())

	data, err := s.load(ctx, actor, q, false)
	if err != nil {
		return nil, err
	}
	weekly := reports.BuildWeekly(data.window, data.drivers, data.tasks)
	buf, err := reports.GenerateXLSX(reports.TaskRows(data.tasks, data.drivers), weekly)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename:    reports.XLSXFilename(data.window.Start.String()),
		ContentType: ContentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}

// ExportPDF renders one invoice page per driver, or a single invoice when
// DriverID is set. Drivers can only export their own invoice.
func (s *ReportService) ExportPDF(ctx context.Context, actor models.Actor, q ReportQuery) (*Export, error) {
	defer s.metrics.ObserveReport("pdf", time.Now())

	if actor.IsDriver() {
		q.DriverID = actor.UserID.Hex()
	}
	data, err := s.load(ctx, actor, q, false)
	if err != nil {
		return nil, err
	}

	weekly := reports.BuildWeekly(data.window, data.drivers, data.tasks)
	rows := reports.TaskRows(data.tasks, data.drivers)
	deductions, err := s.deductionSummaries(ctx, actor, data.window)
	if err != nil {
		return nil, err
	}

	doc := reports.PDFDocument{
		WeekStart:   weekly.WeekStart,
		WeekEnd:     weekly.WeekEnd,
		GeneratedAt: s.now(),
	}
	if s.companies != nil {
		if company, err := s.companies.FindByID(ctx, actor.CompanyID); err == nil {
			doc.CompanyName = company.Name
			doc.Currency = company.Currency
		}
	}

	for _, d := range weekly.Drivers {
		inv := reports.Invoice{Driver: d, Deductions: deductions[d.Driver.ID]}
		for _, r := range rows {
			if r.DriverID == d.Driver.ID {
				inv.Tasks = append(inv.Tasks, r)
			}
		}
		doc.Invoices = append(doc.Invoices, inv)
	}

	var buf bytes.Buffer
	if err := reports.WritePDF(&buf, doc); err != nil {
		return nil, err
	}

	filename := reports.WeeklyPDFFilename(weekly.WeekStart)
	if q.DriverID != "" {
		personalID := ""
		if len(weekly.Drivers) > 0 {
			personalID = weekly.Drivers[0].Driver.PersonalID
		}
		filename = reports.InvoiceFilename(personalID, weekly.WeekStart)
	}
	return &Export{Filename: filename, ContentType: ContentTypePDF, Body: buf.Bytes()}, nil
}

func (s *ReportService) deductionSummaries(ctx context.Context, actor models.Actor, w calendar.Window) (map[string]*reports.DeductionSummary, error) {
	if s.deductions == nil {
		return map[string]*reports.DeductionSummary{}, nil
	}
	list, err := s.deductions.List(ctx, models.DeductionFilter{
		CompanyID: actor.CompanyID,
		Statuses:  []models.DeductionStatus{models.DeductionActive},
	})
	if err != nil {
		return nil, err
	}
	return reports.SummarizeDeductions(w, list), nil
}

// load resolves the window and reads the roster and tasks it covers. Drivers
// are narrowed to themselves; admins may narrow with DriverID.
func (s *ReportService) load(ctx context.Context, actor models.Actor, q ReportQuery, withTimeOff bool) (*reportData, error) {
	defaultStart := s.policy.AdminWeekStart
	if actor.IsDriver() {
		defaultStart = s.policy.DriverWeekStart
		q.DriverID = actor.UserID.Hex()
	}
	loc := s.location(ctx, actor.CompanyID)
	w, err := s.resolveWindow(q, defaultStart, loc)
	if err != nil {
		return nil, err
	}

	drivers, err := s.users.ListDrivers(ctx, actor.CompanyID, true)
	if err != nil {
		return nil, err
	}
	taskFilter := models.TaskFilter{CompanyID: actor.CompanyID, StartDate: w.Start, EndDate: w.End}

	if q.DriverID != "" {
		driverID, err := parseRefID("driverId", q.DriverID)
		if err != nil {
			return nil, err
		}
		drivers = onlyDriver(drivers, driverID)
		if len(drivers) == 0 {
			return nil, fmt.Errorf("%w: driver %s", models.ErrNotFound, q.DriverID)
		}
		taskFilter.AssignedToID = &driverID
	}

	tasks, err := s.tasks.List(ctx, taskFilter)
	if err != nil {
		return nil, err
	}

	data := &reportData{window: w, drivers: drivers, tasks: tasks}
	if withTimeOff {
		filter := models.TimeOffFilter{
			CompanyID: actor.CompanyID,
			Statuses:  []models.TimeOffStatus{models.TimeOffApproved, models.TimeOffPending},
			From:      w.Start,
			To:        w.End,
		}
		if taskFilter.AssignedToID != nil {
			filter.UserID = taskFilter.AssignedToID
		}
		if data.timeOff, err = s.timeOff.List(ctx, filter); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (s *ReportService) resolveWindow(q ReportQuery, defaultStart calendar.WeekStart, loc *time.Location) (calendar.Window, error) {
	ws := defaultStart
	if q.WeekStartDay != "" {
		parsed, err := calendar.ParseWeekStart(q.WeekStartDay)
		if err != nil {
			return calendar.Window{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		ws = parsed
	}

	switch {
	case q.StartDate != "" && q.EndDate != "":
		w, err := parseWindow(q.StartDate, q.EndDate)
		if err != nil {
			return calendar.Window{}, err
		}
		if limit := s.policy.ReportMaxDays; limit > 0 && w.Len() > limit {
			return calendar.Window{}, fmt.Errorf("%w: report range spans %d days, at most %d allowed", models.ErrValidation, w.Len(), limit)
		}
		return w, nil
	case q.StartDate != "":
		start, err := parseDate("startDate", q.StartDate)
		if err != nil {
			return calendar.Window{}, err
		}
		return calendar.Window{Start: start, End: start.AddDays(6)}, nil
	case q.EndDate != "":
		return calendar.Window{}, fmt.Errorf("%w: endDate requires startDate", models.ErrValidation)
	case q.WeekStart != "":
		d, err := parseDate("weekStart", q.WeekStart)
		if err != nil {
			return calendar.Window{}, err
		}
		return calendar.WeekOf(d, ws), nil
	}
	return calendar.WeekOf(calendar.Today(s.clock, loc), ws), nil
}

func onlyDriver(drivers []*models.User, id primitive.ObjectID) []*models.User {
	for _, d := range drivers {
		if d.ID == id {
			return []*models.User{d}
		}
	}
	return nil
}
