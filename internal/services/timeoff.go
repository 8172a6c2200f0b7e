package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/repository"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimeOffService struct {
	core
	requests TimeOffStore
	users    UserStore
}

func NewTimeOffService(requests TimeOffStore, users UserStore, companies CompanyStore, opts Options) *TimeOffService {
	return &TimeOffService{
		core:     newCore(companies, opts),
		requests: requests,
		users:    users,
	}
}

// SubmitTimeOffRequest asks for RequestDate alone, or RequestDate..EndDate.
type SubmitTimeOffRequest struct {
	RequestDate string `json:"requestDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reason      string `json:"reason,omitempty" validate:"max=500"`
}

// UpdateTimeOffRequest edits dates and reason. Admins may also set Status
// and AdminNotes directly.
type UpdateTimeOffRequest struct {
	RequestDate *string `json:"requestDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	AdminNotes  *string `json:"adminNotes,omitempty" validate:"omitempty,max=1000"`
}

type ReviewRequest struct {
	AdminNotes string `json:"adminNotes" validate:"max=1000"`
}

type TimeOffQuery struct {
	UserID   string
	Statuses []string
	Year     int
}

type DriverTimeOffStats struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	PersonalID   string `json:"personalId"`
	ApprovedDays int    `json:"approvedDays"`
	PendingDays  int    `json:"pendingDays"`
}

type TimeOffStats struct {
	Year    int                  `json:"year"`
	Drivers []DriverTimeOffStats `json:"drivers"`
}

func (s *TimeOffService) Submit(ctx context.Context, actor models.Actor, req *SubmitTimeOffRequest) (*models.TimeOffRequest, error) {
	if err := requireDriver(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	end := req.EndDate
	if end == "" {
		end = req.RequestDate
	}
	w, err := parseWindow(req.RequestDate, end)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &models.TimeOffRequest{
		ID:          primitive.NewObjectID(),
		CompanyID:   actor.CompanyID,
		UserID:      actor.UserID,
		RequestDate: w.Start,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      models.TimeOffPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if w.End != w.Start {
		last := w.End
		record.EndDate = &last
	}

	created, err := s.requests.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor, events.TimeOffSubmitted, timeOffPayload(created))
	return created, nil
}

func (s *TimeOffService) Get(ctx context.Context, actor models.Actor, id string) (*models.TimeOffRequest, error) {
	req, err := s.requests.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && req.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: time-off request %s belongs to another driver", models.ErrPermissionDenied, id)
	}
	return req, nil
}

// List returns requests touching the given year, if any. Drivers only see their own.
func (s *TimeOffService) List(ctx context.Context, actor models.Actor, q TimeOffQuery) ([]*models.TimeOffRequest, error) {
	filter := models.TimeOffFilter{CompanyID: actor.CompanyID}
	for _, raw := range q.Statuses {
		status := models.TimeOffStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown time-off status %q", models.ErrValidation, raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if q.Year != 0 {
		year := calendar.Year(q.Year)
		filter.From, filter.To = year.Start, year.End
	}

	switch {
	case !actor.IsAdmin():
		self := actor.UserID
		filter.UserID = &self
	case q.UserID != "":
		oid, err := parseRefID("userId", q.UserID)
		if err != nil {
			return nil, err
		}
		filter.UserID = &oid
	}
	return s.requests.List(ctx, filter)
}

// Update edits a request. Admins may edit any request at any status; drivers
// only their own while it is PENDING.
func (s *TimeOffService) Update(ctx context.Context, actor models.Actor, id string, req *UpdateTimeOffRequest) (*models.TimeOffRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.requests.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	var from []models.TimeOffStatus
	if !actor.IsAdmin() {
		if current.UserID != actor.UserID {
			return nil, fmt.Errorf("%w: time-off request %s belongs to another driver", models.ErrPermissionDenied, id)
		}
		if req.Status != nil || req.AdminNotes != nil {
			return nil, fmt.Errorf("%w: only admins can set status or notes", models.ErrPermissionDenied)
		}
		if current.Status != models.TimeOffPending {
			return nil, fmt.Errorf("%w: time-off request %s is %s", models.ErrInvalidTransition, id, current.Status)
		}
		from = []models.TimeOffStatus{models.TimeOffPending}
	}

	start := current.RequestDate.String()
	end := current.LastDay().String()
	if req.RequestDate != nil {
		start = *req.RequestDate
		if req.EndDate == nil && current.EndDate == nil {
			end = start
		}
	}
	if req.EndDate != nil {
		end = *req.EndDate
		if end == "" {
			end = start
		}
	}
	w, err := parseWindow(start, end)
	if err != nil {
		return nil, err
	}

	set := bson.M{"request_date": w.Start, "updated_at": s.now()}
	var unset []string
	if w.End == w.Start {
		unset = append(unset, "end_date")
	} else {
		set["end_date"] = w.End
	}
	if req.Reason != nil {
		set["reason"] = strings.TrimSpace(*req.Reason)
	}
	if req.AdminNotes != nil {
		set["admin_notes"] = *req.AdminNotes
	}
	if req.Status != nil {
		set["status"] = *req.Status
		set["reviewed_by"] = actor.UserID
	}

	updated, err := s.requests.Update(ctx, actor.CompanyID, current.ID, from, set, unset)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: time-off request %s is no longer PENDING", models.ErrInvalidTransition, id)
		}
		return nil, err
	}
	s.publish(ctx, actor, events.TimeOffUpdated, timeOffPayload(updated))
	return updated, nil
}

// Delete removes a request. Drivers may only delete their own PENDING requests.
func (s *TimeOffService) Delete(ctx context.Context, actor models.Actor, id string) error {
	current, err := s.requests.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}

	var from []models.TimeOffStatus
	if !actor.IsAdmin() {
		if current.UserID != actor.UserID {
			return fmt.Errorf("%w: time-off request %s belongs to another driver", models.ErrPermissionDenied, id)
		}
		if current.Status != models.TimeOffPending {
			return fmt.Errorf("%w: time-off request %s is %s", models.ErrInvalidTransition, id, current.Status)
		}
		from = []models.TimeOffStatus{models.TimeOffPending}
	}

	if err := s.requests.Delete(ctx, actor.CompanyID, current.ID, from); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			if from == nil {
				return fmt.Errorf("%w: time-off request %s", models.ErrNotFound, id)
			}
			return fmt.Errorf("%w: time-off request %s is no longer PENDING", models.ErrInvalidTransition, id)
		}
		return err
	}
	s.publish(ctx, actor, events.TimeOffDeleted, timeOffPayload(current))
	return nil
}

// Approve sets APPROVED from PENDING. Re-approving with the same notes
// changes nothing.
func (s *TimeOffService) Approve(ctx context.Context, actor models.Actor, id string, req *ReviewRequest) (*models.TimeOffRequest, error) {
	return s.review(ctx, actor, id, req, models.TimeOffApproved, events.TimeOffApproved)
}

// Reject sets REJECTED from PENDING. Re-rejecting with the same notes
// changes nothing.
func (s *TimeOffService) Reject(ctx context.Context, actor models.Actor, id string, req *ReviewRequest) (*models.TimeOffRequest, error) {
	return s.review(ctx, actor, id, req, models.TimeOffRejected, events.TimeOffRejected)
}

func (s *TimeOffService) review(ctx context.Context, actor models.Actor, id string, req *ReviewRequest, to models.TimeOffStatus, eventType events.Type) (*models.TimeOffRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req == nil {
		req = &ReviewRequest{}
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.requests.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.TimeOffPending && current.Status != to {
		return nil, fmt.Errorf("%w: time-off request %s is already %s", models.ErrInvalidTransition, id, current.Status)
	}
	if current.Status == to && current.AdminNotes == req.AdminNotes {
		return current, nil
	}

	reviewer := actor.UserID
	updated, err := s.requests.Review(ctx, actor.CompanyID, current.ID,
		[]models.TimeOffStatus{models.TimeOffPending, to},
		bson.M{
			"status":      string(to),
			"admin_notes": req.AdminNotes,
			"reviewed_by": reviewer,
			"updated_at":  s.now(),
		})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: time-off request %s was reviewed concurrently", models.ErrInvalidTransition, id)
		}
		return nil, err
	}
	s.publish(ctx, actor, eventType, timeOffPayload(updated))
	return updated, nil
}

// DriverStats sums approved and pending days per driver for a calendar year,
// the current one when year is 0. Only days inside the year are counted.
func (s *TimeOffService) DriverStats(ctx context.Context, actor models.Actor, year int) (*TimeOffStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if year == 0 {
		year = s.today(ctx, actor.CompanyID).Year
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: year %d out of range", models.ErrValidation, year)
	}

	window := calendar.Year(year)
	drivers, err := s.users.ListDrivers(ctx, actor.CompanyID, true)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.List(ctx, models.TimeOffFilter{
		CompanyID: actor.CompanyID,
		Statuses:  []models.TimeOffStatus{models.TimeOffApproved, models.TimeOffPending},
		From:      window.Start,
		To:        window.End,
	})
	if err != nil {
		return nil, err
	}

	byUser := make(map[primitive.ObjectID]*DriverTimeOffStats, len(drivers))
	stats := &TimeOffStats{Year: year, Drivers: make([]DriverTimeOffStats, 0, len(drivers))}
	for _, d := range drivers {
		byUser[d.ID] = &DriverTimeOffStats{UserID: d.ID.Hex(), Name: d.Name, PersonalID: d.PersonalID}
	}

	for _, r := range requests {
		entry, ok := byUser[r.UserID]
		if !ok {
			continue
		}
		span, ok := window.Intersect(calendar.Window{Start: r.RequestDate, End: r.LastDay()})
		if !ok {
			continue
		}
		switch r.Status {
		case models.TimeOffApproved:
			entry.ApprovedDays += span.Len()
		case models.TimeOffPending:
			entry.PendingDays += span.Len()
		}
	}

	for _, d := range drivers {
		stats.Drivers = append(stats.Drivers, *byUser[d.ID])
	}
	sort.SliceStable(stats.Drivers, func(i, j int) bool {
		return stats.Drivers[i].Name < stats.Drivers[j].Name
	})
	return stats, nil
}

func timeOffPayload(r *models.TimeOffRequest) events.TimeOffPayload {
	p := events.TimeOffPayload{
		RequestID:   r.ID.Hex(),
		UserID:      r.UserID.Hex(),
		RequestDate: r.RequestDate.String(),
		Status:      string(r.Status),
		Days:        r.DayCount(),
		AdminNotes:  r.AdminNotes,
	}
	if r.EndDate != nil {
		p.EndDate = r.EndDate.String()
	}
	return p
}
