package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateRecurringRequest is a task template plus a date range and weekday
// selection such as {"monday": true, "wednesday": true}.
type CreateRecurringRequest struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description" validate:"max=2000"`
	Location      string          `json:"location" validate:"max=300"`
	ScheduledTime string          `json:"scheduledTime,omitempty" validate:"omitempty,datetime=15:04"`
	Price         float64         `json:"price" validate:"min=0"`
	AssignedToID  string          `json:"assignedToId,omitempty" validate:"omitempty,mongodb"`
	StartDate     string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string          `json:"endDate" validate:"required,datetime=2006-01-02"`
	Weekdays      map[string]bool `json:"weekdays" validate:"required"`
}

type RecurringFailure struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// RecurringResult reports the outcome of a batch. Created tasks stay created
// when siblings fail.
type RecurringResult struct {
	BatchID   string             `json:"batchId"`
	Requested int                `json:"requested"`
	Created   int                `json:"created"`
	Failed    int                `json:"failed"`
	Tasks     []*models.Task     `json:"tasks"`
	Errors    []RecurringFailure `json:"errors"`
}

// expandRecurring turns the request's range and weekday selection into
// concrete dates in ascending order.
func expandRecurring(req *CreateRecurringRequest, maxDays int) ([]civil.Date, error) {
	w, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if maxDays > 0 && w.Len() > maxDays {
		return nil, fmt.Errorf("%w: range spans %d days, at most %d allowed", models.ErrValidation, w.Len(), maxDays)
	}
	set, err := calendar.WeekdaysFromFlags(req.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	dates, err := calendar.Expand(w, set)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no selected weekday falls between %s and %s", models.ErrValidation, req.StartDate, req.EndDate)
	}
	return dates, nil
}

// CreateRecurring submits one task per matching date, in ascending date
// order, each independently. Validation failures, including a range in which
// no selected weekday falls, reject the whole request before anything is
// written.
func (s *TaskService) CreateRecurring(ctx context.Context, actor models.Actor, req *CreateRecurringRequest) (*RecurringResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	dates, err := expandRecurring(req, s.policy.RecurringMaxDays)
	if err != nil {
		return nil, err
	}
	assignee, err := s.resolveAssignee(ctx, actor.CompanyID, req.AssignedToID)
	if err != nil {
		return nil, err
	}

	result := &RecurringResult{
		BatchID:   uuid.NewString(),
		Requested: len(dates),
		Tasks:     make([]*models.Task, 0, len(dates)),
		Errors:    []RecurringFailure{},
	}

	now := s.now()
	pending := make([]*models.Task, len(dates))
	for i, d := range dates {
		// IDs are fixed up front so a retried insert cannot duplicate a task.
		pending[i] = &models.Task{
			ID:            primitive.NewObjectID(),
			CompanyID:     actor.CompanyID,
			Title:         strings.TrimSpace(req.Title),
			Description:   req.Description,
			Location:      req.Location,
			ScheduledDate: d,
			ScheduledTime: req.ScheduledTime,
			Price:         req.Price,
			AssignedToID:  assignee,
			Status:        models.TaskPending,
			BatchID:       result.BatchID,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	created := make([]*models.Task, len(dates))
	attempts := make([]int, len(dates))
	run := s.batch.Run(ctx, len(pending), func(ctx context.Context, i int) error {
		attempts[i]++
		task, err := s.tasks.Create(ctx, pending[i])
		if err != nil && attempts[i] > 1 && mongo.IsDuplicateKeyError(err) {
			// An earlier attempt may have been written before its reply was lost.
			task, err = s.confirmWritten(ctx, pending[i], err)
		}
		if err != nil {
			return err
		}
		created[i] = task
		return nil
	})
	for _, outcome := range run.Outcomes {
		if outcome.Err != nil {
			result.Errors = append(result.Errors, RecurringFailure{Date: dates[outcome.Index].String(), Error: publicError(outcome.Err)})
			continue
		}
		result.Tasks = append(result.Tasks, created[outcome.Index])
	}

	result.Created = len(result.Tasks)
	result.Failed = len(result.Errors)
	s.metrics.Recurring(result.Created, result.Failed)
	s.publish(ctx, actor, events.RecurringBatchCreated, events.RecurringBatchPayload{
		BatchID:   result.BatchID,
		Requested: result.Requested,
		Created:   result.Created,
		Failed:    result.Failed,
	})
	return result, nil
}

// confirmWritten re-reads a task whose retried insert hit a duplicate key.
// The task counts as created only when the stored copy is the one this batch
// wrote; otherwise insertErr stands.
func (s *TaskService) confirmWritten(ctx context.Context, task *models.Task, insertErr error) (*models.Task, error) {
	stored, err := s.tasks.FindByID(ctx, task.CompanyID, task.ID.Hex())
	if err != nil || stored.BatchID != task.BatchID {
		return nil, insertErr
	}
	return stored, nil
}

var domainErrors = []error{models.ErrValidation, models.ErrNotFound, models.ErrInvalidTransition, models.ErrPermissionDenied}

// publicError hides storage details from per-item batch failures.
func publicError(err error) string {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err.Error()
	}
	return "failed to create task"
}

// retryableStoreError reports whether a failed insert may succeed when tried
// again. Domain errors, duplicates and cancellation are final.
func retryableStoreError(err error) bool {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return false
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !mongo.IsDuplicateKeyError(err)
}
