package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/repository"
	"github.com/susp3kt93/myfleet-sub000/pkg/batch"
	"github.com/susp3kt93/myfleet-sub000/pkg/calendar"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	core
	tasks TaskStore
	users UserStore
	batch *batch.Processor
}

func NewTaskService(tasks TaskStore, users UserStore, companies CompanyStore, opts Options) *TaskService {
	batchConfig := batch.DefaultConfig()
	if opts.Batch != nil {
		batchConfig = *opts.Batch
	}
	return &TaskService{
		core:  newCore(companies, opts),
		tasks: tasks,
		users: users,
		batch: batch.NewProcessor(batchConfig, batch.WithRetryable(retryableStoreError)),
	}
}

type CreateTaskRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=2000"`
	Location      string  `json:"location" validate:"max=300"`
	ScheduledDate string  `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime string  `json:"scheduledTime,omitempty" validate:"omitempty,datetime=15:04"`
	Price         float64 `json:"price" validate:"min=0"`
	AssignedToID  string  `json:"assignedToId,omitempty" validate:"omitempty,mongodb"`
}

// UpdateTaskRequest changes only the fields that are set. An empty
// AssignedToID unassigns the task.
type UpdateTaskRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location      *string  `json:"location,omitempty" validate:"omitempty,max=300"`
	ScheduledDate *string  `json:"scheduledDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime *string  `json:"scheduledTime,omitempty" validate:"omitempty,datetime=15:04"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	AssignedToID  *string  `json:"assignedToId,omitempty" validate:"omitempty,mongodb"`
}

type TaskQuery struct {
	StartDate    string
	EndDate      string
	Statuses     []string
	AssignedToID string
	Unassigned   bool
}

func (s *TaskService) Create(ctx context.Context, actor models.Actor, req *CreateTaskRequest) (*models.Task, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	date, err := parseDate("scheduledDate", req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	assignee, err := s.resolveAssignee(ctx, actor.CompanyID, req.AssignedToID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		ID:            primitive.NewObjectID(),
		CompanyID:     actor.CompanyID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Location:      req.Location,
		ScheduledDate: date,
		ScheduledTime: req.ScheduledTime,
		Price:         req.Price,
		AssignedToID:  assignee,
		Status:        models.TaskPending,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.TaskCreated, taskPayload(created))
	return created, nil
}

// resolveAssignee checks that id names a driver of the company.
func (s *TaskService) resolveAssignee(ctx context.Context, companyID primitive.ObjectID, id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := parseRefID("assignedToId", id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, companyID, oid)
	if err != nil {
		return nil, err
	}
	if !user.IsDriver() {
		return nil, fmt.Errorf("%w: assignee %s is not a driver", models.ErrValidation, id)
	}
	return &oid, nil
}

// Get returns a task. Drivers see their own tasks and unassigned ones.
func (s *TaskService) Get(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if actor.IsDriver() && task.AssignedToID != nil && !task.IsAssignedTo(actor.UserID) {
		return nil, fmt.Errorf("%w: task %s belongs to another driver", models.ErrPermissionDenied, id)
	}
	return task, nil
}

// List returns tasks ordered by date and time. Drivers only ever see their own.
func (s *TaskService) List(ctx context.Context, actor models.Actor, q TaskQuery) ([]*models.Task, error) {
	filter := models.TaskFilter{CompanyID: actor.CompanyID, Unassigned: q.Unassigned}

	var err error
	if filter.StartDate, err = parseDate("startDate", q.StartDate); err != nil {
		return nil, err
	}
	if filter.EndDate, err = parseDate("endDate", q.EndDate); err != nil {
		return nil, err
	}
	if !calendar.IsZero(filter.StartDate) && !calendar.IsZero(filter.EndDate) && filter.EndDate.Before(filter.StartDate) {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, calendar.ErrInvertedRange)
	}

	for _, raw := range q.Statuses {
		status := models.TaskStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown task status %q", models.ErrValidation, raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	switch {
	case actor.IsDriver():
		self := actor.UserID
		filter.AssignedToID = &self
		filter.Unassigned = false
	case q.AssignedToID != "":
		oid, err := parseRefID("assignedToId", q.AssignedToID)
		if err != nil {
			return nil, err
		}
		filter.AssignedToID = &oid
	}

	return s.tasks.List(ctx, filter)
}

// Today lists the acting driver's tasks scheduled for today in the company timezone.
func (s *TaskService) Today(ctx context.Context, actor models.Actor) ([]*models.Task, error) {
	if err := requireDriver(actor); err != nil {
		return nil, err
	}
	today := s.today(ctx, actor.CompanyID)
	self := actor.UserID
	return s.tasks.List(ctx, models.TaskFilter{
		CompanyID:    actor.CompanyID,
		StartDate:    today,
		EndDate:      today,
		AssignedToID: &self,
	})
}

// Update edits a non-terminal task. Reassignment is only allowed while PENDING.
func (s *TaskService) Update(ctx context.Context, actor models.Actor, id string, req *UpdateTaskRequest) (*models.Task, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if task.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: task %s is %s", models.ErrInvalidTransition, id, task.Status)
	}

	set := bson.M{}
	var unset []string
	allowed := []models.TaskStatus{models.TaskPending, models.TaskAccepted}

	if req.Title != nil {
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.ScheduledDate != nil {
		d, err := parseDate("scheduledDate", *req.ScheduledDate)
		if err != nil {
			return nil, err
		}
		set["scheduled_date"] = d
	}
	if req.ScheduledTime != nil {
		set["scheduled_time"] = *req.ScheduledTime
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.AssignedToID != nil {
		if task.Status != models.TaskPending {
			return nil, fmt.Errorf("%w: task %s can only be reassigned while PENDING", models.ErrInvalidTransition, id)
		}
		assignee, err := s.resolveAssignee(ctx, actor.CompanyID, *req.AssignedToID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			unset = append(unset, "assigned_to_id")
		} else {
			set["assigned_to_id"] = *assignee
		}
		allowed = []models.TaskStatus{models.TaskPending}
	}

	if len(set) == 0 && len(unset) == 0 {
		return task, nil
	}
	set["updated_at"] = s.now()

	updated, err := s.tasks.UpdateFields(ctx, actor.CompanyID, task.ID, allowed, set, unset)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: task %s changed status during update", models.ErrInvalidTransition, id)
		}
		return nil, err
	}

	s.publish(ctx, actor, events.TaskUpdated, taskPayload(updated))
	return updated, nil
}

// Delete removes a task regardless of status.
func (s *TaskService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	task, err := s.tasks.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, actor.CompanyID, task.ID); err != nil {
		return err
	}
	s.publish(ctx, actor, events.TaskDeleted, taskPayload(task))
	return nil
}

// Accept moves a PENDING task to ACCEPTED. An unassigned task is claimed by
// the acting driver. Accepting an already ACCEPTED task of one's own is a no-op.
func (s *TaskService) Accept(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	task, err := s.loadForDriver(ctx, actor, id, "accept", true)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskAccepted && task.IsAssignedTo(actor.UserID) {
		s.metrics.Transition("accept", "noop")
		return task, nil
	}

	self := actor.UserID
	updated, err := s.transition(ctx, actor, task, models.TaskAccepted, "accept", func(p *repository.TransitionParams) {
		p.ClaimFor = &self
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor, events.TaskAccepted, taskPayload(updated))
	return updated, nil
}

// Reject moves a PENDING or ACCEPTED task to REJECTED. The reject penalty
// applies only when configured above zero.
func (s *TaskService) Reject(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	task, err := s.loadForDriver(ctx, actor, id, "reject", false)
	if err != nil {
		return nil, err
	}
	from := task.Status
	updated, err := s.transition(ctx, actor, task, models.TaskRejected, "reject", nil)
	if err != nil {
		return nil, err
	}

	payload := events.TaskRejectedPayload{
		TaskID:     updated.ID.Hex(),
		DriverID:   actor.UserID.Hex(),
		FromStatus: string(from),
	}
	if penalty := s.policy.RejectPenalty; penalty > 0 {
		user, err := s.users.ApplyRatingPenalty(ctx, actor.CompanyID, actor.UserID, penalty, s.policy.Rating)
		if err != nil {
			return nil, s.penaltyFailed(updated, "reject", err)
		}
		payload.Penalty = penalty
		payload.NewRating = user.Rating
	}

	s.publish(ctx, actor, events.TaskRejected, payload)
	return updated, nil
}

// Complete moves an ACCEPTED task to COMPLETED. Only allowed on the task's
// scheduled date in the company timezone.
func (s *TaskService) Complete(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	task, err := s.loadForDriver(ctx, actor, id, "complete", false)
	if err != nil {
		return nil, err
	}
	if models.CanTransition(task.Status, models.TaskCompleted) {
		if today := s.today(ctx, actor.CompanyID); task.ScheduledDate != today {
			s.metrics.Transition("complete", "invalid")
			return nil, fmt.Errorf("%w: task %s is scheduled for %s, today is %s",
				models.ErrInvalidTransition, id, task.ScheduledDate, today)
		}
	}

	updated, err := s.transition(ctx, actor, task, models.TaskCompleted, "complete", nil)
	if err != nil {
		return nil, err
	}

	payload := events.TaskCompletedPayload{
		TaskID:        updated.ID.Hex(),
		DriverID:      actor.UserID.Hex(),
		ScheduledDate: updated.ScheduledDate.String(),
		Price:         updated.Price,
	}
	if updated.CompletedAt != nil {
		payload.CompletedAt = *updated.CompletedAt
	}
	s.publish(ctx, actor, events.TaskCompleted, payload)
	return updated, nil
}

// Cancel moves an ACCEPTED task to CANCELLED and deducts the cancel penalty
// from the driver's rating. The status change is kept even when the rating
// write fails; that failure is returned.
func (s *TaskService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	task, err := s.loadForDriver(ctx, actor, id, "cancel", false)
	if err != nil {
		return nil, err
	}
	updated, err := s.transition(ctx, actor, task, models.TaskCancelled, "cancel", nil)
	if err != nil {
		return nil, err
	}

	penalty := s.policy.CancelPenalty
	user, err := s.users.ApplyRatingPenalty(ctx, actor.CompanyID, actor.UserID, penalty, s.policy.Rating)
	if err != nil {
		return nil, s.penaltyFailed(updated, "cancel", err)
	}

	s.publish(ctx, actor, events.TaskCancelled, events.TaskCancelledPayload{
		TaskID:    updated.ID.Hex(),
		DriverID:  actor.UserID.Hex(),
		Penalty:   penalty,
		NewRating: user.Rating,
	})
	return updated, nil
}

// loadForDriver reads the current task and checks the actor may drive its
// lifecycle. claim allows an unassigned task; a task another driver has
// already taken past PENDING can no longer be claimed.
func (s *TaskService) loadForDriver(ctx context.Context, actor models.Actor, id, transition string, claim bool) (*models.Task, error) {
	if err := requireDriver(actor); err != nil {
		s.metrics.Transition(transition, "denied")
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if task.IsAssignedTo(actor.UserID) || (claim && task.AssignedToID == nil) {
		return task, nil
	}
	if claim && task.Status != models.TaskPending {
		s.metrics.Transition(transition, "invalid")
		return nil, fmt.Errorf("%w: task %s is already %s", models.ErrInvalidTransition, id, task.Status)
	}
	s.metrics.Transition(transition, "denied")
	return nil, fmt.Errorf("%w: task %s is not assigned to you", models.ErrPermissionDenied, id)
}

// transition validates from -> to against the lifecycle and writes it with a
// compare-and-set on the status and assignee just read.
func (s *TaskService) transition(ctx context.Context, actor models.Actor, task *models.Task, to models.TaskStatus, name string, tweak func(*repository.TransitionParams)) (*models.Task, error) {
	if !models.CanTransition(task.Status, to) {
		s.metrics.Transition(name, "invalid")
		return nil, fmt.Errorf("%w: cannot %s a %s task", models.ErrInvalidTransition, name, task.Status)
	}

	params := repository.TransitionParams{
		CompanyID: actor.CompanyID,
		TaskID:    task.ID,
		From:      task.Status,
		To:        to,
		At:        s.now(),
	}
	if task.AssignedToID != nil {
		params.ExpectAssignee = task.AssignedToID
	}
	if tweak != nil {
		tweak(&params)
	}

	updated, err := s.tasks.Transition(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.Transition(name, "conflict")
			return nil, fmt.Errorf("%w: task %s is no longer %s", models.ErrInvalidTransition, task.ID.Hex(), task.Status)
		}
		s.metrics.Transition(name, "error")
		return nil, err
	}
	s.metrics.Transition(name, "ok")
	return updated, nil
}

func (s *TaskService) penaltyFailed(task *models.Task, transition string, err error) error {
	log.WithError(err).WithFields(log.Fields{
		"task_id":    task.ID.Hex(),
		"driver_id":  hexOrEmpty(task.AssignedToID),
		"transition": transition,
	}).Error("Task transitioned but rating penalty was not applied")
	return fmt.Errorf("task %s is %s but rating penalty failed: %w", task.ID.Hex(), task.Status, err)
}

func taskPayload(t *models.Task) events.TaskPayload {
	return events.TaskPayload{
		TaskID:        t.ID.Hex(),
		DriverID:      hexOrEmpty(t.AssignedToID),
		ScheduledDate: t.ScheduledDate.String(),
		Status:        string(t.Status),
		Price:         t.Price,
	}
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
