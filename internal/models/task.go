package models

import (
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskAccepted  TaskStatus = "ACCEPTED"
	TaskRejected  TaskStatus = "REJECTED"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskCancelled TaskStatus = "CANCELLED"
)

// taskTransitions lists the statuses reachable from each status.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:  {TaskAccepted, TaskRejected},
	TaskAccepted: {TaskCompleted, TaskCancelled, TaskRejected},
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskAccepted, TaskRejected, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no lifecycle transition can leave s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskRejected || s == TaskCompleted || s == TaskCancelled
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesOf returns every status from which to is reachable.
func SourcesOf(to TaskStatus) []TaskStatus {
	var sources []TaskStatus
	for _, from := range []TaskStatus{TaskPending, TaskAccepted} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

type Task struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID     primitive.ObjectID  `bson:"company_id" json:"companyId"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description" json:"description"`
	Location      string              `bson:"location" json:"location"`
	ScheduledDate civil.Date          `bson:"scheduled_date" json:"scheduledDate"`
	ScheduledTime string              `bson:"scheduled_time,omitempty" json:"scheduledTime,omitempty"`
	Price         float64             `bson:"price" json:"price"`
	AssignedToID  *primitive.ObjectID `bson:"assigned_to_id,omitempty" json:"assignedToId,omitempty"`
	Status        TaskStatus          `bson:"status" json:"status"`
	BatchID       string              `bson:"batch_id,omitempty" json:"batchId,omitempty"`
	CompletedAt   *time.Time          `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CreatedBy     primitive.ObjectID  `bson:"created_by" json:"createdBy"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updatedAt"`
}

func (t *Task) IsAssignedTo(userID primitive.ObjectID) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// TaskFilter narrows task listings. Zero values mean "no constraint".
type TaskFilter struct {
	CompanyID    primitive.ObjectID
	StartDate    civil.Date
	EndDate      civil.Date
	Statuses     []TaskStatus
	AssignedToID *primitive.ObjectID
	Unassigned   bool
}
