// Package events carries domain facts out of the scheduling core to audit,
// live-dashboard and messaging subscribers.
package events

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TaskCreated           Type = "TaskCreated"
	TaskUpdated           Type = "TaskUpdated"
	TaskAccepted          Type = "TaskAccepted"
	TaskRejected          Type = "TaskRejected"
	TaskCompleted         Type = "TaskCompleted"
	TaskCancelled         Type = "TaskCancelled"
	TaskDeleted           Type = "TaskDeleted"
	RecurringBatchCreated Type = "RecurringBatchCreated"
	TimeOffSubmitted      Type = "TimeOffSubmitted"
	TimeOffApproved       Type = "TimeOffApproved"
	TimeOffRejected       Type = "TimeOffRejected"
	TimeOffUpdated        Type = "TimeOffUpdated"
	TimeOffDeleted        Type = "TimeOffDeleted"
	VehicleMileageUpdated Type = "VehicleMileageUpdated"
	VehicleStatusChanged  Type = "VehicleStatusChanged"
	VehicleAssigned       Type = "VehicleAssigned"
	VehicleUnassigned     Type = "VehicleUnassigned"
)

type Event struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	CompanyID  string      `json:"companyId"`
	ActorID    string      `json:"actorId,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

func New(eventType Type, companyID, actorID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CompanyID:  companyID,
		ActorID:    actorID,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

type TaskPayload struct {
	TaskID        string  `json:"taskId"`
	DriverID      string  `json:"driverId,omitempty"`
	ScheduledDate string  `json:"scheduledDate"`
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
}

type TaskRejectedPayload struct {
	TaskID     string  `json:"taskId"`
	DriverID   string  `json:"driverId"`
	FromStatus string  `json:"fromStatus"`
	Penalty    float64 `json:"penalty"`
	NewRating  float64 `json:"newRating,omitempty"`
}

type TaskCompletedPayload struct {
	TaskID        string    `json:"taskId"`
	DriverID      string    `json:"driverId"`
	ScheduledDate string    `json:"scheduledDate"`
	Price         float64   `json:"price"`
	CompletedAt   time.Time `json:"completedAt"`
}

type TaskCancelledPayload struct {
	TaskID    string  `json:"taskId"`
	DriverID  string  `json:"driverId"`
	Penalty   float64 `json:"penalty"`
	NewRating float64 `json:"newRating"`
}

type RecurringBatchPayload struct {
	BatchID   string `json:"batchId"`
	Requested int    `json:"requested"`
	Created   int    `json:"created"`
	Failed    int    `json:"failed"`
}

type TimeOffPayload struct {
	RequestID   string `json:"requestId"`
	UserID      string `json:"userId"`
	RequestDate string `json:"requestDate"`
	EndDate     string `json:"endDate,omitempty"`
	Status      string `json:"status"`
	Days        int    `json:"days"`
	AdminNotes  string `json:"adminNotes,omitempty"`
}

type VehiclePayload struct {
	VehicleID      string `json:"vehicleId"`
	Plate          string `json:"plate"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus,omitempty"`
	DriverID       string `json:"driverId,omitempty"`
	CurrentMileage int    `json:"currentMileage"`
	NextService    int    `json:"nextServiceMileage"`
	NeedsService   bool   `json:"needsService"`
}

// Concerns reports whether the event involves userID as actor or subject.
func (e Event) Concerns(userID string) bool {
	if e.ActorID == userID {
		return true
	}
	switch p := e.Payload.(type) {
	case TaskPayload:
		return p.DriverID == userID
	case TaskRejectedPayload:
		return p.DriverID == userID
	case TaskCompletedPayload:
		return p.DriverID == userID
	case TaskCancelledPayload:
		return p.DriverID == userID
	case TimeOffPayload:
		return p.UserID == userID
	case VehiclePayload:
		return p.DriverID == userID
	}
	return false
}
