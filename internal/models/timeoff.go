package models

import (
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "PENDING"
	TimeOffApproved TimeOffStatus = "APPROVED"
	TimeOffRejected TimeOffStatus = "REJECTED"
)

func (s TimeOffStatus) Valid() bool {
	return s == TimeOffPending || s == TimeOffApproved || s == TimeOffRejected
}

// TimeOffRequest covers RequestDate..EndDate inclusive, or RequestDate alone
// when EndDate is nil.
type TimeOffRequest struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID  `bson:"company_id" json:"companyId"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"userId"`
	RequestDate civil.Date          `bson:"request_date" json:"requestDate"`
	EndDate     *civil.Date         `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Reason      string              `bson:"reason,omitempty" json:"reason,omitempty"`
	AdminNotes  string              `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	Status      TimeOffStatus       `bson:"status" json:"status"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

// LastDay returns the final covered date.
func (r *TimeOffRequest) LastDay() civil.Date {
	if r.EndDate == nil {
		return r.RequestDate
	}
	return *r.EndDate
}

func (r *TimeOffRequest) DayCount() int {
	return r.LastDay().DaysSince(r.RequestDate) + 1
}

func (r *TimeOffRequest) Covers(d civil.Date) bool {
	return !d.Before(r.RequestDate) && !d.After(r.LastDay())
}

// Days expands the request into every covered date in ascending order.
func (r *TimeOffRequest) Days() []civil.Date {
	days := make([]civil.Date, 0, r.DayCount())
	for d := r.RequestDate; !d.After(r.LastDay()); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

type TimeOffFilter struct {
	CompanyID primitive.ObjectID
	UserID    *primitive.ObjectID
	Statuses  []TimeOffStatus
	// Overlap window; requests touching any date in [From, To] match.
	From civil.Date
	To   civil.Date
}
