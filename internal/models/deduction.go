package models

import (
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeductionType string

const (
	DeductionVanRental DeductionType = "VAN_RENTAL"
	DeductionPenalty   DeductionType = "PENALTY"
	DeductionInsurance DeductionType = "INSURANCE"
	DeductionFuel      DeductionType = "FUEL"
	DeductionEquipment DeductionType = "EQUIPMENT"
	DeductionOther     DeductionType = "OTHER"
)

type DeductionFrequency string

const (
	FrequencyWeekly  DeductionFrequency = "WEEKLY"
	FrequencyMonthly DeductionFrequency = "MONTHLY"
	FrequencyOneTime DeductionFrequency = "ONE_TIME"
)

type DeductionStatus string

const (
	DeductionActive   DeductionStatus = "ACTIVE"
	DeductionInactive DeductionStatus = "INACTIVE"
)

// Deduction is informational; it is reported next to earnings, never netted.
type Deduction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID `bson:"company_id" json:"companyId"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Type        DeductionType      `bson:"type" json:"type"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Amount      float64            `bson:"amount" json:"amount"`
	Frequency   DeductionFrequency `bson:"frequency" json:"frequency"`
	Status      DeductionStatus    `bson:"status" json:"status"`
	StartDate   civil.Date         `bson:"start_date" json:"startDate"`
	EndDate     *civil.Date        `bson:"end_date,omitempty" json:"endDate,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the deduction is in effect on any date of [from, to].
func (d *Deduction) Overlaps(from, to civil.Date) bool {
	if d.StartDate.After(to) {
		return false
	}
	return d.EndDate == nil || !d.EndDate.Before(from)
}

type DeductionFilter struct {
	CompanyID primitive.ObjectID
	UserID    *primitive.ObjectID
	Statuses  []DeductionStatus
}
