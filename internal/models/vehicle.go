package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleStatus string

const (
	VehicleActive       VehicleStatus = "ACTIVE"
	VehicleInService    VehicleStatus = "IN_SERVICE"
	VehicleNeedsService VehicleStatus = "NEEDS_SERVICE"
	VehicleInactive     VehicleStatus = "INACTIVE"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleInService, VehicleNeedsService, VehicleInactive:
		return true
	}
	return false
}

type MileageUnit string

const (
	UnitMiles MileageUnit = "miles"
	UnitKm    MileageUnit = "km"
)

const DefaultServiceInterval = 10000

type Vehicle struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID            primitive.ObjectID  `bson:"company_id" json:"companyId"`
	Plate                string              `bson:"plate" json:"plate"`
	Make                 string              `bson:"make" json:"make"`
	Model                string              `bson:"model" json:"model"`
	Year                 int                 `bson:"year,omitempty" json:"year,omitempty"`
	Color                string              `bson:"color,omitempty" json:"color,omitempty"`
	Capacity             string              `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Type                 string              `bson:"type,omitempty" json:"type,omitempty"`
	CurrentMileage       int                 `bson:"current_mileage" json:"currentMileage"`
	MileageUnit          MileageUnit         `bson:"mileage_unit" json:"mileageUnit"`
	ServiceIntervalMiles int                 `bson:"service_interval_miles" json:"serviceIntervalMiles"`
	LastServiceMileage   int                 `bson:"last_service_mileage" json:"lastServiceMileage"`
	NextServiceMileage   int                 `bson:"next_service_mileage" json:"nextServiceMileage"`
	Status               VehicleStatus       `bson:"status" json:"status"`
	ServiceNotes         string              `bson:"service_notes,omitempty" json:"serviceNotes,omitempty"`
	AssignedToID         *primitive.ObjectID `bson:"assigned_to_id,omitempty" json:"assignedToId,omitempty"`
	NeedsService         bool                `bson:"-" json:"needsService"`
	CreatedAt            time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updated_at" json:"updatedAt"`
}

// DueForService reports whether the odometer has reached the service threshold.
func (v *Vehicle) DueForService() bool {
	return v.NextServiceMileage > 0 && v.CurrentMileage >= v.NextServiceMileage
}

// Refresh recomputes derived fields after a load or write.
func (v *Vehicle) Refresh() *Vehicle {
	v.NeedsService = v.DueForService()
	return v
}

type VehicleFilter struct {
	CompanyID    primitive.ObjectID
	Statuses     []VehicleStatus
	AssignedToID *primitive.ObjectID
}
