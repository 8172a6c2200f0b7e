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
	"github.com/susp3kt93/myfleet-sub000/pkg/cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleService struct {
	core
	vehicles VehicleStore
	users    UserStore
	cache    cache.VehicleCache
}

func NewVehicleService(vehicles VehicleStore, users UserStore, companies CompanyStore, opts Options) *VehicleService {
	return &VehicleService{
		core:     newCore(companies, opts),
		vehicles: vehicles,
		users:    users,
	}
}

// SetCache enables read-through caching of vehicles and vehicle lists.
func (s *VehicleService) SetCache(c cache.VehicleCache) {
	s.cache = c
}

type CreateVehicleRequest struct {
	Plate                string `json:"plate" validate:"required,min=1,max=20"`
	Make                 string `json:"make" validate:"required,max=60"`
	Model                string `json:"model" validate:"required,max=60"`
	Year                 int    `json:"year,omitempty" validate:"omitempty,min=1950,max=2100"`
	Color                string `json:"color,omitempty" validate:"max=40"`
	Capacity             string `json:"capacity,omitempty" validate:"max=40"`
	Type                 string `json:"type,omitempty" validate:"max=40"`
	CurrentMileage       int    `json:"currentMileage" validate:"min=0"`
	MileageUnit          string `json:"mileageUnit,omitempty" validate:"omitempty,oneof=miles km"`
	ServiceIntervalMiles int    `json:"serviceIntervalMiles,omitempty" validate:"omitempty,min=1"`
	NextServiceMileage   int    `json:"nextServiceMileage,omitempty" validate:"omitempty,min=0"`
}

type UpdateVehicleRequest struct {
	Plate                *string `json:"plate,omitempty" validate:"omitempty,min=1,max=20"`
	Make                 *string `json:"make,omitempty" validate:"omitempty,max=60"`
	Model                *string `json:"model,omitempty" validate:"omitempty,max=60"`
	Year                 *int    `json:"year,omitempty" validate:"omitempty,min=1950,max=2100"`
	Color                *string `json:"color,omitempty" validate:"omitempty,max=40"`
	Capacity             *string `json:"capacity,omitempty" validate:"omitempty,max=40"`
	Type                 *string `json:"type,omitempty" validate:"omitempty,max=40"`
	ServiceIntervalMiles *int    `json:"serviceIntervalMiles,omitempty" validate:"omitempty,min=1"`
	NextServiceMileage   *int    `json:"nextServiceMileage,omitempty" validate:"omitempty,min=0"`
}

type MileageRequest struct {
	Mileage int `json:"mileage" validate:"min=0"`
}

type StatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=ACTIVE IN_SERVICE NEEDS_SERVICE INACTIVE"`
	ServiceNotes   string `json:"serviceNotes,omitempty" validate:"max=1000"`
	UnassignDriver bool   `json:"unassignDriver,omitempty"`
}

type AssignRequest struct {
	DriverID string `json:"driverId" validate:"required,mongodb"`
}

type VehicleQuery struct {
	Statuses     []string
	AssignedToID string
}

func (s *VehicleService) Create(ctx context.Context, actor models.Actor, req *CreateVehicleRequest) (*models.Vehicle, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	plate := normalizePlate(req.Plate)
	if existing, err := s.vehicles.FindByPlate(ctx, actor.CompanyID, plate); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: plate %s already registered", models.ErrValidation, plate)
	}

	interval := req.ServiceIntervalMiles
	if interval == 0 {
		interval = models.DefaultServiceInterval
	}
	next := req.NextServiceMileage
	if next == 0 {
		next = req.CurrentMileage + interval
	}
	unit := models.MileageUnit(req.MileageUnit)
	if unit == "" {
		unit = models.UnitMiles
	}

	now := s.now()
	vehicle := &models.Vehicle{
		ID:                   primitive.NewObjectID(),
		CompanyID:            actor.CompanyID,
		Plate:                plate,
		Make:                 req.Make,
		Model:                req.Model,
		Year:                 req.Year,
		Color:                req.Color,
		Capacity:             req.Capacity,
		Type:                 req.Type,
		CurrentMileage:       req.CurrentMileage,
		MileageUnit:          unit,
		ServiceIntervalMiles: interval,
		LastServiceMileage:   req.CurrentMileage,
		NextServiceMileage:   next,
		Status:               models.VehicleActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	created, err := s.vehicles.Create(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, created, false)
	return created, nil
}

// Get reads through the cache. Drivers can only see the vehicle assigned to them.
func (s *VehicleService) Get(ctx context.Context, actor models.Actor, id string) (*models.Vehicle, error) {
	vehicle, err := s.cachedVehicle(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if actor.IsDriver() && (vehicle.AssignedToID == nil || *vehicle.AssignedToID != actor.UserID) {
		return nil, fmt.Errorf("%w: vehicle %s is not assigned to you", models.ErrPermissionDenied, id)
	}
	return vehicle, nil
}

func (s *VehicleService) cachedVehicle(ctx context.Context, companyID primitive.ObjectID, id string) (*models.Vehicle, error) {
	if s.cache != nil {
		cached, err := s.cache.GetVehicle(ctx, companyID.Hex(), id)
		if err != nil {
			log.WithError(err).WithField("vehicle_id", id).Warn("Vehicle cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	vehicle, err := s.vehicles.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetVehicle(ctx, vehicle); err != nil {
			log.WithError(err).WithField("vehicle_id", id).Warn("Vehicle cache write failed")
		}
	}
	return vehicle, nil
}

// List returns company vehicles. Drivers only see the ones assigned to them.
func (s *VehicleService) List(ctx context.Context, actor models.Actor, q VehicleQuery) ([]*models.Vehicle, error) {
	filter := models.VehicleFilter{CompanyID: actor.CompanyID}
	for _, raw := range q.Statuses {
		status := models.VehicleStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown vehicle status %q", models.ErrValidation, raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	switch {
	case actor.IsDriver():
		self := actor.UserID
		filter.AssignedToID = &self
	case q.AssignedToID != "":
		oid, err := parseRefID("assignedToId", q.AssignedToID)
		if err != nil {
			return nil, err
		}
		filter.AssignedToID = &oid
	}

	key := listKey(filter)
	if s.cache != nil {
		cached, err := s.cache.GetVehicleList(ctx, actor.CompanyID.Hex(), key)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Vehicle list cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	vehicles, err := s.vehicles.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetVehicleList(ctx, actor.CompanyID.Hex(), key, vehicles); err != nil {
			log.WithError(err).WithField("key", key).Warn("Vehicle list cache write failed")
		}
	}
	return vehicles, nil
}

func listKey(f models.VehicleFilter) string {
	parts := []string{"all"}
	for _, st := range f.Statuses {
		parts = append(parts, string(st))
	}
	if f.AssignedToID != nil {
		parts = append(parts, "driver="+f.AssignedToID.Hex())
	}
	return strings.Join(parts, ":")
}

func (s *VehicleService) Update(ctx context.Context, actor models.Actor, id string, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.vehicles.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Plate != nil {
		plate := normalizePlate(*req.Plate)
		if plate != current.Plate {
			existing, err := s.vehicles.FindByPlate(ctx, actor.CompanyID, plate)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != current.ID {
				return nil, fmt.Errorf("%w: plate %s already registered", models.ErrValidation, plate)
			}
		}
		set["plate"] = plate
	}
	if req.Make != nil {
		set["make"] = *req.Make
	}
	if req.Model != nil {
		set["model"] = *req.Model
	}
	if req.Year != nil {
		set["year"] = *req.Year
	}
	if req.Color != nil {
		set["color"] = *req.Color
	}
	if req.Capacity != nil {
		set["capacity"] = *req.Capacity
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.ServiceIntervalMiles != nil {
		set["service_interval_miles"] = *req.ServiceIntervalMiles
	}
	if req.NextServiceMileage != nil {
		set["next_service_mileage"] = *req.NextServiceMileage
	}
	if len(set) == 0 {
		return current, nil
	}
	set["updated_at"] = s.now()

	updated, err := s.vehicles.Update(ctx, actor.CompanyID, current.ID, nil, set, nil)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: vehicle %s", models.ErrNotFound, id)
		}
		return nil, err
	}
	s.invalidate(ctx, updated, true)
	return updated, nil
}

func (s *VehicleService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	oid, err := parsePathID("vehicle", id)
	if err != nil {
		return err
	}
	if err := s.vehicles.Delete(ctx, actor.CompanyID, oid); err != nil {
		return err
	}
	s.invalidate(ctx, &models.Vehicle{ID: oid, CompanyID: actor.CompanyID}, true)
	return nil
}

// UpdateMileage raises the odometer. A value below the stored mileage fails
// with ErrInvalidMileage and leaves the vehicle untouched. Admins and the
// assigned driver may record mileage.
func (s *VehicleService) UpdateMileage(ctx context.Context, actor models.Actor, id string, req *MileageRequest) (*models.Vehicle, error) {
	if err := validateRequest(req); err != nil {
		s.metrics.Mileage("invalid")
		return nil, err
	}
	current, err := s.vehicles.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (current.AssignedToID == nil || *current.AssignedToID != actor.UserID) {
		s.metrics.Mileage("denied")
		return nil, fmt.Errorf("%w: vehicle %s is not assigned to you", models.ErrPermissionDenied, id)
	}
	if req.Mileage < current.CurrentMileage {
		s.metrics.Mileage("invalid")
		return nil, fmt.Errorf("%w: %d is below current mileage %d", models.ErrInvalidMileage, req.Mileage, current.CurrentMileage)
	}

	updated, err := s.vehicles.UpdateMileage(ctx, actor.CompanyID, current.ID, req.Mileage, bson.M{"updated_at": s.now()})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.Mileage("invalid")
			return nil, fmt.Errorf("%w: mileage was raised above %d concurrently", models.ErrInvalidMileage, req.Mileage)
		}
		s.metrics.Mileage("error")
		return nil, err
	}
	s.metrics.Mileage("ok")
	s.invalidate(ctx, updated, true)
	s.publish(ctx, actor, events.VehicleMileageUpdated, vehiclePayload(updated, ""))
	return updated, nil
}

// SetStatus stores any status. Entering IN_SERVICE may unassign the driver;
// leaving IN_SERVICE for ACTIVE renews the service interval from the current
// mileage.
func (s *VehicleService) SetStatus(ctx context.Context, actor models.Actor, id string, req *StatusRequest) (*models.Vehicle, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.vehicles.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	to := models.VehicleStatus(req.Status)

	set := bson.M{"status": string(to), "updated_at": s.now()}
	var unset []string
	if req.ServiceNotes != "" {
		set["service_notes"] = req.ServiceNotes
	}
	if to == models.VehicleInService && req.UnassignDriver && current.AssignedToID != nil {
		unset = append(unset, "assigned_to_id")
	}
	expect := bson.M{"status": string(current.Status)}
	if current.Status == models.VehicleInService && to == models.VehicleActive {
		interval := current.ServiceIntervalMiles
		if interval <= 0 {
			interval = models.DefaultServiceInterval
		}
		set["last_service_mileage"] = current.CurrentMileage
		set["next_service_mileage"] = current.CurrentMileage + interval
		expect["current_mileage"] = current.CurrentMileage
	}

	updated, err := s.vehicles.Update(ctx, actor.CompanyID, current.ID, expect, set, unset)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: vehicle %s changed concurrently", models.ErrInvalidTransition, id)
		}
		return nil, err
	}
	s.invalidate(ctx, updated, true)
	s.publish(ctx, actor, events.VehicleStatusChanged, vehiclePayload(updated, current.Status))
	if len(unset) > 0 {
		payload := vehiclePayload(updated, "")
		payload.DriverID = current.AssignedToID.Hex()
		s.publish(ctx, actor, events.VehicleUnassigned, payload)
	}
	return updated, nil
}

// Assign gives the vehicle to a driver, replacing any previous assignee.
// Whether the driver already holds another vehicle is not checked here.
func (s *VehicleService) Assign(ctx context.Context, actor models.Actor, id string, req *AssignRequest) (*models.Vehicle, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	driverID, err := parseRefID("driverId", req.DriverID)
	if err != nil {
		return nil, err
	}
	driver, err := s.users.FindByID(ctx, actor.CompanyID, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsDriver() {
		return nil, fmt.Errorf("%w: user %s is not a driver", models.ErrValidation, req.DriverID)
	}
	vehicleID, err := parsePathID("vehicle", id)
	if err != nil {
		return nil, err
	}

	updated, err := s.vehicles.Update(ctx, actor.CompanyID, vehicleID, nil,
		bson.M{"assigned_to_id": driverID, "updated_at": s.now()}, nil)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: vehicle %s", models.ErrNotFound, id)
		}
		return nil, err
	}
	s.invalidate(ctx, updated, true)
	s.publish(ctx, actor, events.VehicleAssigned, vehiclePayload(updated, ""))
	return updated, nil
}

func (s *VehicleService) Unassign(ctx context.Context, actor models.Actor, id string) (*models.Vehicle, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.vehicles.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if current.AssignedToID == nil {
		return current, nil
	}

	updated, err := s.vehicles.Update(ctx, actor.CompanyID, current.ID,
		bson.M{"assigned_to_id": *current.AssignedToID},
		bson.M{"updated_at": s.now()}, []string{"assigned_to_id"})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: vehicle %s was reassigned concurrently", models.ErrInvalidTransition, id)
		}
		return nil, err
	}
	s.invalidate(ctx, updated, true)
	payload := vehiclePayload(updated, "")
	payload.DriverID = current.AssignedToID.Hex()
	s.publish(ctx, actor, events.VehicleUnassigned, payload)
	return updated, nil
}

// invalidate drops cached lists for the company and, when dropEntry is set,
// the vehicle's own entry.
func (s *VehicleService) invalidate(ctx context.Context, v *models.Vehicle, dropEntry bool) {
	if s.cache == nil {
		return
	}
	fields := log.Fields{"vehicle_id": v.ID.Hex(), "company_id": v.CompanyID.Hex()}
	if dropEntry {
		if err := s.cache.InvalidateVehicle(ctx, v.CompanyID.Hex(), v.ID.Hex()); err != nil {
			log.WithError(err).WithFields(fields).Warn("Failed to invalidate cached vehicle")
		}
	}
	if err := s.cache.InvalidateCompany(ctx, v.CompanyID.Hex()); err != nil {
		log.WithError(err).WithFields(fields).Warn("Failed to invalidate cached vehicle lists")
	}
}

func normalizePlate(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

func vehiclePayload(v *models.Vehicle, previous models.VehicleStatus) events.VehiclePayload {
	return events.VehiclePayload{
		VehicleID:      v.ID.Hex(),
		Plate:          v.Plate,
		Status:         string(v.Status),
		PreviousStatus: string(previous),
		DriverID:       hexOrEmpty(v.AssignedToID),
		CurrentMileage: v.CurrentMileage,
		NextService:    v.NextServiceMileage,
		NeedsService:   v.NeedsService,
	}
}
