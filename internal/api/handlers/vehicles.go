package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

type VehicleService interface {
	Create(ctx context.Context, actor models.Actor, req *services.CreateVehicleRequest) (*models.Vehicle, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Vehicle, error)
	List(ctx context.Context, actor models.Actor, q services.VehicleQuery) ([]*models.Vehicle, error)
	Update(ctx context.Context, actor models.Actor, id string, req *services.UpdateVehicleRequest) (*models.Vehicle, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	UpdateMileage(ctx context.Context, actor models.Actor, id string, req *services.MileageRequest) (*models.Vehicle, error)
	SetStatus(ctx context.Context, actor models.Actor, id string, req *services.StatusRequest) (*models.Vehicle, error)
	Assign(ctx context.Context, actor models.Actor, id string, req *services.AssignRequest) (*models.Vehicle, error)
	Unassign(ctx context.Context, actor models.Actor, id string) (*models.Vehicle, error)
}

type VehicleHandler struct {
	vehicleService VehicleService
}

func NewVehicleHandler(vehicleService VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// GetVehicles retrieves vehicles, optionally by ?status= and ?assignedToId=
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	vehicles, err := h.vehicleService.List(c.Request.Context(), actor, services.VehicleQuery{
		Statuses:     queryList(c, "status"),
		AssignedToID: c.Query("assignedToId"),
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle retrieves a specific vehicle by ID
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	vehicle, err := h.vehicleService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

// CreateVehicle creates a new vehicle
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.CreateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicleService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", vehicle)
}

// UpdateVehicle updates an existing vehicle
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.UpdateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicleService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", vehicle)
}

// DeleteVehicle deletes a vehicle
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.vehicleService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", nil)
}

func (h *VehicleHandler) UpdateMileage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.MileageRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicleService.UpdateMileage(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Mileage updated successfully", vehicle)
}

func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicleService.SetStatus(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle status updated successfully", vehicle)
}

func (h *VehicleHandler) AssignDriver(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	vehicle, err := h.vehicleService.Assign(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Driver assigned successfully", vehicle)
}

func (h *VehicleHandler) UnassignDriver(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	vehicle, err := h.vehicleService.Unassign(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Driver unassigned successfully", vehicle)
}
