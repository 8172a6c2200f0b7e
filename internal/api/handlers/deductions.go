package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

type DeductionService interface {
	Create(ctx context.Context, actor models.Actor, req *services.DeductionRequest) (*models.Deduction, error)
	Update(ctx context.Context, actor models.Actor, id string, req *services.DeductionRequest) (*models.Deduction, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Deduction, error)
	List(ctx context.Context, actor models.Actor, userID string) ([]*models.Deduction, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Summary(ctx context.Context, actor models.Actor, startDate, endDate string) (*services.DeductionSummaryReport, error)
}

type DeductionHandler struct {
	deductionService DeductionService
}

func NewDeductionHandler(deductionService DeductionService) *DeductionHandler {
	return &DeductionHandler{deductionService: deductionService}
}

func (h *DeductionHandler) GetDeductions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	list, err := h.deductionService.List(c.Request.Context(), actor, c.Query("userId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deductions retrieved successfully", list)
}

func (h *DeductionHandler) GetDeduction(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	d, err := h.deductionService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deduction retrieved successfully", d)
}

func (h *DeductionHandler) CreateDeduction(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.DeductionRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.deductionService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Deduction created successfully", d)
}

func (h *DeductionHandler) UpdateDeduction(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.DeductionRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.deductionService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deduction updated successfully", d)
}

func (h *DeductionHandler) DeleteDeduction(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.deductionService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deduction deleted successfully", nil)
}

func (h *DeductionHandler) GetSummary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	summary, err := h.deductionService.Summary(c.Request.Context(), actor, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deduction summary retrieved successfully", summary)
}
