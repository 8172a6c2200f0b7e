package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

type TimeOffService interface {
	Submit(ctx context.Context, actor models.Actor, req *services.SubmitTimeOffRequest) (*models.TimeOffRequest, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.TimeOffRequest, error)
	List(ctx context.Context, actor models.Actor, q services.TimeOffQuery) ([]*models.TimeOffRequest, error)
	Update(ctx context.Context, actor models.Actor, id string, req *services.UpdateTimeOffRequest) (*models.TimeOffRequest, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Approve(ctx context.Context, actor models.Actor, id string, req *services.ReviewRequest) (*models.TimeOffRequest, error)
	Reject(ctx context.Context, actor models.Actor, id string, req *services.ReviewRequest) (*models.TimeOffRequest, error)
	DriverStats(ctx context.Context, actor models.Actor, year int) (*services.TimeOffStats, error)
}

type TimeOffHandler struct {
	timeOffService TimeOffService
}

func NewTimeOffHandler(timeOffService TimeOffService) *TimeOffHandler {
	return &TimeOffHandler{timeOffService: timeOffService}
}

func (h *TimeOffHandler) SubmitRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.SubmitTimeOffRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.timeOffService.Submit(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Time-off request submitted", record)
}

func (h *TimeOffHandler) GetRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	year, ok := yearQuery(c, 0)
	if !ok {
		return
	}
	records, err := h.timeOffService.List(c.Request.Context(), actor, services.TimeOffQuery{
		UserID:   c.Query("userId"),
		Statuses: queryList(c, "status"),
		Year:     year,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Time-off requests retrieved successfully", records)
}

func (h *TimeOffHandler) GetRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	record, err := h.timeOffService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Time-off request retrieved successfully", record)
}

func (h *TimeOffHandler) UpdateRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.UpdateTimeOffRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.timeOffService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Time-off request updated successfully", record)
}

func (h *TimeOffHandler) DeleteRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.timeOffService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Time-off request deleted successfully", nil)
}

func (h *TimeOffHandler) ApproveRequest(c *gin.Context) {
	h.review(c, h.timeOffService.Approve, "Time-off request approved")
}

func (h *TimeOffHandler) RejectRequest(c *gin.Context) {
	h.review(c, h.timeOffService.Reject, "Time-off request rejected")
}

type reviewFunc func(ctx context.Context, actor models.Actor, id string, req *services.ReviewRequest) (*models.TimeOffRequest, error)

func (h *TimeOffHandler) review(c *gin.Context, fn reviewFunc, message string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	// The body is optional for reviews. A chunked empty body decodes to EOF.
	var req services.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ValidationErrorResponse(c, err)
		return
	}
	record, err := fn(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, record)
}

// GetStats returns per-driver day totals for ?year=. The service defaults to
// the current year.
func (h *TimeOffHandler) GetStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	year, ok := yearQuery(c, 0)
	if !ok {
		return
	}
	stats, err := h.timeOffService.DriverStats(c.Request.Context(), actor, year)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Time-off statistics retrieved successfully", stats)
}

func yearQuery(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return fallback, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "year must be a number", err)
		return 0, false
	}
	return year, true
}
