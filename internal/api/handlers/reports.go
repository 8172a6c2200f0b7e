package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/reports"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

type ReportService interface {
	DriverActivity(ctx context.Context, actor models.Actor, q services.ReportQuery) (*reports.ActivityReport, error)
	Weekly(ctx context.Context, actor models.Actor, q services.ReportQuery) (*reports.WeeklyReport, error)
	ExportCSV(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error)
	ExportXLSX(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error)
	ExportPDF(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error)
}

type ReportHandler struct {
	reportService ReportService
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func reportQuery(c *gin.Context) services.ReportQuery {
	return services.ReportQuery{
		StartDate:      c.Query("startDate"),
		EndDate:        c.Query("endDate"),
		WeekStart:      c.Query("weekStart"),
		WeekStartDay:   c.Query("weekStartDay"),
		IncludePending: c.Query("includePending") == "true",
		DriverID:       c.Query("driverId"),
	}
}

func (h *ReportHandler) GetDriverActivity(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := h.reportService.DriverActivity(c.Request.Context(), actor, reportQuery(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Driver activity retrieved successfully", report)
}

func (h *ReportHandler) GetWeeklyReport(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := h.reportService.Weekly(c.Request.Context(), actor, reportQuery(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Weekly report retrieved successfully", report)
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	h.export(c, h.reportService.ExportCSV)
}

func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, h.reportService.ExportXLSX)
}

func (h *ReportHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.reportService.ExportPDF)
}

type exportFunc func(ctx context.Context, actor models.Actor, q services.ReportQuery) (*services.Export, error)

func (h *ReportHandler) export(c *gin.Context, fn exportFunc) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), actor, reportQuery(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
