package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/api/handlers"
	"github.com/susp3kt93/myfleet-sub000/internal/api/middleware"
	"github.com/susp3kt93/myfleet-sub000/pkg/jwt"
	"github.com/susp3kt93/myfleet-sub000/pkg/ratelimit"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes.
type Handlers struct {
	Health     *handlers.HealthHandler
	Tasks      *handlers.TaskHandler
	TimeOff    *handlers.TimeOffHandler
	Vehicles   *handlers.VehicleHandler
	Deductions *handlers.DeductionHandler
	Reports    *handlers.ReportHandler
	Events     *handlers.WebSocketHandler
}

// Options configure the protected group. A nil Limiter disables rate limiting.
type Options struct {
	JWT             *jwt.JWTUtil
	Limiter         ratelimit.RateLimiter
	RateLimitConfig *ratelimit.Config
}

func SetupRoutes(router *gin.Engine, h Handlers, opts Options) {
	router.GET("/health", h.Health.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(opts.JWT))
	if opts.Limiter != nil {
		config := opts.RateLimitConfig
		if config == nil {
			config = ratelimit.DefaultConfig()
		}
		api.Use(middleware.RateLimitMiddleware(opts.Limiter, config))
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.Tasks.GetTasks)
		tasks.POST("", h.Tasks.CreateTask)
		tasks.GET("/today", h.Tasks.GetTodayTasks)
		tasks.POST("/recurring", h.Tasks.CreateRecurringTasks)
		tasks.GET("/:id", h.Tasks.GetTask)
		tasks.PUT("/:id", h.Tasks.UpdateTask)
		tasks.DELETE("/:id", h.Tasks.DeleteTask)
		tasks.POST("/:id/accept", h.Tasks.AcceptTask)
		tasks.POST("/:id/reject", h.Tasks.RejectTask)
		tasks.POST("/:id/complete", h.Tasks.CompleteTask)
		tasks.POST("/:id/cancel", h.Tasks.CancelTask)
	}

	timeOff := api.Group("/timeoff")
	{
		timeOff.GET("", h.TimeOff.GetRequests)
		timeOff.POST("", h.TimeOff.SubmitRequest)
		timeOff.GET("/driver-stats", h.TimeOff.GetStats)
		timeOff.GET("/:id", h.TimeOff.GetRequest)
		timeOff.PUT("/:id", h.TimeOff.UpdateRequest)
		timeOff.DELETE("/:id", h.TimeOff.DeleteRequest)
		timeOff.PUT("/:id/approve", h.TimeOff.ApproveRequest)
		timeOff.PUT("/:id/reject", h.TimeOff.RejectRequest)
	}

	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("", h.Vehicles.GetVehicles)
		vehicles.POST("", h.Vehicles.CreateVehicle)
		vehicles.GET("/:id", h.Vehicles.GetVehicle)
		vehicles.PUT("/:id", h.Vehicles.UpdateVehicle)
		vehicles.DELETE("/:id", h.Vehicles.DeleteVehicle)
		vehicles.PUT("/:id/mileage", h.Vehicles.UpdateMileage)
		vehicles.PUT("/:id/status", h.Vehicles.UpdateStatus)
		vehicles.PUT("/:id/assign", h.Vehicles.AssignDriver)
		vehicles.PUT("/:id/unassign", h.Vehicles.UnassignDriver)
	}

	deductions := api.Group("/deductions")
	{
		deductions.GET("", h.Deductions.GetDeductions)
		deductions.POST("", h.Deductions.CreateDeduction)
		deductions.GET("/summary", h.Deductions.GetSummary)
		deductions.GET("/:id", h.Deductions.GetDeduction)
		deductions.PUT("/:id", h.Deductions.UpdateDeduction)
		deductions.DELETE("/:id", h.Deductions.DeleteDeduction)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/driver-activity", h.Reports.GetDriverActivity)
		reports.GET("/weekly", h.Reports.GetWeeklyReport)
		reports.GET("/export/csv", h.Reports.ExportCSV)
		reports.GET("/export/xlsx", h.Reports.ExportXLSX)
		reports.GET("/export/pdf", h.Reports.ExportPDF)
	}

	ws := api.Group("/ws")
	{
		ws.GET("/events", h.Events.HandleEvents)
		ws.GET("/stats", h.Events.GetStats)
	}
}
