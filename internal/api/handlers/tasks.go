package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

// TaskService is the part of services.TaskService the handler uses.
type TaskService interface {
	Create(ctx context.Context, actor models.Actor, req *services.CreateTaskRequest) (*models.Task, error)
	CreateRecurring(ctx context.Context, actor models.Actor, req *services.CreateRecurringRequest) (*services.RecurringResult, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Task, error)
	List(ctx context.Context, actor models.Actor, q services.TaskQuery) ([]*models.Task, error)
	Today(ctx context.Context, actor models.Actor) ([]*models.Task, error)
	Update(ctx context.Context, actor models.Actor, id string, req *services.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Accept(ctx context.Context, actor models.Actor, id string) (*models.Task, error)
	Reject(ctx context.Context, actor models.Actor, id string) (*models.Task, error)
	Complete(ctx context.Context, actor models.Actor, id string) (*models.Task, error)
	Cancel(ctx context.Context, actor models.Actor, id string) (*models.Task, error)
}

type TaskHandler struct {
	taskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasks lists tasks filtered by startDate, endDate, status and assignedToId.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	tasks, err := h.taskService.List(c.Request.Context(), actor, services.TaskQuery{
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
		Statuses:     queryList(c, "status"),
		AssignedToID: c.Query("assignedToId"),
		Unassigned:   c.Query("unassigned") == "true",
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *TaskHandler) GetTodayTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	tasks, err := h.taskService.Today(c.Request.Context(), actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Task retrieved successfully", task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Task created successfully", task)
}

// CreateRecurringTasks answers 201 when every date was created and 207 when
// some failed.
func (h *TaskHandler) CreateRecurringTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.CreateRecurringRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.taskService.CreateRecurring(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	status, message := http.StatusCreated, "Recurring tasks created successfully"
	if result.Failed > 0 {
		status, message = http.StatusMultiStatus, "Some recurring tasks could not be created"
	}
	utils.SuccessResponse(c, status, message, result)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) AcceptTask(c *gin.Context) {
	h.transition(c, h.taskService.Accept, "Task accepted")
}

func (h *TaskHandler) RejectTask(c *gin.Context) {
	h.transition(c, h.taskService.Reject, "Task rejected")
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.transition(c, h.taskService.Complete, "Task completed")
}

func (h *TaskHandler) CancelTask(c *gin.Context) {
	h.transition(c, h.taskService.Cancel, "Task cancelled")
}

type transitionFunc func(ctx context.Context, actor models.Actor, id string) (*models.Task, error)

func (h *TaskHandler) transition(c *gin.Context, fn transitionFunc, message string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	task, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, task)
}
