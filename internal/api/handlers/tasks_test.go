package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func taskRouter(actor models.Actor, svc *mockTaskService) *gin.Engine {
	h := NewTaskHandler(svc)
	router := newRouter(actor)
	router.GET("/tasks", h.GetTasks)
	router.GET("/tasks/today", h.GetTodayTasks)
	router.POST("/tasks", h.CreateTask)
	router.POST("/tasks/recurring", h.CreateRecurringTasks)
	router.DELETE("/tasks/:id", h.DeleteTask)
	router.POST("/tasks/:id/accept", h.AcceptTask)
	router.POST("/tasks/:id/cancel", h.CancelTask)
	return router
}

func TestCreateTask(t *testing.T) {
	svc := new(mockTaskService)
	created := &models.Task{ID: primitive.NewObjectID(), Title: "Morning route", Status: models.TaskPending}
	svc.On("Create", mock.Anything, adminActor, mock.MatchedBy(func(req *services.CreateTaskRequest) bool {
		return req.Title == "Morning route" && req.ScheduledDate == "2025-01-08" && req.Price == 120
	})).Return(created, nil)

	w := perform(taskRouter(adminActor, svc), http.MethodPost, "/tasks", map[string]interface{}{
		"title":         "Morning route",
		"scheduledDate": "2025-01-08",
		"price":         120,
	})

	assertStatus(t, w, http.StatusCreated)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Task created successfully", resp.Message)
	svc.AssertExpectations(t)
}

func TestCreateTask_MalformedBody(t *testing.T) {
	svc := new(mockTaskService)

	w := perform(taskRouter(adminActor, svc), http.MethodPost, "/tasks", "{not json")

	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_Unauthenticated(t *testing.T) {
	svc := new(mockTaskService)

	w := perform(taskRouter(models.Actor{}, svc), http.MethodGet, "/tasks", nil)

	assertStatus(t, w, http.StatusUnauthorized)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTasks_ParsesFilters(t *testing.T) {
	svc := new(mockTaskService)
	want := services.TaskQuery{
		StartDate:    "2025-01-06",
		EndDate:      "2025-01-12",
		Statuses:     []string{"PENDING", "ACCEPTED", "COMPLETED"},
		AssignedToID: driverActor.UserID.Hex(),
	}
	svc.On("List", mock.Anything, adminActor, want).Return([]*models.Task{}, nil)

	path := fmt.Sprintf("/tasks?startDate=2025-01-06&endDate=2025-01-12&status=PENDING,ACCEPTED&status=COMPLETED&assignedToId=%s",
		driverActor.UserID.Hex())
	w := perform(taskRouter(adminActor, svc), http.MethodGet, path, nil)

	assertStatus(t, w, http.StatusOK)
	svc.AssertExpectations(t)
}

func TestTaskTransition_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid transition", fmt.Errorf("%w: task is COMPLETED", models.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{"permission denied", fmt.Errorf("%w: not the assignee", models.ErrPermissionDenied), http.StatusForbidden, "PERMISSION_DENIED"},
		{"not found", fmt.Errorf("%w: task", models.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockTaskService)
			svc.On("Accept", mock.Anything, driverActor, "abc").Return(nil, tt.err)

			w := perform(taskRouter(driverActor, svc), http.MethodPost, "/tasks/abc/accept", nil)

			assertStatus(t, w, tt.status)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Nil(t, resp.Error)
			}
		})
	}
}

func TestCancelTask(t *testing.T) {
	svc := new(mockTaskService)
	cancelled := &models.Task{ID: primitive.NewObjectID(), Status: models.TaskCancelled}
	svc.On("Cancel", mock.Anything, driverActor, cancelled.ID.Hex()).Return(cancelled, nil)

	w := perform(taskRouter(driverActor, svc), http.MethodPost, "/tasks/"+cancelled.ID.Hex()+"/cancel", nil)

	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, "Task cancelled", decode(t, w).Message)
	svc.AssertExpectations(t)
}

func TestCreateRecurringTasks(t *testing.T) {
	body := map[string]interface{}{
		"title":     "Depot run",
		"startDate": "2025-01-06",
		"endDate":   "2025-01-12",
		"weekdays":  map[string]bool{"monday": true, "wednesday": true, "friday": true},
		"price":     80,
	}

	t.Run("all created", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("CreateRecurring", mock.Anything, adminActor, mock.Anything).
			Return(&services.RecurringResult{Requested: 3, Created: 3}, nil)

		w := perform(taskRouter(adminActor, svc), http.MethodPost, "/tasks/recurring", body)

		assertStatus(t, w, http.StatusCreated)
	})

	t.Run("partial failure", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("CreateRecurring", mock.Anything, adminActor, mock.Anything).
			Return(&services.RecurringResult{
				Requested: 3,
				Created:   2,
				Failed:    1,
				Errors:    []services.RecurringFailure{{Date: "2025-01-08", Error: "failed to create task"}},
			}, nil)

		w := perform(taskRouter(adminActor, svc), http.MethodPost, "/tasks/recurring", body)

		assertStatus(t, w, http.StatusMultiStatus)
		data := decode(t, w).Data.(map[string]interface{})
		assert.EqualValues(t, 2, data["created"])
		assert.EqualValues(t, 1, data["failed"])
	})

	t.Run("invalid range", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("CreateRecurring", mock.Anything, adminActor, mock.Anything).
			Return(nil, fmt.Errorf("%w: endDate before startDate", models.ErrValidation))

		w := perform(taskRouter(adminActor, svc), http.MethodPost, "/tasks/recurring", body)

		assertStatus(t, w, http.StatusBadRequest)
	})
}

func TestGetTodayTasks(t *testing.T) {
	svc := new(mockTaskService)
	svc.On("Today", mock.Anything, driverActor).Return([]*models.Task{{Title: "Today"}}, nil)

	w := perform(taskRouter(driverActor, svc), http.MethodGet, "/tasks/today", nil)

	assertStatus(t, w, http.StatusOK)
	assert.Len(t, decode(t, w).Data, 1)
}

func TestDeleteTask(t *testing.T) {
	svc := new(mockTaskService)
	svc.On("Delete", mock.Anything, adminActor, "t1").Return(nil)

	w := perform(taskRouter(adminActor, svc), http.MethodDelete, "/tasks/t1", nil)

	assertStatus(t, w, http.StatusOK)
	svc.AssertExpectations(t)
}
