// Package http provides HTTP handlers for task operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/notehub/internal/auth/http"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/httputil"
	taskDomain "github.com/allisson/notehub/internal/task/domain"
	"github.com/allisson/notehub/internal/task/http/dto"
	"github.com/allisson/notehub/internal/task/repository"
	taskUsecase "github.com/allisson/notehub/internal/task/usecase"
	customValidation "github.com/allisson/notehub/internal/validation"
)

// TaskHandler handles HTTP requests for the caller's private tasks.
type TaskHandler struct {
	taskUseCase taskUsecase.UseCase
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskUseCase taskUsecase.UseCase, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskUseCase: taskUseCase,
		logger:      logger,
	}
}

func (h *TaskHandler) identityID(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}
	return identity.ID, true
}

func (h *TaskHandler) taskID(c *gin.Context) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid task ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return taskID, true
}

// CreateHandler creates a new task for the caller.
// POST /v1/tasks - Requires an authenticated session.
// Returns 201 Created with the task.
func (h *TaskHandler) CreateHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	task, err := h.taskUseCase.Create(c.Request.Context(), ownerID, taskUsecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    taskDomain.Priority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTaskToResponse(task, time.Now()))
}

// GetHandler retrieves one of the caller's tasks.
// GET /v1/tasks/:id - Requires an authenticated session.
func (h *TaskHandler) GetHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskUseCase.Get(c.Request.Context(), ownerID, taskID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTaskToResponse(task, time.Now()))
}

// UpdateHandler modifies one of the caller's tasks.
// PUT /v1/tasks/:id - Requires an authenticated session.
func (h *TaskHandler) UpdateHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	task, err := h.taskUseCase.Update(c.Request.Context(), ownerID, taskID, taskUsecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    taskDomain.Priority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTaskToResponse(task, time.Now()))
}

// DeleteHandler removes one of the caller's tasks.
// DELETE /v1/tasks/:id - Requires an authenticated session.
func (h *TaskHandler) DeleteHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	if err := h.taskUseCase.Delete(c.Request.Context(), ownerID, taskID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler retrieves the caller's tasks.
// GET /v1/tasks?status= - Requires an authenticated session.
func (h *TaskHandler) ListHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	tasks, err := h.taskUseCase.List(c.Request.Context(), ownerID, taskUsecase.ListTasksInput{
		Status: repository.StatusFilter(c.DefaultQuery("status", string(repository.StatusAll))),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	now := time.Now()
	responses := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, dto.MapTaskToResponse(task, now))
	}

	c.JSON(http.StatusOK, dto.ListTasksResponse{
		Tasks:  responses,
		Offset: offset,
		Limit:  limit,
	})
}

// ToggleCompleteHandler flips a task's completion state.
// POST /v1/tasks/:id/complete - Requires an authenticated session.
func (h *TaskHandler) ToggleCompleteHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskUseCase.ToggleComplete(c.Request.Context(), ownerID, taskID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTaskToResponse(task, time.Now()))
}

// CountsHandler aggregates the caller's task counters.
// GET /v1/tasks/counts - Requires an authenticated session.
func (h *TaskHandler) CountsHandler(c *gin.Context) {
	ownerID, ok := h.identityID(c)
	if !ok {
		return
	}

	counts, err := h.taskUseCase.Counts(c.Request.Context(), ownerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCountsToResponse(counts))
}
