package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-registry-service/internal/domain/task"
	"user-registry-service/internal/usecase/task"
)

// TaskUsecase is the task behavior the handler depends on.
type TaskUsecase interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, in task.CreateTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, in task.UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// TaskHandler serves the /tasks resource.
type TaskHandler struct {
	uc  TaskUsecase
	log *zap.Logger
}

func NewTaskHandler(uc TaskUsecase, log *zap.Logger) *TaskHandler {
	return &TaskHandler{uc: uc, log: log}
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// ListTasks handles GET /tasks. The body is a bare array.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.uc.ListTasks(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	t, err := h.uc.GetTask(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "request body must be a JSON object with a title", err)
		return
	}

	t, err := h.uc.CreateTask(c.Request.Context(), task.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "request body must be a JSON object", err)
		return
	}

	t, err := h.uc.UpdateTask(c.Request.Context(), task.UpdateTaskRequest{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/:id with an empty 204.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := pathID(c, h.log)
	if !ok {
		return
	}
	if err := h.uc.DeleteTask(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
