package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/service"
)

// TaskHandler serves /api/tasks.  Every route runs behind JWTAuth and acts
// only on the caller's own tasks.
type TaskHandler struct {
	Tasks *service.TaskService
}

func NewTaskHandler(t *service.TaskService) *TaskHandler {
	return &TaskHandler{Tasks: t}
}

type createTaskReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// Omitted and null fields both decode to nil and are left unchanged.
type updateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func taskNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "Task not found"})
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(c echo.Context) error {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tasks, err := h.Tasks.List(ctx, ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := h.Tasks.Create(ctx, ownerID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// Get handles GET /api/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseTaskID(c)
	if !ok {
		return taskNotFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := h.Tasks.Get(ctx, ownerID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PUT /api/tasks/:id with a partial body.
func (h *TaskHandler) Update(c echo.Context) error {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseTaskID(c)
	if !ok {
		return taskNotFound(c)
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := h.Tasks.Update(ctx, ownerID, id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseTaskID(c)
	if !ok {
		return taskNotFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Tasks.Delete(ctx, ownerID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Complete handles PATCH /api/tasks/:id/complete.
func (h *TaskHandler) Complete(c echo.Context) error {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseTaskID(c)
	if !ok {
		return taskNotFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := h.Tasks.Complete(ctx, ownerID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}
