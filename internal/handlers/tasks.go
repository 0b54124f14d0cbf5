package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

type taskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type tasksResponse struct {
	Tasks     []models.Task `json:"tasks"`
	Completed int           `json:"completedCount"`
	Pending   int           `json:"pendingCount"`
	Progress  int           `json:"progress"`
}

func (h *Handler) GetTasks(c echo.Context) error {
	list, _, err := h.listFor(c, c.Param("id"))
	if err != nil {
		return h.fail(c, failedLoad(err), err)
	}

	tasks, err := h.store.ListTasks(c.Request().Context(), list.ID)
	if err != nil {
		return h.fail(c, msgLoadTasks, err)
	}

	stats := models.StatsOf(tasks)
	return c.JSON(http.StatusOK, tasksResponse{
		Tasks:     tasks,
		Completed: stats.Completed,
		Pending:   stats.Pending(),
		Progress:  stats.Progress(),
	})
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, msgCreateTask, errBadRequest)
	}
	if strings.TrimSpace(req.Name) == "" {
		return h.fail(c, msgCreateTask, services.ErrEmptyName)
	}

	list, role, err := h.listFor(c, c.Param("id"))
	if err == nil {
		err = require(access.CanEdit(role))
	}
	if err != nil {
		return h.fail(c, msgCreateTask, err)
	}

	task, err := h.store.CreateTask(c.Request().Context(), list.ID, currentUser(c), req.Name, req.Description)
	if err != nil {
		return h.fail(c, msgCreateTask, err)
	}

	h.logger.Info("task_created", "list", list.ID, "task", task.ID)
	return c.JSON(http.StatusCreated, task)
}

// editableTask loads the task named by the id path parameter and checks that
// the caller may change it.
func (h *Handler) editableTask(c echo.Context) (*models.Task, error) {
	task, role, err := h.taskFor(c, c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := require(access.CanEdit(role)); err != nil {
		return nil, err
	}
	return task, nil
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, msgUpdateTask, errBadRequest)
	}
	if strings.TrimSpace(req.Name) == "" {
		return h.fail(c, msgUpdateTask, services.ErrEmptyName)
	}

	task, err := h.editableTask(c)
	if err == nil {
		err = h.store.UpdateTask(c.Request().Context(), task.ID, req.Name, req.Description)
	}
	if err != nil {
		return h.fail(c, msgUpdateTask, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleTask(c echo.Context) error {
	task, err := h.editableTask(c)
	if err != nil {
		return h.fail(c, msgUpdateTask, err)
	}

	toggled, err := h.store.ToggleTask(c.Request().Context(), task.ID)
	if err != nil {
		return h.fail(c, msgUpdateTask, err)
	}
	return c.JSON(http.StatusOK, toggled)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	task, err := h.editableTask(c)
	if err == nil {
		err = h.store.DeleteTask(c.Request().Context(), task.ID)
	}
	if err != nil {
		return h.fail(c, msgDeleteTask, err)
	}

	h.logger.Info("task_deleted", "list", task.ListID, "task", task.ID)
	return c.NoContent(http.StatusNoContent)
}
