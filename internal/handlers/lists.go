package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/live"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

type listRequest struct {
	Name string `json:"name"`
}

type listResponse struct {
	models.TodoList
	Role              models.Role `json:"role"`
	CanEdit           bool        `json:"canEdit"`
	CollaboratorCount int         `json:"collaboratorCount"`
}

func newListResponse(list models.TodoList, role models.Role) listResponse {
	return listResponse{
		TodoList:          list,
		Role:              role,
		CanEdit:           access.CanEdit(role),
		CollaboratorCount: access.CollaboratorCount(list),
	}
}

func (h *Handler) GetLists(c echo.Context) error {
	user := currentUser(c)
	lists, err := h.store.VisibleLists(c.Request().Context(), user)
	if err != nil {
		return h.fail(c, msgLoadLists, err)
	}

	resp := make([]listResponse, 0, len(lists))
	for _, list := range lists {
		resp = append(resp, newListResponse(list, access.ResolveRole(list, user)))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateList(c echo.Context) error {
	var req listRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, msgCreateList, errBadRequest)
	}
	// Blank names never reach the store.
	if strings.TrimSpace(req.Name) == "" {
		return h.fail(c, msgCreateList, services.ErrEmptyName)
	}

	list, err := h.store.CreateList(c.Request().Context(), currentUser(c), req.Name)
	if err != nil {
		return h.fail(c, msgCreateList, err)
	}

	h.logger.Info("list_created", "list", list.ID, "user", list.OwnerID)
	return c.JSON(http.StatusCreated, newListResponse(*list, models.RoleOwner))
}

func (h *Handler) GetList(c echo.Context) error {
	list, role, err := h.listFor(c, c.Param("id"))
	if err != nil {
		return h.fail(c, failedLoad(err), err)
	}
	return c.JSON(http.StatusOK, newListResponse(*list, role))
}

func (h *Handler) RenameList(c echo.Context) error {
	var req listRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, msgUpdateList, errBadRequest)
	}
	if strings.TrimSpace(req.Name) == "" {
		return h.fail(c, msgUpdateList, services.ErrEmptyName)
	}

	list, role, err := h.listFor(c, c.Param("id"))
	if err == nil {
		err = require(access.CanEdit(role))
	}
	if err == nil {
		err = h.store.RenameList(c.Request().Context(), list.ID, req.Name)
	}
	if err != nil {
		return h.fail(c, msgUpdateList, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteList(c echo.Context) error {
	list, role, err := h.listFor(c, c.Param("id"))
	if err == nil {
		err = require(access.CanDelete(role))
	}
	if err != nil {
		return h.fail(c, msgDeleteList, err)
	}

	deleted, err := h.store.DeleteList(c.Request().Context(), list.ID)
	if err != nil {
		return h.fail(c, msgDeleteList, err)
	}

	h.logger.Info("list_deleted", "list", list.ID, "tasks", deleted)
	return c.JSON(http.StatusOK, map[string]int{"deletedTasks": deleted})
}

// failedLoad picks the message for a failed list read.
func failedLoad(err error) string {
	if statusFor(err) == http.StatusNotFound {
		return live.MsgListNotFound
	}
	return live.MsgListLoadFailed
}
