package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

type collaboratorRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// ownedList loads the list named by the id path parameter and checks that
// the caller may manage its collaborators.
func (h *Handler) ownedList(c echo.Context) (*models.TodoList, error) {
	list, role, err := h.listFor(c, c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := require(access.CanManageCollaborators(role)); err != nil {
		return nil, err
	}
	return list, nil
}

func (h *Handler) AddCollaborator(c echo.Context) error {
	var req collaboratorRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, msgAddCollaborator, errBadRequest)
	}
	role, err := models.ParseCollaboratorRole(req.Role)
	if err != nil {
		return h.fail(c, msgAddCollaborator, err)
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return h.fail(c, msgAddCollaborator, services.ErrEmptyEmail)
	}

	list, err := h.ownedList(c)
	if err != nil {
		return h.fail(c, msgAddCollaborator, err)
	}

	collab := models.Collaborator{Email: email, Role: role}
	if err := h.store.AddCollaborator(c.Request().Context(), list.ID, collab); err != nil {
		return h.fail(c, msgAddCollaborator, err)
	}

	h.logger.Info("collaborator_added", "list", list.ID, "role", role)
	return c.JSON(http.StatusCreated, collab)
}

func (h *Handler) UpdateCollaboratorRole(c echo.Context) error {
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil || email == "" {
		return h.fail(c, msgUpdateCollaboratorRole, errBadRequest)
	}

	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, msgUpdateCollaboratorRole, errBadRequest)
	}
	role, err := models.ParseCollaboratorRole(req.Role)
	if err != nil {
		return h.fail(c, msgUpdateCollaboratorRole, err)
	}

	list, err := h.ownedList(c)
	if err != nil {
		return h.fail(c, msgUpdateCollaboratorRole, err)
	}
	if err := h.store.UpdateCollaboratorRole(c.Request().Context(), list.ID, email, role); err != nil {
		return h.fail(c, msgUpdateCollaboratorRole, err)
	}

	h.logger.Info("collaborator_role_updated", "list", list.ID, "role", role)
	return c.JSON(http.StatusOK, models.Collaborator{Email: email, Role: role})
}

// RemoveCollaborator removes the exact email and role pair sent in the body.
func (h *Handler) RemoveCollaborator(c echo.Context) error {
	var req collaboratorRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return h.fail(c, msgRemoveCollaborator, errBadRequest)
	}

	list, err := h.ownedList(c)
	if err != nil {
		return h.fail(c, msgRemoveCollaborator, err)
	}

	collab := models.Collaborator{Email: req.Email, Role: models.Role(req.Role)}
	if err := h.store.RemoveCollaborator(c.Request().Context(), list.ID, collab); err != nil {
		return h.fail(c, msgRemoveCollaborator, err)
	}

	h.logger.Info("collaborator_removed", "list", list.ID)
	return c.NoContent(http.StatusNoContent)
}
