package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/auth"
	"github.com/ytakahashi/shared-todo/internal/live"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

// Store is the persistence the handlers need. *services.FirestoreService satisfies it.
type Store interface {
	CreateList(ctx context.Context, owner models.User, name string) (*models.TodoList, error)
	GetList(ctx context.Context, listID string) (*models.TodoList, error)
	VisibleLists(ctx context.Context, user models.User) ([]models.TodoList, error)
	RenameList(ctx context.Context, listID, name string) error
	DeleteList(ctx context.Context, listID string) (int, error)

	AddCollaborator(ctx context.Context, listID string, c models.Collaborator) error
	UpdateCollaboratorRole(ctx context.Context, listID, email string, role models.Role) error
	RemoveCollaborator(ctx context.Context, listID string, c models.Collaborator) error

	CreateTask(ctx context.Context, listID string, creator models.User, name, description string) (*models.Task, error)
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	ListTasks(ctx context.Context, listID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, taskID, name, description string) error
	ToggleTask(ctx context.Context, taskID string) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// Backend is a Store that can also feed live sessions.
type Backend interface {
	Store
	live.Source
}

// User-facing failure messages. Causes are logged, never returned.
const (
	msgCreateList             = "Failed to create list"
	msgUpdateList             = "Failed to update list"
	msgDeleteList             = "Failed to delete list"
	msgLoadLists              = "Failed to load lists"
	msgAddCollaborator        = "Failed to add collaborator"
	msgUpdateCollaboratorRole = "Failed to update collaborator role"
	msgRemoveCollaborator     = "Failed to remove collaborator"
	msgCreateTask             = "Failed to create task"
	msgUpdateTask             = "Failed to update task"
	msgDeleteTask             = "Failed to delete task"
	msgLoadTasks              = live.MsgTasksLoadFailed
	msgSignIn                 = "Failed to sign in"
)

var (
	errForbidden  = errors.New("role does not allow this action")
	errBadRequest = errors.New("malformed request")
)

type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
}

type Handler struct {
	store  Backend
	auth   *auth.Authenticator
	logger *slog.Logger
	opts   Options
}

func NewHandler(store Backend, authenticator *auth.Authenticator, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		auth:   authenticator,
		logger: logger,
		opts:   opts,
	}
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	e.Use(h.auth.Identify())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/", h.Home)
	e.GET("/dashboard", h.DashboardPage, auth.RequirePage)
	e.GET("/lists/:id", h.ListPage, auth.RequirePage)

	e.POST("/auth/session", h.CreateSession)
	e.POST("/auth/signout", h.SignOut)

	api := e.Group("/api", auth.RequireUser)
	api.GET("/me", h.Me)

	api.GET("/lists", h.GetLists)
	api.POST("/lists", h.CreateList)
	api.GET("/lists/:id", h.GetList)
	api.PATCH("/lists/:id", h.RenameList)
	api.DELETE("/lists/:id", h.DeleteList)

	api.POST("/lists/:id/collaborators", h.AddCollaborator)
	api.PUT("/lists/:id/collaborators/:email", h.UpdateCollaboratorRole)
	api.DELETE("/lists/:id/collaborators", h.RemoveCollaborator)

	api.GET("/lists/:id/tasks", h.GetTasks)
	api.POST("/lists/:id/tasks", h.CreateTask)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.POST("/tasks/:id/toggle", h.ToggleTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	ws := e.Group("/ws", auth.RequireUser)
	ws.GET("/dashboard", h.DashboardSocket)
	ws.GET("/lists/:id", h.ListSocket)
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, services.ErrEmptyName),
		errors.Is(err, services.ErrEmptyEmail),
		errors.Is(err, models.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrListNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, models.ErrCollaboratorNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCollaboratorExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail answers with the operation's generic message and logs the cause.
func (h *Handler) fail(c echo.Context, msg string, err error) error {
	code := statusFor(err)
	attrs := []any{"path", c.Path(), "status", code, "error", err}
	if user, ok := auth.UserFrom(c); ok {
		attrs = append(attrs, "user", user.ID)
	}

	if code >= http.StatusInternalServerError {
		h.logger.Error(msg, attrs...)
	} else {
		h.logger.Info(msg, attrs...)
	}
	return c.JSON(code, errorResponse{Error: msg})
}

func currentUser(c echo.Context) models.User {
	user, _ := auth.UserFrom(c)
	return user
}

// listFor loads a list and the caller's role on it. Lists the caller cannot
// see are reported as missing.
func (h *Handler) listFor(c echo.Context, listID string) (*models.TodoList, models.Role, error) {
	user := currentUser(c)
	list, err := h.store.GetList(c.Request().Context(), listID)
	if err != nil {
		return nil, "", err
	}
	if !access.IsMember(*list, user) {
		return nil, "", services.ErrListNotFound
	}
	return list, access.ResolveRole(*list, user), nil
}

// taskFor loads a task and the caller's role on the list that holds it.
func (h *Handler) taskFor(c echo.Context, taskID string) (*models.Task, models.Role, error) {
	task, err := h.store.GetTask(c.Request().Context(), taskID)
	if err != nil {
		return nil, "", err
	}
	_, role, err := h.listFor(c, task.ListID)
	if errors.Is(err, services.ErrListNotFound) {
		return nil, "", services.ErrTaskNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return task, role, nil
}

func require(allowed bool) error {
	if !allowed {
		return errForbidden
	}
	return nil
}
