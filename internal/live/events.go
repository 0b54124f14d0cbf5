// Package live keeps per-connection views of lists and tasks current by
// following backend snapshot listeners.
package live

import (
	"context"

	"github.com/ytakahashi/shared-todo/internal/models"
)

const (
	MsgListNotFound    = "List not found"
	MsgListLoadFailed  = "Failed to load list"
	MsgListsLoadFailed = "Failed to load lists"
	MsgTasksLoadFailed = "Failed to load tasks"
)

// Source is the backend a session reads from. Watch methods block until ctx
// is done and deliver the complete current state on every change.
type Source interface {
	GetList(ctx context.Context, listID string) (*models.TodoList, error)
	WatchLists(ctx context.Context, user models.User, fn func([]models.TodoList)) error
	WatchList(ctx context.Context, listID string, fn func(*models.TodoList)) error
	WatchTasks(ctx context.Context, listID string, fn func([]models.Task)) error
}

type EventType string

const (
	EventDashboard EventType = "dashboard"
	EventList      EventType = "list"
	EventError     EventType = "error"
)

// Event is one state push to a client. Data holds a DashboardView, a
// DetailView or an ErrorData depending on Type.
type Event struct {
	Type EventType
	Data any
}

type ErrorData struct {
	Message string `json:"message"`
}

type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

func errorEvent(msg string) Event {
	return Event{Type: EventError, Data: ErrorData{Message: msg}}
}

// ListSummary is one card on the dashboard. TasksLoaded is false until the
// first task snapshot arrives and again after the task watch fails.
type ListSummary struct {
	List              models.TodoList  `json:"list"`
	Role              models.Role      `json:"role"`
	CollaboratorCount int              `json:"collaboratorCount"`
	TasksLoaded       bool             `json:"tasksLoaded"`
	Stats             models.TaskStats `json:"stats"`
	Progress          int              `json:"progress"`
}

type DashboardView struct {
	Lists    []ListSummary    `json:"lists"`
	Selected *models.TodoList `json:"selected,omitempty"`
}

// DetailView is the state of one open list.
type DetailView struct {
	List      models.TodoList  `json:"list"`
	Role      models.Role      `json:"role"`
	CanEdit   bool             `json:"canEdit"`
	Tasks     []models.Task    `json:"tasks"`
	Stats     models.TaskStats `json:"stats"`
	Completed int              `json:"completedCount"`
	Pending   int              `json:"pendingCount"`
}
