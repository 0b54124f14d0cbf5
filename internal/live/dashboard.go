package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/models"
)

// Dashboard follows every list visible to one user plus the task counts of each.
type Dashboard struct {
	src    Source
	user   models.User
	pub    Publisher
	logger *slog.Logger
	tasks  *Supervisor

	// pubMu orders publishes so a client never receives an older view after a newer one.
	pubMu sync.Mutex

	mu       sync.Mutex
	lists    []models.TodoList
	stats    map[string]models.TaskStats
	selected *models.TodoList
}

func NewDashboard(src Source, user models.User, pub Publisher, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dashboard{
		src:    src,
		user:   user,
		pub:    pub,
		logger: logger.With("user", user.ID),
		stats:  make(map[string]models.TaskStats),
	}
	d.tasks = NewSupervisor(d.watchTasks, d.logger)
	return d
}

// Run blocks until ctx is done or the list listener fails.
func (d *Dashboard) Run(ctx context.Context) error {
	defer d.tasks.Stop()

	err := d.src.WatchLists(ctx, d.user, func(lists []models.TodoList) {
		d.applyLists(ctx, lists)
	})
	if err != nil {
		d.logger.Error("lists_watch_failed", "error", err)
		d.publishError(MsgListsLoadFailed)
		return err
	}
	return nil
}

// applyLists replaces the whole list set with a new snapshot.
func (d *Dashboard) applyLists(ctx context.Context, lists []models.TodoList) {
	ids := make([]string, len(lists))
	present := make(map[string]struct{}, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
		present[l.ID] = struct{}{}
	}

	d.mu.Lock()
	d.lists = lists
	for id := range d.stats {
		if _, ok := present[id]; !ok {
			delete(d.stats, id)
		}
	}
	if d.selected != nil {
		d.selected = findList(lists, d.selected.ID)
	}
	d.mu.Unlock()

	started, stopped := d.tasks.Reconcile(ctx, ids)
	if len(started) > 0 || len(stopped) > 0 {
		d.logger.Debug("task_watches_reconciled", "started", len(started), "stopped", len(stopped))
	}

	d.publish()
}

func (d *Dashboard) watchTasks(ctx context.Context, listID string) error {
	err := d.src.WatchTasks(ctx, listID, func(tasks []models.Task) {
		d.mu.Lock()
		if findList(d.lists, listID) == nil {
			d.mu.Unlock()
			return
		}
		d.stats[listID] = models.StatsOf(tasks)
		d.mu.Unlock()

		d.publish()
	})
	if err != nil && ctx.Err() == nil {
		// Counts are no longer followed; stop presenting them as current.
		d.mu.Lock()
		delete(d.stats, listID)
		d.mu.Unlock()

		d.publish()
		d.publishError(MsgTasksLoadFailed)
	}
	return err
}

// Select marks a list as the one whose collaborators are being managed. The
// selection is refreshed from every later snapshot. It reports false when the
// list is not currently visible.
func (d *Dashboard) Select(listID string) bool {
	d.mu.Lock()
	if listID == "" {
		d.selected = nil
		d.mu.Unlock()
		d.publish()
		return true
	}
	list := findList(d.lists, listID)
	if list == nil {
		d.mu.Unlock()
		return false
	}
	d.selected = list
	d.mu.Unlock()

	d.publish()
	return true
}

// View returns the current dashboard state.
func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := DashboardView{Lists: make([]ListSummary, 0, len(d.lists))}
	for _, l := range d.lists {
		stats, loaded := d.stats[l.ID]
		view.Lists = append(view.Lists, ListSummary{
			List:              l,
			Role:              access.ResolveRole(l, d.user),
			CollaboratorCount: access.CollaboratorCount(l),
			TasksLoaded:       loaded,
			Stats:             stats,
			Progress:          stats.Progress(),
		})
	}
	if d.selected != nil {
		selected := *d.selected
		view.Selected = &selected
	}
	return view
}

// TaskWatches returns the list ids with a running task watch.
func (d *Dashboard) TaskWatches() []string {
	return d.tasks.Active()
}

func (d *Dashboard) publish() {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	view := d.View()
	d.pub.Publish(Event{Type: EventDashboard, Data: view})
}

func (d *Dashboard) publishError(msg string) {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	d.pub.Publish(errorEvent(msg))
}

func findList(lists []models.TodoList, id string) *models.TodoList {
	for i := range lists {
		if lists[i].ID == id {
			l := lists[i]
			return &l
		}
	}
	return nil
}
