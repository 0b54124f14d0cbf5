package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
	"golang.org/x/sync/errgroup"
)

// Detail follows one list document and its tasks for one user.
type Detail struct {
	src    Source
	listID string
	user   models.User
	pub    Publisher
	logger *slog.Logger

	pubMu sync.Mutex

	mu    sync.Mutex
	list  models.TodoList
	tasks []models.Task
}

func NewDetail(src Source, listID string, user models.User, pub Publisher, logger *slog.Logger) *Detail {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detail{
		src:    src,
		listID: listID,
		user:   user,
		pub:    pub,
		logger: logger.With("user", user.ID, "list", listID),
		tasks:  []models.Task{},
	}
}

// Run checks once that the list exists and is visible to the user, then
// follows the list and its tasks until ctx is done. It returns
// services.ErrListNotFound when the list is missing, deleted while open, or
// no longer shared with the user.
func (d *Detail) Run(ctx context.Context) error {
	list, err := d.src.GetList(ctx, d.listID)
	if err == nil && !access.IsMember(*list, d.user) {
		err = services.ErrListNotFound
	}
	if err != nil {
		return d.fail(err)
	}

	d.mu.Lock()
	d.list = *list
	d.mu.Unlock()
	d.publish()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wctx, cancel := context.WithCancel(gctx)
		defer cancel()

		var gone atomic.Bool
		err := d.src.WatchList(wctx, d.listID, func(l *models.TodoList) {
			if l == nil || !access.IsMember(*l, d.user) {
				gone.Store(true)
				cancel()
				return
			}
			d.mu.Lock()
			d.list = *l
			d.mu.Unlock()
			d.publish()
		})
		if gone.Load() {
			return services.ErrListNotFound
		}
		return err
	})

	g.Go(func() error {
		return d.src.WatchTasks(gctx, d.listID, func(tasks []models.Task) {
			sorted := append([]models.Task(nil), tasks...)
			models.SortTasksNewestFirst(sorted)

			d.mu.Lock()
			d.tasks = sorted
			d.mu.Unlock()
			d.publish()
		})
	})

	if err := g.Wait(); err != nil {
		return d.fail(err)
	}
	return nil
}

func (d *Detail) fail(err error) error {
	if errors.Is(err, services.ErrListNotFound) {
		d.logger.Info("list_not_found")
		d.pub.Publish(errorEvent(MsgListNotFound))
		return err
	}
	d.logger.Error("list_watch_failed", "error", err)
	d.pub.Publish(errorEvent(MsgListLoadFailed))
	return err
}

// View returns the current state of the open list.
func (d *Detail) View() DetailView {
	d.mu.Lock()
	defer d.mu.Unlock()

	role := access.ResolveRole(d.list, d.user)
	tasks := append([]models.Task{}, d.tasks...)
	completed, pending := models.PartitionTasks(tasks)

	return DetailView{
		List:      d.list,
		Role:      role,
		CanEdit:   access.CanEdit(role),
		Tasks:     tasks,
		Stats:     models.StatsOf(tasks),
		Completed: len(completed),
		Pending:   len(pending),
	}
}

func (d *Detail) publish() {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	d.pub.Publish(Event{Type: EventList, Data: d.View()})
}
