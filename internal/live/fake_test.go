package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

// fakeSource feeds snapshots from channels so tests control exactly when
// the backend "changes".
type fakeSource struct {
	mu        sync.Mutex
	docs      map[string]models.TodoList
	getErr    error
	listsErr  error
	getCalls  int
	listCalls int

	lists chan []models.TodoList
	list  chan *models.TodoList

	taskFeeds   map[string]chan []models.Task
	taskFails   map[string]chan error
	taskStarts  map[string]int
	taskRunning map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		docs:        make(map[string]models.TodoList),
		lists:       make(chan []models.TodoList),
		list:        make(chan *models.TodoList),
		taskFeeds:   make(map[string]chan []models.Task),
		taskFails:   make(map[string]chan error),
		taskStarts:  make(map[string]int),
		taskRunning: make(map[string]int),
	}
}

func (f *fakeSource) GetList(ctx context.Context, listID string) (*models.TodoList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	l, ok := f.docs[listID]
	if !ok {
		return nil, services.ErrListNotFound
	}
	return &l, nil
}

func (f *fakeSource) WatchLists(ctx context.Context, user models.User, fn func([]models.TodoList)) error {
	if f.listsErr != nil {
		return f.listsErr
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case lists := <-f.lists:
			fn(lists)
		}
	}
}

func (f *fakeSource) WatchList(ctx context.Context, listID string, fn func(*models.TodoList)) error {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case l := <-f.list:
			fn(l)
		}
	}
}

func (f *fakeSource) WatchTasks(ctx context.Context, listID string, fn func([]models.Task)) error {
	feed := f.taskFeed(listID)
	fail := f.taskFail(listID)

	f.mu.Lock()
	f.taskStarts[listID]++
	f.taskRunning[listID]++
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.taskRunning[listID]--
		f.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case tasks := <-feed:
			fn(tasks)
		case err := <-fail:
			return err
		}
	}
}

func (f *fakeSource) taskFeed(listID string) chan []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed, ok := f.taskFeeds[listID]
	if !ok {
		feed = make(chan []models.Task)
		f.taskFeeds[listID] = feed
	}
	return feed
}

// taskFail returns the channel that ends the task watch of listID with an error.
func (f *fakeSource) taskFail(listID string) chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fail, ok := f.taskFails[listID]
	if !ok {
		fail = make(chan error)
		f.taskFails[listID] = fail
	}
	return fail
}

func (f *fakeSource) running(listID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskRunning[listID]
}

func (f *fakeSource) starts(listID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskStarts[listID]
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// errors returns the messages of every published error event.
func (r *recorder) errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var msgs []string
	for _, e := range r.events {
		if data, ok := e.Data.(ErrorData); ok && e.Type == EventError {
			msgs = append(msgs, data.Message)
		}
	}
	return msgs
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func send[T any](t *testing.T, ch chan T, v T) {
	t.Helper()
	select {
	case ch <- v:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out delivering snapshot")
	}
}
