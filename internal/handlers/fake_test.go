package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

// fakeStore keeps lists and tasks in memory and counts writes.
type fakeStore struct {
	mu     sync.Mutex
	lists  map[string]models.TodoList
	tasks  map[string]models.Task
	seq    int
	writes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists: map[string]models.TodoList{},
		tasks: map[string]models.Task{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeStore) list(id string) models.TodoList {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[id]
}

func (f *fakeStore) CreateList(_ context.Context, owner models.User, name string) (*models.TodoList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.ErrEmptyName
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	list := models.TodoList{
		ID:            f.nextID("list-"),
		Name:          name,
		OwnerID:       owner.ID,
		CreatedAt:     time.Now(),
		Collaborators: []models.Collaborator{},
	}
	f.lists[list.ID] = list
	return &list, nil
}

func (f *fakeStore) GetList(_ context.Context, listID string) (*models.TodoList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[listID]
	if !ok {
		return nil, services.ErrListNotFound
	}
	list.Collaborators = append([]models.Collaborator{}, list.Collaborators...)
	return &list, nil
}

func (f *fakeStore) VisibleLists(_ context.Context, user models.User) ([]models.TodoList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TodoList
	for _, list := range f.lists {
		if access.IsMember(list, user) {
			out = append(out, list)
		}
	}
	return out, nil
}

func (f *fakeStore) RenameList(_ context.Context, listID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[listID]
	if !ok {
		return services.ErrListNotFound
	}
	f.writes++
	list.Name = strings.TrimSpace(name)
	f.lists[listID] = list
	return nil
}

func (f *fakeStore) DeleteList(_ context.Context, listID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	deleted := 0
	for id, task := range f.tasks {
		if task.ListID == listID {
			delete(f.tasks, id)
			deleted++
		}
	}
	delete(f.lists, listID)
	return deleted, nil
}

func (f *fakeStore) AddCollaborator(_ context.Context, listID string, c models.Collaborator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[listID]
	if !ok {
		return services.ErrListNotFound
	}
	if _, exists := models.FindCollaborator(list.Collaborators, c.Email); exists {
		return services.ErrCollaboratorExists
	}
	f.writes++
	list.Collaborators = append(list.Collaborators, c)
	f.lists[listID] = list
	return nil
}

func (f *fakeStore) UpdateCollaboratorRole(_ context.Context, listID, email string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[listID]
	if !ok {
		return services.ErrListNotFound
	}
	collabs, err := models.ReplaceCollaboratorRole(list.Collaborators, email, role)
	if err != nil {
		return err
	}
	f.writes++
	list.Collaborators = collabs
	f.lists[listID] = list
	return nil
}

func (f *fakeStore) RemoveCollaborator(_ context.Context, listID string, c models.Collaborator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[listID]
	if !ok {
		return services.ErrListNotFound
	}
	f.writes++
	list.Collaborators = models.RemoveCollaboratorValue(list.Collaborators, c)
	f.lists[listID] = list
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, listID string, creator models.User, name, description string) (*models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.ErrEmptyName
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	task := models.Task{
		ID:          f.nextID("task-"),
		ListID:      listID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
		CreatedBy:   creator.ID,
	}
	f.tasks[task.ID] = task
	return &task, nil
}

func (f *fakeStore) GetTask(_ context.Context, taskID string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	return &task, nil
}

func (f *fakeStore) ListTasks(_ context.Context, listID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Task{}
	for _, task := range f.tasks {
		if task.ListID == listID {
			out = append(out, task)
		}
	}
	models.SortTasksNewestFirst(out)
	return out, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, taskID, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return services.ErrTaskNotFound
	}
	f.writes++
	task.Name = strings.TrimSpace(name)
	task.Description = strings.TrimSpace(description)
	f.tasks[taskID] = task
	return nil
}

func (f *fakeStore) ToggleTask(_ context.Context, taskID string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	f.writes++
	task.Completed = !task.Completed
	f.tasks[taskID] = task
	return &task, nil
}

func (f *fakeStore) DeleteTask(_ context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	delete(f.tasks, taskID)
	return nil
}

// The watch methods deliver the current state once and then idle until
// the session ends.

func (f *fakeStore) WatchLists(ctx context.Context, user models.User, fn func([]models.TodoList)) error {
	lists, _ := f.VisibleLists(ctx, user)
	fn(lists)
	<-ctx.Done()
	return nil
}

func (f *fakeStore) WatchList(ctx context.Context, listID string, fn func(*models.TodoList)) error {
	list, err := f.GetList(ctx, listID)
	if err != nil {
		list = nil
	}
	fn(list)
	<-ctx.Done()
	return nil
}

func (f *fakeStore) WatchTasks(ctx context.Context, listID string, fn func([]models.Task)) error {
	tasks, _ := f.ListTasks(ctx, listID)
	fn(tasks)
	<-ctx.Done()
	return nil
}
