package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ytakahashi/shared-todo/internal/models"
)

// Validation runs before any remote call, so a service without a client must
// reject bad input without touching the backend.
func TestValidationBeforeWrite(t *testing.T) {
	fs := &FirestoreService{}
	ctx := context.Background()
	owner := models.User{ID: "u1", Email: "a@x.com"}

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := fs.CreateList(ctx, owner, name); !errors.Is(err, ErrEmptyName) {
			t.Errorf("CreateList(%q) error = %v, want ErrEmptyName", name, err)
		}
		if err := fs.RenameList(ctx, "l1", name); !errors.Is(err, ErrEmptyName) {
			t.Errorf("RenameList(%q) error = %v, want ErrEmptyName", name, err)
		}
		if _, err := fs.CreateTask(ctx, "l1", owner, name, "desc"); !errors.Is(err, ErrEmptyName) {
			t.Errorf("CreateTask(%q) error = %v, want ErrEmptyName", name, err)
		}
		if err := fs.UpdateTask(ctx, "t1", name, "desc"); !errors.Is(err, ErrEmptyName) {
			t.Errorf("UpdateTask(%q) error = %v, want ErrEmptyName", name, err)
		}
	}

	if err := fs.AddCollaborator(ctx, "l1", models.Collaborator{Email: "  ", Role: models.RoleViewer}); !errors.Is(err, ErrEmptyEmail) {
		t.Errorf("AddCollaborator(empty email) error = %v, want ErrEmptyEmail", err)
	}
	if err := fs.AddCollaborator(ctx, "l1", models.Collaborator{Email: "b@x.com", Role: models.RoleOwner}); !errors.Is(err, models.ErrInvalidRole) {
		t.Errorf("AddCollaborator(owner role) error = %v, want ErrInvalidRole", err)
	}
	if err := fs.UpdateCollaboratorRole(ctx, "l1", "b@x.com", "editor"); !errors.Is(err, models.ErrInvalidRole) {
		t.Errorf("UpdateCollaboratorRole(editor) error = %v, want ErrInvalidRole", err)
	}
}

func newEmulatorService(t *testing.T) *FirestoreService {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	fs, err := NewFirestoreService(context.Background(), "demo-shared-todo")
	if err != nil {
		t.Fatalf("NewFirestoreService() error = %v", err)
	}
	t.Cleanup(func() { fs.Close() })
	return fs
}

func uniqueUser(prefix string) models.User {
	id := uuid.New().String()
	return models.User{ID: prefix + "-" + id, Email: prefix + "-" + id + "@example.com", Name: prefix}
}

func TestListLifecycle(t *testing.T) {
	fs := newEmulatorService(t)
	ctx := context.Background()

	owner := uniqueUser("owner")
	guest := uniqueUser("guest")

	list, err := fs.CreateList(ctx, owner, "  Groceries  ")
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if list.Name != "Groceries" {
		t.Errorf("name = %q, want trimmed", list.Name)
	}

	if err := fs.AddCollaborator(ctx, list.ID, models.Collaborator{Email: guest.Email, Role: models.RoleViewer}); err != nil {
		t.Fatalf("AddCollaborator() error = %v", err)
	}
	if err := fs.AddCollaborator(ctx, list.ID, models.Collaborator{Email: guest.Email, Role: models.RoleAdmin}); !errors.Is(err, ErrCollaboratorExists) {
		t.Errorf("duplicate AddCollaborator() error = %v, want ErrCollaboratorExists", err)
	}

	visible, err := fs.VisibleLists(ctx, guest)
	if err != nil {
		t.Fatalf("VisibleLists() error = %v", err)
	}
	if len(visible) != 1 || visible[0].ID != list.ID {
		t.Fatalf("guest sees %v, want [%s]", visible, list.ID)
	}

	if err := fs.UpdateCollaboratorRole(ctx, list.ID, guest.Email, models.RoleAdmin); err != nil {
		t.Fatalf("UpdateCollaboratorRole() error = %v", err)
	}

	got, err := fs.GetList(ctx, list.ID)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(got.Collaborators) != 1 || got.Collaborators[0] != (models.Collaborator{Email: guest.Email, Role: models.RoleAdmin}) {
		t.Errorf("collaborators after role update = %v", got.Collaborators)
	}

	// removing a value that is not present leaves the admin entry alone
	if err := fs.RemoveCollaborator(ctx, list.ID, models.Collaborator{Email: guest.Email, Role: models.RoleViewer}); err != nil {
		t.Fatalf("RemoveCollaborator() error = %v", err)
	}
	got, _ = fs.GetList(ctx, list.ID)
	if len(got.Collaborators) != 1 || got.Collaborators[0].Role != models.RoleAdmin {
		t.Errorf("collaborators after absent removal = %v", got.Collaborators)
	}

	if err := fs.RemoveCollaborator(ctx, list.ID, models.Collaborator{Email: guest.Email, Role: models.RoleAdmin}); err != nil {
		t.Fatalf("RemoveCollaborator() error = %v", err)
	}
	visible, _ = fs.VisibleLists(ctx, guest)
	if len(visible) != 0 {
		t.Errorf("guest still sees %d lists after removal", len(visible))
	}

	if err := fs.RenameList(ctx, list.ID, "Weekly groceries"); err != nil {
		t.Fatalf("RenameList() error = %v", err)
	}
	if err := fs.RenameList(ctx, "missing-"+list.ID, "x"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("RenameList(missing) error = %v, want ErrListNotFound", err)
	}
}

func TestTaskLifecycleAndCascadingDelete(t *testing.T) {
	fs := newEmulatorService(t)
	ctx := context.Background()
	owner := uniqueUser("owner")

	list, err := fs.CreateList(ctx, owner, "Chores")
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}

	first, err := fs.CreateTask(ctx, list.ID, owner, "Dishes", "")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := fs.CreateTask(ctx, list.ID, owner, "Laundry", "whites"); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	toggled, err := fs.ToggleTask(ctx, first.ID)
	if err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	if !toggled.Completed {
		t.Error("toggled task should be completed")
	}

	tasks, err := fs.ListTasks(ctx, list.ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if stats := models.StatsOf(tasks); stats.Completed != 1 || stats.Total != 2 {
		t.Errorf("stats = %+v, want 1/2", stats)
	}
	if tasks[0].Name != "Laundry" {
		t.Errorf("first task = %q, want newest (Laundry)", tasks[0].Name)
	}

	deleted, err := fs.DeleteList(ctx, list.ID)
	if err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d tasks, want 2", deleted)
	}
	if _, err := fs.GetList(ctx, list.ID); !errors.Is(err, ErrListNotFound) {
		t.Errorf("GetList() after delete error = %v, want ErrListNotFound", err)
	}
	if _, err := fs.GetTask(ctx, first.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask() after list delete error = %v, want ErrTaskNotFound", err)
	}
}

func TestWatchTasksDeliversFullSnapshots(t *testing.T) {
	fs := newEmulatorService(t)
	owner := uniqueUser("owner")

	list, err := fs.CreateList(context.Background(), owner, "Watched")
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshots := make(chan []models.Task, 10)
	done := make(chan error, 1)
	go func() {
		done <- fs.WatchTasks(ctx, list.ID, func(tasks []models.Task) { snapshots <- tasks })
	}()

	if first := <-snapshots; len(first) != 0 {
		t.Fatalf("initial snapshot has %d tasks, want 0", len(first))
	}

	if _, err := fs.CreateTask(context.Background(), list.ID, owner, "One", ""); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	select {
	case tasks := <-snapshots:
		if len(tasks) != 1 {
			t.Errorf("snapshot has %d tasks, want 1", len(tasks))
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for snapshot")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("WatchTasks() returned %v after cancel, want nil", err)
	}
}
