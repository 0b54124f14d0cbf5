package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/ytakahashi/shared-todo/internal/models"
)

func decodeTask(doc *firestore.DocumentSnapshot) (models.Task, error) {
	var task models.Task
	if err := doc.DataTo(&task); err != nil {
		return models.Task{}, fmt.Errorf("failed to unmarshal task %s: %w", doc.Ref.ID, err)
	}
	task.ID = doc.Ref.ID
	return task, nil
}

func (fs *FirestoreService) tasksOf(listID string) firestore.Query {
	return fs.tasks().Where("listId", "==", listID)
}

func (fs *FirestoreService) CreateTask(ctx context.Context, listID string, creator models.User, name, description string) (*models.Task, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		ListID:      listID,
		Name:        name,
		Description: description,
		Completed:   false,
		CreatedAt:   time.Now(),
		CreatedBy:   creator.ID,
	}

	_, err = fs.tasks().Doc(task.ID).Set(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (fs *FirestoreService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	doc, err := fs.tasks().Doc(taskID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task, err := decodeTask(doc)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the tasks of a list, newest first.
func (fs *FirestoreService) ListTasks(ctx context.Context, listID string) ([]models.Task, error) {
	tasks, err := drain(fs.tasksOf(listID).Documents(ctx), decodeTask)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	models.SortTasksNewestFirst(tasks)
	return tasks, nil
}

func (fs *FirestoreService) UpdateTask(ctx context.Context, taskID, name, description string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	_, err = fs.tasks().Doc(taskID).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "description", Value: description},
	})
	if err != nil {
		if isNotFound(err) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// ToggleTask flips the completion flag against the stored value, not a
// caller-supplied copy, and returns the updated task.
func (fs *FirestoreService) ToggleTask(ctx context.Context, taskID string) (*models.Task, error) {
	ref := fs.tasks().Doc(taskID)

	var task models.Task
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ErrTaskNotFound
			}
			return err
		}
		task, err = decodeTask(doc)
		if err != nil {
			return err
		}
		task.Completed = !task.Completed
		return tx.Update(ref, []firestore.Update{
			{Path: "completed", Value: task.Completed},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}

	return &task, nil
}

func (fs *FirestoreService) DeleteTask(ctx context.Context, taskID string) error {
	_, err := fs.tasks().Doc(taskID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
