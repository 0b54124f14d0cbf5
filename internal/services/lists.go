package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/ytakahashi/shared-todo/internal/models"
)

func decodeList(doc *firestore.DocumentSnapshot) (models.TodoList, error) {
	var list models.TodoList
	if err := doc.DataTo(&list); err != nil {
		return models.TodoList{}, fmt.Errorf("failed to unmarshal list %s: %w", doc.Ref.ID, err)
	}
	list.ID = doc.Ref.ID
	if list.Collaborators == nil {
		list.Collaborators = []models.Collaborator{}
	}
	return list, nil
}

// visibleListsQuery matches lists the user owns or is a collaborator on. The
// collaborator branch compares whole {email, role} values, so it only matches
// the two roles a collaborator can hold.
func (fs *FirestoreService) visibleListsQuery(user models.User) firestore.Query {
	return fs.lists().WhereEntity(firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "ownerId", Operator: "==", Value: user.ID},
			firestore.PropertyFilter{
				Path:     "collaborators",
				Operator: "array-contains-any",
				Value: []models.Collaborator{
					{Email: user.Email, Role: models.RoleAdmin},
					{Email: user.Email, Role: models.RoleViewer},
				},
			},
		},
	})
}

func (fs *FirestoreService) CreateList(ctx context.Context, owner models.User, name string) (*models.TodoList, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	list := &models.TodoList{
		ID:            uuid.New().String(),
		Name:          name,
		OwnerID:       owner.ID,
		CreatedAt:     time.Now(),
		Collaborators: []models.Collaborator{},
	}

	_, err = fs.lists().Doc(list.ID).Set(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return list, nil
}

// GetList is a one-shot read; a missing document yields ErrListNotFound.
func (fs *FirestoreService) GetList(ctx context.Context, listID string) (*models.TodoList, error) {
	doc, err := fs.lists().Doc(listID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	list, err := decodeList(doc)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (fs *FirestoreService) VisibleLists(ctx context.Context, user models.User) ([]models.TodoList, error) {
	return drain(fs.visibleListsQuery(user).Documents(ctx), decodeList)
}

func (fs *FirestoreService) RenameList(ctx context.Context, listID, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	_, err = fs.lists().Doc(listID).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
	})
	if err != nil {
		if isNotFound(err) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to rename list: %w", err)
	}

	return nil
}

// DeleteList removes the list document together with every task that belongs to it.
func (fs *FirestoreService) DeleteList(ctx context.Context, listID string) (int, error) {
	bw := fs.client.BulkWriter(ctx)

	iter := fs.tasks().Where("listId", "==", listID).Documents(ctx)
	refs, err := drain(iter, func(doc *firestore.DocumentSnapshot) (*firestore.DocumentRef, error) {
		return doc.Ref, nil
	})
	if err != nil {
		bw.End()
		return 0, fmt.Errorf("failed to iterate tasks for deletion: %w", err)
	}
	refs = append(refs, fs.lists().Doc(listID))

	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to enqueue delete of %s: %w", ref.Path, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deletedTasks int
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deletedTasks, fmt.Errorf("failed to delete %s: %w", refs[i].Path, err)
		}
		if i < len(jobs)-1 {
			deletedTasks++
		}
	}

	return deletedTasks, nil
}

func (fs *FirestoreService) AddCollaborator(ctx context.Context, listID string, c models.Collaborator) error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if c.Role != models.RoleAdmin && c.Role != models.RoleViewer {
		return models.ErrInvalidRole
	}

	ref := fs.lists().Doc(listID)
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		list, err := getListTx(tx, ref)
		if err != nil {
			return err
		}
		if _, ok := models.FindCollaborator(list.Collaborators, c.Email); ok {
			return ErrCollaboratorExists
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "collaborators", Value: firestore.ArrayUnion(c)},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}

	return nil
}

// UpdateCollaboratorRole replaces the role of the collaborator keyed by email in
// a single transaction, so readers never see the collaborator missing.
func (fs *FirestoreService) UpdateCollaboratorRole(ctx context.Context, listID, email string, role models.Role) error {
	if role != models.RoleAdmin && role != models.RoleViewer {
		return models.ErrInvalidRole
	}

	ref := fs.lists().Doc(listID)
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		list, err := getListTx(tx, ref)
		if err != nil {
			return err
		}
		collabs, err := models.ReplaceCollaboratorRole(list.Collaborators, email, role)
		if err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "collaborators", Value: collabs},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to update collaborator role: %w", err)
	}

	return nil
}

// RemoveCollaborator removes entries equal to c by value. A value that is not
// on the list leaves the collaborators untouched.
func (fs *FirestoreService) RemoveCollaborator(ctx context.Context, listID string, c models.Collaborator) error {
	_, err := fs.lists().Doc(listID).Update(ctx, []firestore.Update{
		{Path: "collaborators", Value: firestore.ArrayRemove(c)},
	})
	if err != nil {
		if isNotFound(err) {
			return ErrListNotFound
		}
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}

	return nil
}

func getListTx(tx *firestore.Transaction, ref *firestore.DocumentRef) (models.TodoList, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return models.TodoList{}, ErrListNotFound
		}
		return models.TodoList{}, err
	}
	return decodeList(doc)
}
