package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/ytakahashi/shared-todo/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Every Watch* method blocks, calling fn with the complete current state each
// time the backend reports a change. They return nil once ctx is done.

func (fs *FirestoreService) WatchLists(ctx context.Context, user models.User, fn func([]models.TodoList)) error {
	return watchQuery(ctx, fs.visibleListsQuery(user), decodeList, fn)
}

func (fs *FirestoreService) WatchTasks(ctx context.Context, listID string, fn func([]models.Task)) error {
	return watchQuery(ctx, fs.tasksOf(listID), decodeTask, fn)
}

// WatchList follows a single list document. fn receives nil while the document does not exist.
func (fs *FirestoreService) WatchList(ctx context.Context, listID string, fn func(*models.TodoList)) error {
	it := fs.lists().Doc(listID).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			return watchDone(ctx, err)
		}
		if !snap.Exists() {
			fn(nil)
			continue
		}

		list, err := decodeList(snap)
		if err != nil {
			return err
		}
		fn(&list)
	}
}

func watchQuery[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error), fn func([]T)) error {
	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			return watchDone(ctx, err)
		}

		items, err := drain(snap.Documents, decode)
		if err != nil {
			return err
		}
		fn(items)
	}
}

func watchDone(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
		return nil
	}
	return fmt.Errorf("snapshot listener failed: %w", err)
}
