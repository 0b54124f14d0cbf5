package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	listsCollection = "lists"
	tasksCollection = "tasks"
)

var (
	ErrEmptyName          = errors.New("name must not be empty")
	ErrListNotFound       = errors.New("list not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrCollaboratorExists = errors.New("collaborator already on list")
	ErrEmptyEmail         = errors.New("email must not be empty")
)

// FirestoreService owns the connection to the backend. Create one at startup
// and pass it to whatever needs persistence; Close it on shutdown.
type FirestoreService struct {
	client *firestore.Client
}

func NewFirestoreService(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreService, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreService{
		client: client,
	}, nil
}

func (fs *FirestoreService) Close() error {
	return fs.client.Close()
}

func (fs *FirestoreService) lists() *firestore.CollectionRef {
	return fs.client.Collection(listsCollection)
}

func (fs *FirestoreService) tasks() *firestore.CollectionRef {
	return fs.client.Collection(tasksCollection)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// drain reads every document from iter, decoding each with decode.
func drain[T any](iter *firestore.DocumentIterator, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	defer iter.Stop()

	out := []T{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}

		v, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}
