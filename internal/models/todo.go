package models

import (
	"errors"
	"strings"
	"time"
)

// Role is the effective permission level of a user on a list.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

var ErrInvalidRole = errors.New("invalid collaborator role")

// ParseCollaboratorRole accepts only the roles a collaborator can hold.
func ParseCollaboratorRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleViewer:
		return RoleViewer, nil
	}
	return "", ErrInvalidRole
}

// User is the authenticated person. It comes from the identity token and is never stored.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Collaborator is a non-owner member of a list.
type Collaborator struct {
	Email string `firestore:"email" json:"email"`
	Role  Role   `firestore:"role" json:"role"`
}

// TodoList represents a document in the lists collection
type TodoList struct {
	ID            string         `firestore:"-" json:"id"`
	Name          string         `firestore:"name" json:"name"`
	OwnerID       string         `firestore:"ownerId" json:"ownerId"`
	CreatedAt     time.Time      `firestore:"createdAt" json:"createdAt"`
	Collaborators []Collaborator `firestore:"collaborators" json:"collaborators"`
}

// Task represents a document in the tasks collection
type Task struct {
	ID          string    `firestore:"-" json:"id"`
	ListID      string    `firestore:"listId" json:"listId"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Completed   bool      `firestore:"completed" json:"completed"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	CreatedBy   string    `firestore:"createdBy" json:"createdBy"`
}
