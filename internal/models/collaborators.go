package models

import "errors"

var ErrCollaboratorNotFound = errors.New("collaborator not found")

// FindCollaborator returns the first entry whose email matches exactly.
func FindCollaborator(collabs []Collaborator, email string) (Collaborator, bool) {
	for _, c := range collabs {
		if c.Email == email {
			return c, true
		}
	}
	return Collaborator{}, false
}

// ReplaceCollaboratorRole sets the role of the collaborator keyed by email.
// The first matching entry keeps its position; later entries with the same
// email are dropped so the email is unique afterwards.
func ReplaceCollaboratorRole(collabs []Collaborator, email string, role Role) ([]Collaborator, error) {
	out := make([]Collaborator, 0, len(collabs))
	found := false
	for _, c := range collabs {
		if c.Email != email {
			out = append(out, c)
			continue
		}
		if found {
			continue
		}
		found = true
		out = append(out, Collaborator{Email: email, Role: role})
	}
	if !found {
		return collabs, ErrCollaboratorNotFound
	}
	return out, nil
}

// RemoveCollaboratorValue removes every entry equal to c in both email and role.
// This matches the backend's array-remove semantics.
func RemoveCollaboratorValue(collabs []Collaborator, c Collaborator) []Collaborator {
	out := make([]Collaborator, 0, len(collabs))
	for _, existing := range collabs {
		if existing == c {
			continue
		}
		out = append(out, existing)
	}
	return out
}
