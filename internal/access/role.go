// Package access derives a user's effective role on a list and the actions it allows.
package access

import "github.com/ytakahashi/shared-todo/internal/models"

// ResolveRole returns owner when the user owns the list, otherwise the role of the
// first collaborator entry with the user's email, otherwise viewer.
//
// A user with no relation to the list still resolves to viewer. Visibility is
// decided separately; see IsMember.
func ResolveRole(list models.TodoList, user models.User) models.Role {
	if list.OwnerID == user.ID {
		return models.RoleOwner
	}
	if c, ok := models.FindCollaborator(list.Collaborators, user.Email); ok && c.Role != "" {
		return c.Role
	}
	return models.RoleViewer
}

// IsMember reports whether the list would be delivered to the user by the
// visible-lists query: owner, or collaborator holding admin or viewer.
func IsMember(list models.TodoList, user models.User) bool {
	if list.OwnerID == user.ID {
		return true
	}
	for _, c := range list.Collaborators {
		if c.Email == user.Email && (c.Role == models.RoleAdmin || c.Role == models.RoleViewer) {
			return true
		}
	}
	return false
}

func CanEdit(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}

func CanDelete(role models.Role) bool {
	return role == models.RoleOwner
}

func CanManageCollaborators(role models.Role) bool {
	return role == models.RoleOwner
}

// CollaboratorCount counts everyone with access, the owner included.
func CollaboratorCount(list models.TodoList) int {
	return len(list.Collaborators) + 1
}
