package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Resource represents a type of resource in the system
type Resource string

// Action represents an operation on a resource
type Action string

// Matrix maps a resource to the actions a role may perform on it.
// A missing resource key grants nothing.
type Matrix map[Resource][]Action

// Allows reports whether action is listed under resource.
func (m Matrix) Allows(resource Resource, action Action) bool {
	for _, a := range m[resource] {
		if a == action {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so cached matrices cannot be mutated by callers.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for res, actions := range m {
		out[res] = append([]Action(nil), actions...)
	}
	return out
}

// Role is a named permission matrix.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Permissions Matrix    `json:"permissions"`
	IsBuiltIn   bool      `json:"isBuiltIn"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Membership is the (project, user, role) association for a non-owner.
type Membership struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
	JoinedAt  time.Time
}

// Access is the resolved view of one user on one project.
type Access struct {
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	IsOwner    bool
	Membership *Membership
	Role       *Role
}

// CanRead is true for the owner or any member, regardless of role.
func (a *Access) CanRead() bool {
	return a.IsOwner || a.Membership != nil
}

// Allows applies owner bypass, then the role matrix.
func (a *Access) Allows(resource Resource, action Action) bool {
	if a.IsOwner {
		return true
	}
	if a.Membership == nil || a.Role == nil {
		return false
	}
	return a.Role.Permissions.Allows(resource, action)
}

type CreateRoleInput struct {
	Name        string
	Permissions Matrix
}

type UpdateRoleInput struct {
	Name        *string
	Permissions Matrix
}
