package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"projecthub/internal/rbac"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

type Roles struct {
	s *Store
}

func (r *Roles) byNameLocked(name string) *rbac.Role {
	for _, role := range r.s.roles {
		if role.Name == name {
			return role
		}
	}
	return nil
}

func (r *Roles) InsertIfAbsent(_ context.Context, name string, permissions rbac.Matrix) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.byNameLocked(name) != nil {
		return false, nil
	}
	now := time.Now()
	id := uuid.New()
	r.s.roles[id] = &rbac.Role{ID: id, Name: name, Permissions: permissions.Clone(), CreatedAt: now, UpdatedAt: now}
	return true, nil
}

func (r *Roles) Create(_ context.Context, input rbac.CreateRoleInput) (*rbac.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.byNameLocked(input.Name) != nil {
		return nil, apperrors.Conflict(errRoleExists)
	}
	now := time.Now()
	role := &rbac.Role{ID: uuid.New(), Name: input.Name, Permissions: input.Permissions.Clone(), CreatedAt: now, UpdatedAt: now}
	r.s.roles[role.ID] = role
	return copyRole(role), nil
}

func (r *Roles) Update(_ context.Context, id uuid.UUID, input rbac.UpdateRoleInput) (*rbac.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, apperrors.NotFound(errRoleNotFound)
	}
	if input.Name != nil {
		if other := r.byNameLocked(*input.Name); other != nil && other.ID != id {
			return nil, apperrors.Conflict(errRoleExists)
		}
		role.Name = *input.Name
	}
	if input.Permissions != nil {
		role.Permissions = input.Permissions.Clone()
	}
	role.UpdatedAt = time.Now()
	return copyRole(role), nil
}

func (r *Roles) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[id]; !ok {
		return apperrors.NotFound(errRoleNotFound)
	}
	for _, m := range r.s.members {
		if m.RoleID == id {
			return apperrors.Conflict(errRoleInUse)
		}
	}
	delete(r.s.roles, id)
	return nil
}

func (r *Roles) GetByID(_ context.Context, id uuid.UUID) (*rbac.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, apperrors.NotFound(errRoleNotFound)
	}
	return copyRole(role), nil
}

func (r *Roles) GetByName(_ context.Context, name string) (*rbac.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role := r.byNameLocked(name)
	if role == nil {
		return nil, apperrors.NotFound(errRoleNotFound)
	}
	return copyRole(role), nil
}

func (r *Roles) List(_ context.Context) ([]*rbac.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*rbac.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, copyRole(role))
	}
	slices.SortFunc(out, func(a, b *rbac.Role) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *Roles) CountMemberships(_ context.Context, roleID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, m := range r.s.members {
		if m.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func copyRole(r *rbac.Role) *rbac.Role {
	cp := *r
	cp.Permissions = r.Permissions.Clone()
	return &cp
}
