package memory

import (
	"context"
	"slices"
	"time"

	"projecthub/internal/domain/project"
	"projecthub/internal/rbac"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

type Projects struct {
	s *Store
}

func (r *Projects) CreateWithOwner(_ context.Context, input project.CreateProjectInput) (*project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[input.OwnerID]; !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	if _, ok := r.s.roles[input.OwnerRoleID]; !ok {
		return nil, apperrors.NotFound(errRoleNotFound)
	}

	now := time.Now()
	p := &project.Project{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Status:      project.StatusActive,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.projects[p.ID] = p
	r.s.members[memberKey{p.ID, input.OwnerID}] = &project.Member{
		ID: uuid.New(), ProjectID: p.ID, UserID: input.OwnerID, RoleID: input.OwnerRoleID, JoinedAt: now,
	}

	cp := *p
	return &cp, nil
}

func (r *Projects) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *Projects) ListForUser(_ context.Context, filter project.ListFilter) ([]*project.Project, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*project.Project
	for _, p := range r.s.projects {
		_, member := r.s.members[memberKey{p.ID, filter.UserID}]
		if p.OwnerID != filter.UserID && !member {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	slices.SortFunc(matched, func(a, b *project.Project) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return window(matched, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func (r *Projects) Update(_ context.Context, id uuid.UUID, input project.UpdateProjectInput) (*project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

// Delete cascades to members, tasks and everything under them.
func (r *Projects) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return apperrors.NotFound(errProjectNotFound)
	}
	delete(r.s.projects, id)
	for k := range r.s.members {
		if k.project == id {
			delete(r.s.members, k)
		}
	}
	for tid, t := range r.s.tasks {
		if t.ProjectID == id {
			r.s.deleteTaskLocked(tid)
		}
	}
	for lid, l := range r.s.labels {
		if l.ProjectID == id {
			delete(r.s.labels, lid)
		}
	}
	return nil
}

func (r *Projects) LookupAccess(_ context.Context, projectID, userID uuid.UUID) (uuid.UUID, *rbac.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[projectID]
	if !ok {
		return uuid.Nil, nil, apperrors.NotFound(errProjectNotFound)
	}
	m, ok := r.s.members[memberKey{projectID, userID}]
	if !ok {
		return p.OwnerID, nil, nil
	}
	return p.OwnerID, &rbac.Membership{
		ID: m.ID, ProjectID: m.ProjectID, UserID: m.UserID, RoleID: m.RoleID, JoinedAt: m.JoinedAt,
	}, nil
}

func (r *Projects) AddMember(_ context.Context, input project.AddMemberInput) (*project.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[input.ProjectID]; !ok {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	if _, ok := r.s.users[input.UserID]; !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	if _, ok := r.s.roles[input.RoleID]; !ok {
		return nil, apperrors.NotFound(errRoleNotFound)
	}
	key := memberKey{input.ProjectID, input.UserID}
	if _, ok := r.s.members[key]; ok {
		return nil, apperrors.Conflict(errMemberExists)
	}
	m := &project.Member{
		ID: uuid.New(), ProjectID: input.ProjectID, UserID: input.UserID, RoleID: input.RoleID, JoinedAt: time.Now(),
	}
	r.s.members[key] = m
	return r.s.memberView(m), nil
}

func (r *Projects) GetMember(_ context.Context, projectID, userID uuid.UUID) (*project.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.members[memberKey{projectID, userID}]
	if !ok {
		return nil, apperrors.NotFound(errMemberNotFound)
	}
	return r.s.memberView(m), nil
}

func (r *Projects) ListMembers(_ context.Context, projectID uuid.UUID) ([]*project.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*project.Member{}
	for k, m := range r.s.members {
		if k.project == projectID {
			out = append(out, r.s.memberView(m))
		}
	}
	slices.SortFunc(out, func(a, b *project.Member) int { return a.JoinedAt.Compare(b.JoinedAt) })
	return out, nil
}

func (r *Projects) UpdateMemberRole(_ context.Context, input project.UpdateMemberRoleInput) (*project.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[input.RoleID]; !ok {
		return nil, apperrors.NotFound(errRoleNotFound)
	}
	m, ok := r.s.members[memberKey{input.ProjectID, input.UserID}]
	if !ok {
		return nil, apperrors.NotFound(errMemberNotFound)
	}
	m.RoleID = input.RoleID
	return r.s.memberView(m), nil
}

func (r *Projects) RemoveMember(_ context.Context, projectID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := memberKey{projectID, userID}
	if _, ok := r.s.members[key]; !ok {
		return apperrors.NotFound(errMemberNotFound)
	}
	delete(r.s.members, key)
	return nil
}

func (s *Store) memberView(m *project.Member) *project.Member {
	cp := *m
	if role, ok := s.roles[m.RoleID]; ok {
		cp.RoleName = role.Name
	}
	cp.User = s.userSummary(m.UserID)
	return &cp
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
