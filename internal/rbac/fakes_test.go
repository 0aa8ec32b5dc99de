package rbac

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

type memoryRoleStore struct {
	mu          sync.Mutex
	roles       map[uuid.UUID]*Role
	memberships map[uuid.UUID]int64
	getCalls    atomic.Int64
}

func newMemoryRoleStore() *memoryRoleStore {
	return &memoryRoleStore{
		roles:       make(map[uuid.UUID]*Role),
		memberships: make(map[uuid.UUID]int64),
	}
}

func (s *memoryRoleStore) byName(name string) *Role {
	for _, r := range s.roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func (s *memoryRoleStore) InsertIfAbsent(_ context.Context, name string, m Matrix) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byName(name) != nil {
		return false, nil
	}
	id := uuid.New()
	s.roles[id] = &Role{ID: id, Name: name, Permissions: m.Clone(), CreatedAt: time.Now()}
	return true, nil
}

func (s *memoryRoleStore) Create(_ context.Context, in CreateRoleInput) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byName(in.Name) != nil {
		return nil, apperrors.Conflict("role with this name already exists")
	}
	id := uuid.New()
	r := &Role{ID: id, Name: in.Name, Permissions: in.Permissions.Clone()}
	s.roles[id] = r
	cp := *r
	return &cp, nil
}

func (s *memoryRoleStore) Update(_ context.Context, id uuid.UUID, in UpdateRoleInput) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, apperrors.NotFound("role not found")
	}
	if in.Name != nil {
		if other := s.byName(*in.Name); other != nil && other.ID != id {
			return nil, apperrors.Conflict("role with this name already exists")
		}
		r.Name = *in.Name
	}
	if in.Permissions != nil {
		r.Permissions = in.Permissions.Clone()
	}
	cp := *r
	return &cp, nil
}

func (s *memoryRoleStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return apperrors.NotFound("role not found")
	}
	delete(s.roles, id)
	return nil
}

func (s *memoryRoleStore) GetByID(_ context.Context, id uuid.UUID) (*Role, error) {
	s.getCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, apperrors.NotFound("role not found")
	}
	cp := *r
	cp.Permissions = r.Permissions.Clone()
	return &cp, nil
}

func (s *memoryRoleStore) GetByName(_ context.Context, name string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.byName(name)
	if r == nil {
		return nil, apperrors.NotFound("role not found")
	}
	cp := *r
	return &cp, nil
}

func (s *memoryRoleStore) List(_ context.Context) ([]*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Role, 0, len(s.roles))
	for _, r := range s.roles {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryRoleStore) CountMemberships(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberships[id], nil
}

type mapRoleCache struct {
	mu    sync.Mutex
	roles map[uuid.UUID]*Role
}

func newMapRoleCache() *mapRoleCache {
	return &mapRoleCache{roles: make(map[uuid.UUID]*Role)}
}

func (c *mapRoleCache) Get(_ context.Context, id uuid.UUID) (*Role, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.roles[id]
	return r, ok, nil
}

func (c *mapRoleCache) Set(_ context.Context, r *Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[r.ID] = r
	return nil
}

func (c *mapRoleCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, id)
	return nil
}

type memoryAccessStore struct {
	owners      map[uuid.UUID]uuid.UUID
	memberships map[[2]uuid.UUID]*Membership
}

func newMemoryAccessStore() *memoryAccessStore {
	return &memoryAccessStore{
		owners:      make(map[uuid.UUID]uuid.UUID),
		memberships: make(map[[2]uuid.UUID]*Membership),
	}
}

func (s *memoryAccessStore) addMember(projectID, userID, roleID uuid.UUID) {
	s.memberships[[2]uuid.UUID{projectID, userID}] = &Membership{
		ID: uuid.New(), ProjectID: projectID, UserID: userID, RoleID: roleID,
	}
}

func (s *memoryAccessStore) LookupAccess(_ context.Context, projectID, userID uuid.UUID) (uuid.UUID, *Membership, error) {
	owner, ok := s.owners[projectID]
	if !ok {
		return uuid.Nil, nil, apperrors.NotFound("project not found")
	}
	return owner, s.memberships[[2]uuid.UUID{projectID, userID}], nil
}
