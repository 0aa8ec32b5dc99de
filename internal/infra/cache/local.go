package cache

import (
	"context"
	"time"

	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LocalRoleCache keeps resolved roles in a size-bounded, TTL-evicting LRU.
// Invalidation is per process; run with Redis when there is more than one instance.
type LocalRoleCache struct {
	lru *expirable.LRU[uuid.UUID, rbac.Role]
}

func NewLocalRoleCache(size int, ttl time.Duration) *LocalRoleCache {
	return &LocalRoleCache{
		lru: expirable.NewLRU[uuid.UUID, rbac.Role](size, nil, ttl),
	}
}

func (c *LocalRoleCache) Get(_ context.Context, id uuid.UUID) (*rbac.Role, bool, error) {
	role, ok := c.lru.Get(id)
	if !ok {
		return nil, false, nil
	}
	role.Permissions = role.Permissions.Clone()
	return &role, true, nil
}

func (c *LocalRoleCache) Set(_ context.Context, role *rbac.Role) error {
	stored := *role
	stored.Permissions = role.Permissions.Clone()
	c.lru.Add(role.ID, stored)
	return nil
}

func (c *LocalRoleCache) Delete(_ context.Context, id uuid.UUID) error {
	c.lru.Remove(id)
	return nil
}

func (c *LocalRoleCache) Len() int {
	return c.lru.Len()
}
