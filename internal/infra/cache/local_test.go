package cache

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/rbac"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoleCacheRoundTrip(t *testing.T) {
	c := NewLocalRoleCache(8, time.Minute)
	ctx := context.Background()
	role := &rbac.Role{ID: uuid.New(), Name: "qa", Permissions: rbac.Matrix{rbac.ResourceTask: {rbac.ActionRead}}}

	_, ok, err := c.Get(ctx, role.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, role))
	got, ok, err := c.Get(ctx, role.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "qa", got.Name)

	// callers can't reach the stored matrix
	got.Permissions[rbac.ResourceTask] = append(got.Permissions[rbac.ResourceTask], rbac.ActionDelete)
	again, _, _ := c.Get(ctx, role.ID)
	assert.False(t, again.Permissions.Allows(rbac.ResourceTask, rbac.ActionDelete))

	require.NoError(t, c.Delete(ctx, role.ID))
	_, ok, _ = c.Get(ctx, role.ID)
	assert.False(t, ok)
}

func TestLocalRoleCacheEvictsBySize(t *testing.T) {
	c := NewLocalRoleCache(2, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, &rbac.Role{ID: uuid.New()}))
	}
	assert.Equal(t, 2, c.Len())
}

func TestLocalRoleCacheExpires(t *testing.T) {
	c := NewLocalRoleCache(2, 20*time.Millisecond)
	ctx := context.Background()
	role := &rbac.Role{ID: uuid.New()}
	require.NoError(t, c.Set(ctx, role))

	assert.Eventually(t, func() bool {
		_, ok, _ := c.Get(ctx, role.ID)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
