package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"projecthub/internal/rbac"

	"github.com/google/uuid"
)

func seedRoles(b *testing.B, c *LocalRoleCache, n int) []uuid.UUID {
	b.Helper()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
		role := &rbac.Role{ID: ids[i], Name: fmt.Sprintf("role-%d", i), Permissions: rbac.Vocabulary()}
		if err := c.Set(context.Background(), role); err != nil {
			b.Fatal(err)
		}
	}
	return ids
}

// BenchmarkLocalRoleCacheGet measures hit latency including the matrix clone.
func BenchmarkLocalRoleCacheGet(b *testing.B) {
	c := NewLocalRoleCache(1024, 10*time.Minute)
	ids := seedRoles(b, c, 256)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _, _ = c.Get(ctx, ids[i%len(ids)])
	}
}

// BenchmarkLocalRoleCacheGetParallel measures read contention across goroutines.
func BenchmarkLocalRoleCacheGetParallel(b *testing.B) {
	c := NewLocalRoleCache(1024, 10*time.Minute)
	ids := seedRoles(b, c, 256)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _, _ = c.Get(ctx, ids[i%len(ids)])
			i++
		}
	})
}

// BenchmarkLocalRoleCacheMixed is one invalidation per five lookups, roughly
// what role edits during normal traffic look like.
func BenchmarkLocalRoleCacheMixed(b *testing.B) {
	c := NewLocalRoleCache(1024, 10*time.Minute)
	ids := seedRoles(b, c, 256)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			id := ids[i%len(ids)]
			if i%5 == 0 {
				_ = c.Delete(ctx, id)
			} else if _, ok, _ := c.Get(ctx, id); !ok {
				_ = c.Set(ctx, &rbac.Role{ID: id, Name: "refilled", Permissions: rbac.Vocabulary()})
			}
			i++
		}
	})
}
