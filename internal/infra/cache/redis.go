package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"projecthub/internal/rbac"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	roleKeyPrefix = "role:"

	redisDialTimeout  = 5 * time.Second
	redisReadTimeout  = 3 * time.Second
	redisWriteTimeout = 3 * time.Second
	redisPingTimeout  = 5 * time.Second

	errInvalidRedisURLFmt     = "invalid redis URL: %w"
	errRedisConnectFmt        = "failed to connect to redis: %w"
	errRedisGetFmt            = "redis get failed: %w"
	errRedisSetFmt            = "redis set failed: %w"
	errRedisDelFmt            = "redis del failed: %w"
	errMarshalRoleFmt         = "failed to marshal role: %w"
	errUnmarshalCachedRoleFmt = "failed to unmarshal cached role: %w"
)

// RedisRoleCache shares resolved roles across instances so an update or
// delete on one instance is visible to the others on their next lookup.
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRoleCache connects and pings before returning.
func NewRedisRoleCache(url string, ttl time.Duration) (*RedisRoleCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf(errInvalidRedisURLFmt, err)
	}
	opts.DialTimeout = redisDialTimeout
	opts.ReadTimeout = redisReadTimeout
	opts.WriteTimeout = redisWriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf(errRedisConnectFmt, err)
	}

	return &RedisRoleCache{client: client, ttl: ttl}, nil
}

func roleKey(id uuid.UUID) string {
	return roleKeyPrefix + id.String()
}

func (c *RedisRoleCache) Get(ctx context.Context, id uuid.UUID) (*rbac.Role, bool, error) {
	key := roleKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf(errRedisGetFmt, err)
	}

	var role rbac.Role
	if err := json.Unmarshal(data, &role); err != nil {
		// drop the corrupt entry so the next lookup reloads it
		c.client.Del(ctx, key)
		return nil, false, fmt.Errorf(errUnmarshalCachedRoleFmt, err)
	}
	return &role, true, nil
}

func (c *RedisRoleCache) Set(ctx context.Context, role *rbac.Role) error {
	data, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf(errMarshalRoleFmt, err)
	}
	if err := c.client.Set(ctx, roleKey(role.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf(errRedisSetFmt, err)
	}
	return nil
}

func (c *RedisRoleCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, roleKey(id)).Err(); err != nil {
		return fmt.Errorf(errRedisDelFmt, err)
	}
	return nil
}

// Ping is used by the health check.
func (c *RedisRoleCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRoleCache) Close() error {
	return c.client.Close()
}
