package rbac

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/metrics"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// RoleStore persists roles. Implementations map a duplicate name to
// apperrors.Conflict and a missing row to apperrors.NotFound.
type RoleStore interface {
	// InsertIfAbsent creates the role only if no role has that name.
	// It must be a single atomic statement so concurrent seeders never duplicate.
	InsertIfAbsent(ctx context.Context, name string, permissions Matrix) (bool, error)
	Create(ctx context.Context, input CreateRoleInput) (*Role, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	CountMemberships(ctx context.Context, roleID uuid.UUID) (int64, error)
}

// RoleCache holds resolved roles by id. A miss is (nil, false, nil).
type RoleCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Role, bool, error)
	Set(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Catalog owns role rows: seeding, CRUD and cached lookups.
type Catalog struct {
	store   RoleStore
	cache   RoleCache
	loads   singleflight.Group
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	// gen is bumped by every invalidation; loads that straddle one are not cached.
	gen atomic.Uint64
}

func NewCatalog(store RoleStore, cache RoleCache, log logrus.FieldLogger, m *metrics.Metrics) *Catalog {
	return &Catalog{
		store:   store,
		cache:   cache,
		log:     log.WithField("component", "role_catalog"),
		metrics: m,
	}
}

// SeedDefaults creates each built-in role if absent. Existing rows are left untouched.
func (c *Catalog) SeedDefaults(ctx context.Context) error {
	for _, def := range BuiltInRoles() {
		created, err := c.store.InsertIfAbsent(ctx, def.Name, NormalizeMatrix(def.Permissions))
		if err != nil {
			return fmt.Errorf(errFailedSeedRoleFmt, def.Name, err)
		}
		if created {
			c.log.WithField("role", def.Name).Info("seeded built-in role")
		}
	}
	return nil
}

func (c *Catalog) Create(ctx context.Context, input CreateRoleInput) (*Role, error) {
	name, err := normalizeRoleName(input.Name)
	if err != nil {
		return nil, err
	}
	if problems := ValidateMatrix(input.Permissions); len(problems) > 0 {
		return nil, apperrors.Validation(errInvalidPermissions, problems...)
	}

	role, err := c.store.Create(ctx, CreateRoleInput{
		Name:        name,
		Permissions: NormalizeMatrix(input.Permissions),
	})
	if err != nil {
		return nil, err
	}
	return decorate(role), nil
}

func (c *Catalog) Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*Role, error) {
	if id == uuid.Nil {
		return nil, apperrors.Validation(errInvalidRoleID)
	}
	if input.Name == nil && input.Permissions == nil {
		return nil, apperrors.Validation(errRoleUpdateEmpty)
	}

	existing, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if IsBuiltIn(existing.Name) {
		return nil, apperrors.Conflict(errBuiltInRoleImmutable)
	}

	patch := UpdateRoleInput{}
	if input.Name != nil {
		name, err := normalizeRoleName(*input.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if input.Permissions != nil {
		if problems := ValidateMatrix(input.Permissions); len(problems) > 0 {
			return nil, apperrors.Validation(errInvalidPermissions, problems...)
		}
		patch.Permissions = NormalizeMatrix(input.Permissions)
	}

	role, err := c.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return decorate(role), nil
}

func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.Validation(errInvalidRoleID)
	}

	existing, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if IsBuiltIn(existing.Name) {
		return apperrors.Conflict(errBuiltInRoleDelete)
	}

	inUse, err := c.store.CountMemberships(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperrors.Conflict(errRoleInUse)
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *Catalog) List(ctx context.Context) ([]*Role, error) {
	roles, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		decorate(r)
	}
	return roles, nil
}

// Get resolves a role through the cache. Concurrent misses for the same id
// share one store load.
func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*Role, error) {
	if id == uuid.Nil {
		return nil, apperrors.Validation(errInvalidRoleID)
	}

	if c.cache != nil {
		role, ok, err := c.cache.Get(ctx, id)
		if err != nil {
			c.log.WithError(err).WithField("role_id", id).Warn(msgCacheReadFailed)
		}
		c.metrics.ObserveRoleCache(ok)
		if ok {
			return copyRole(role), nil
		}
	}

	v, err, _ := c.loads.Do(id.String(), func() (any, error) {
		gen := c.gen.Load()
		role, err := c.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		decorate(role)
		if c.cache != nil {
			c.fill(ctx, role, gen)
		}
		return role, nil
	})
	if err != nil {
		return nil, err
	}
	return copyRole(v.(*Role)), nil
}

func (c *Catalog) GetByName(ctx context.Context, name string) (*Role, error) {
	role, err := c.store.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return decorate(role), nil
}

// fill caches a role read at generation gen. If an invalidation ran since,
// the row may predate it, so the entry is dropped again.
func (c *Catalog) fill(ctx context.Context, role *Role, gen uint64) {
	if c.gen.Load() != gen {
		return
	}
	if err := c.cache.Set(ctx, role); err != nil {
		c.log.WithError(err).WithField("role_id", role.ID).Warn(msgCacheWriteFailed)
		return
	}
	if c.gen.Load() != gen {
		c.invalidateEntry(ctx, role.ID)
	}
}

func (c *Catalog) invalidate(ctx context.Context, id uuid.UUID) {
	if c.cache == nil {
		return
	}
	c.gen.Add(1)
	c.loads.Forget(id.String())
	c.invalidateEntry(ctx, id)
}

func (c *Catalog) invalidateEntry(ctx context.Context, id uuid.UUID) {
	if err := c.cache.Delete(ctx, id); err != nil {
		c.log.WithError(err).WithField("role_id", id).Warn(msgCacheInvalidateFailed)
	}
}

func normalizeRoleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validator.RoleName(name); err != nil {
		return "", apperrors.Validation(errInvalidRoleName, err.Error())
	}
	return name, nil
}

func decorate(r *Role) *Role {
	r.IsBuiltIn = IsBuiltIn(r.Name)
	return r
}

func copyRole(r *Role) *Role {
	cp := *r
	cp.Permissions = r.Permissions.Clone()
	return &cp
}
