package rbac

import (
	"context"
	"fmt"

	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccessStore answers the ownership and membership questions in one lookup.
// A missing project is apperrors.NotFound; a missing membership is a nil
// *Membership with a nil error.
type AccessStore interface {
	LookupAccess(ctx context.Context, projectID, userID uuid.UUID) (ownerID uuid.UUID, membership *Membership, err error)
}

// RoleLookup is the read side of the catalog.
type RoleLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*Role, error)
}

// Resolver turns (project, user) into an Access value.
type Resolver struct {
	store AccessStore
	roles RoleLookup
}

func NewResolver(store AccessStore, roles RoleLookup) *Resolver {
	return &Resolver{store: store, roles: roles}
}

func (r *Resolver) Resolve(ctx context.Context, projectID, userID uuid.UUID) (*Access, error) {
	if projectID == uuid.Nil {
		return nil, apperrors.Validation(errInvalidProjectID)
	}
	if userID == uuid.Nil {
		return nil, apperrors.Validation(errInvalidUserID)
	}

	ownerID, membership, err := r.store.LookupAccess(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	access := &Access{
		ProjectID:  projectID,
		UserID:     userID,
		IsOwner:    ownerID == userID,
		Membership: membership,
	}
	if access.IsOwner || membership == nil {
		return access, nil
	}

	role, err := r.roles.Get(ctx, membership.RoleID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// dangling role reference grants nothing
			return access, nil
		}
		return nil, fmt.Errorf(errFailedLoadRoleFmt, membership.RoleID, err)
	}
	access.Role = role
	return access, nil
}

// Gate is the single authorization primitive used before every mutation.
type Gate struct {
	resolver *Resolver
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewGate(resolver *Resolver, log logrus.FieldLogger, m *metrics.Metrics) *Gate {
	return &Gate{
		resolver: resolver,
		log:      log.WithField("component", "permission_gate"),
		metrics:  m,
	}
}

// Authorize: owner passes everything; a member passes iff the role grants
// action on resource; everyone else fails.
func (g *Gate) Authorize(ctx context.Context, projectID, userID uuid.UUID, resource Resource, action Action) (bool, error) {
	access, err := g.resolver.Resolve(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	allowed := access.Allows(resource, action)
	g.metrics.ObserveAuthz(string(resource), string(action), allowed)
	return allowed, nil
}

func (g *Gate) CanRead(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	access, err := g.resolver.Resolve(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	allowed := access.CanRead()
	g.metrics.ObserveAuthz(string(ResourceProject), string(ActionRead), allowed)
	return allowed, nil
}

func (g *Gate) Require(ctx context.Context, projectID, userID uuid.UUID, resource Resource, action Action) error {
	ok, err := g.Authorize(ctx, projectID, userID, resource, action)
	if err != nil {
		return err
	}
	if !ok {
		g.log.WithFields(logrus.Fields{
			"project_id": projectID,
			"user_id":    userID,
			"resource":   resource,
			"action":     action,
		}).Debug("permission denied")
		return apperrors.Forbidden(fmt.Sprintf(errAccessDeniedFmt, resource, action))
	}
	return nil
}

func (g *Gate) RequireRead(ctx context.Context, projectID, userID uuid.UUID) error {
	ok, err := g.CanRead(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Forbidden(errProjectReadDenied)
	}
	return nil
}

// RequireAuthorOr lets the author of an entry through without a role grant.
// The author still needs read access to the project.
func (g *Gate) RequireAuthorOr(ctx context.Context, projectID, userID, authorID uuid.UUID, resource Resource, action Action) error {
	access, err := g.resolver.Resolve(ctx, projectID, userID)
	if err != nil {
		return err
	}

	allowed := access.Allows(resource, action) || (userID == authorID && access.CanRead())
	g.metrics.ObserveAuthz(string(resource), string(action), allowed)
	if !allowed {
		return apperrors.Forbidden(fmt.Sprintf(errAccessDeniedFmt, resource, action))
	}
	return nil
}

// IsParticipant reports whether userID owns or belongs to the project. It
// grants nothing and is not counted as an authorization decision.
func (g *Gate) IsParticipant(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	access, err := g.resolver.Resolve(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	return access.CanRead(), nil
}

// EnsureRemovable fails for the project owner, whatever the caller's permissions.
func (g *Gate) EnsureRemovable(ctx context.Context, projectID, targetUserID uuid.UUID) error {
	access, err := g.resolver.Resolve(ctx, projectID, targetUserID)
	if err != nil {
		return err
	}
	if access.IsOwner {
		return apperrors.Forbidden(errCannotRemoveOwner)
	}
	return nil
}
