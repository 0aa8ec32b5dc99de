package projects

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/page"
	"projecthub/internal/domain/project"
	"projecthub/internal/domain/user"
	"projecthub/internal/infra/cache"
	"projecthub/internal/rbac"
	"projecthub/internal/repository/memory"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	store    *memory.Store
	activity *memory.Activity

	owner    uuid.UUID
	manager  uuid.UUID
	member   uuid.UUID
	outsider uuid.UUID

	managerRole uuid.UUID
	memberRole  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	catalog := rbac.NewCatalog(store.Roles(), cache.NewLocalRoleCache(16, time.Minute), logger.Discard(), nil)
	require.NoError(t, catalog.SeedDefaults(ctx))
	gate := rbac.NewGate(rbac.NewResolver(store.Projects(), catalog), logger.Discard(), nil)

	f := &fixture{
		store:    store,
		activity: &memory.Activity{},
		owner:    uuid.New(),
		manager:  uuid.New(),
		member:   uuid.New(),
		outsider: uuid.New(),
	}
	for i, id := range []uuid.UUID{f.owner, f.manager, f.member, f.outsider} {
		store.AddUser(user.Summary{ID: id, Email: []string{"o", "m", "u", "x"}[i] + "@example.com", DisplayName: "User"})
	}

	manager, err := catalog.GetByName(ctx, rbac.RoleManager)
	require.NoError(t, err)
	member, err := catalog.GetByName(ctx, rbac.RoleMember)
	require.NoError(t, err)
	f.managerRole, f.memberRole = manager.ID, member.ID

	f.svc = NewService(store.Projects(), catalog, gate, f.activity, logger.Discard(), page.DefaultLimit)
	return f
}

// seed creates a project owned by f.owner with a manager and a member.
func (f *fixture) seed(t *testing.T) *project.Project {
	t.Helper()
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.owner, CreateInput{Name: "Apollo"})
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, f.owner, p.ID, f.manager, f.managerRole)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, f.owner, p.ID, f.member, f.memberRole)
	require.NoError(t, err)
	return p
}

func TestCreateMakesOwnerAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "  moon shot  "
	p, err := f.svc.Create(ctx, f.owner, CreateInput{Name: "  Apollo ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Apollo", p.Name)
	assert.Equal(t, "moon shot", *p.Description)
	assert.Equal(t, project.StatusActive, p.Status)

	members, err := f.svc.ListMembers(ctx, f.owner, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, f.owner, members[0].UserID)
	assert.Equal(t, rbac.RoleAdmin, members[0].RoleName)

	ev := f.activity.Last()
	assert.Equal(t, activity.ActionCreated, ev.Action)
	assert.Equal(t, activity.EntityProject, ev.EntityType)
	assert.Equal(t, p.ID, ev.EntityID)
}

func TestCreateRejectsBlankName(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.owner, CreateInput{Name: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, f.activity.Events())
}

func TestListShowsOwnedAndJoinedProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	joined := f.seed(t)
	_, err := f.svc.Create(ctx, f.owner, CreateInput{Name: "Gemini"})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, f.owner, nil, page.Request{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Meta.Total)

	res, err = f.svc.List(ctx, f.member, nil, page.Request{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, joined.ID, res.Items[0].ID)

	res, err = f.svc.List(ctx, f.outsider, nil, page.Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	archived := project.StatusArchived
	res, err = f.svc.List(ctx, f.owner, &archived, page.Request{})
	require.NoError(t, err)
	assert.Zero(t, res.Meta.Total)

	res, err = f.svc.List(ctx, f.owner, nil, page.Request{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Meta.TotalPages)

	bogus := project.Status("paused")
	_, err = f.svc.List(ctx, f.owner, &bogus, page.Request{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGetRequiresParticipation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)

	_, err := f.svc.Get(ctx, f.member, p.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.outsider, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Get(ctx, f.owner, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateNeedsProjectUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)
	name := "Apollo 11"

	_, err := f.svc.Update(ctx, f.member, p.ID, project.UpdateProjectInput{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	status := project.StatusCompleted
	updated, err := f.svc.Update(ctx, f.manager, p.ID, project.UpdateProjectInput{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, project.StatusCompleted, updated.Status)

	ev := f.activity.Last()
	assert.Equal(t, activity.ActionUpdated, ev.Action)
	assert.Equal(t, f.manager, ev.UserID)
	assert.Equal(t, name, ev.Details["name"])

	_, err = f.svc.Update(ctx, f.owner, p.ID, project.UpdateProjectInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)

	// the admin matrix grants project:delete, but only the owner may delete
	assert.ErrorIs(t, f.svc.Delete(ctx, f.manager, p.ID), apperrors.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.owner, p.ID))

	_, err := f.svc.Get(ctx, f.owner, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddMemberFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)

	_, err := f.svc.AddMember(ctx, f.owner, p.ID, uuid.New(), f.memberRole)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.AddMember(ctx, f.owner, p.ID, f.outsider, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.AddMember(ctx, f.owner, p.ID, f.member, f.memberRole)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.svc.AddMember(ctx, f.member, p.ID, f.outsider, f.memberRole)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.AddMember(ctx, f.owner, p.ID, uuid.Nil, f.memberRole)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestManagerAddsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)

	m, err := f.svc.AddMember(ctx, f.manager, p.ID, f.outsider, f.memberRole)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleMember, m.RoleName)

	ev := f.activity.Last()
	assert.Equal(t, activity.ActionAssigned, ev.Action)
	assert.Equal(t, activity.EntityMember, ev.EntityType)
	assert.Equal(t, f.outsider, ev.Details["userId"])

	_, err = f.svc.Get(ctx, f.outsider, p.ID)
	assert.NoError(t, err)
}

func TestUpdateMemberRoleTakesEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)
	name := "Renamed"

	_, err := f.svc.Update(ctx, f.member, p.ID, project.UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	m, err := f.svc.UpdateMemberRole(ctx, f.owner, p.ID, f.member, f.managerRole)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, m.RoleName)
	assert.Equal(t, activity.ActionUpdated, f.activity.Last().Action)

	_, err = f.svc.Update(ctx, f.member, p.ID, project.UpdateProjectInput{Name: &name})
	assert.NoError(t, err)

	_, err = f.svc.UpdateMemberRole(ctx, f.owner, p.ID, f.outsider, f.memberRole)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveOwnerIsRejectedBeforePermissionCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)

	for _, caller := range []uuid.UUID{f.owner, f.manager, f.member} {
		err := f.svc.RemoveMember(ctx, caller, p.ID, f.owner)
		require.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Contains(t, err.Error(), "owner")
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t)

	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.member, p.ID, f.manager), apperrors.ErrForbidden)

	require.NoError(t, f.svc.RemoveMember(ctx, f.manager, p.ID, f.member))
	ev := f.activity.Last()
	assert.Equal(t, activity.ActionUnassigned, ev.Action)
	assert.Equal(t, f.member, ev.Details["userId"])

	_, err := f.svc.Get(ctx, f.member, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.manager, p.ID, f.member), apperrors.ErrNotFound)
}
