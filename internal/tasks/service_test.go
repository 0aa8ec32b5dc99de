package tasks

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/label"
	"projecthub/internal/domain/page"
	"projecthub/internal/domain/project"
	"projecthub/internal/domain/task"
	"projecthub/internal/domain/user"
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
	project  uuid.UUID

	owner    uuid.UUID
	manager  uuid.UUID
	member   uuid.UUID
	outsider uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	catalog := rbac.NewCatalog(store.Roles(), nil, logger.Discard(), nil)
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
	for _, id := range []uuid.UUID{f.owner, f.manager, f.member, f.outsider} {
		store.AddUser(user.Summary{ID: id, Email: id.String() + "@example.com", DisplayName: "User"})
	}

	admin, err := catalog.GetByName(ctx, rbac.RoleAdmin)
	require.NoError(t, err)
	manager, err := catalog.GetByName(ctx, rbac.RoleManager)
	require.NoError(t, err)
	member, err := catalog.GetByName(ctx, rbac.RoleMember)
	require.NoError(t, err)

	projects := store.Projects()
	p, err := projects.CreateWithOwner(ctx, project.CreateProjectInput{Name: "Apollo", OwnerID: f.owner, OwnerRoleID: admin.ID})
	require.NoError(t, err)
	_, err = projects.AddMember(ctx, project.AddMemberInput{ProjectID: p.ID, UserID: f.manager, RoleID: manager.ID})
	require.NoError(t, err)
	_, err = projects.AddMember(ctx, project.AddMemberInput{ProjectID: p.ID, UserID: f.member, RoleID: member.ID})
	require.NoError(t, err)
	f.project = p.ID

	f.svc = NewService(store.Tasks(), gate, f.activity, logger.Discard(), page.DefaultLimit)
	return f
}

func (f *fixture) create(t *testing.T, title string) *task.Task {
	t.Helper()
	tk, err := f.svc.Create(context.Background(), f.member, f.project, CreateInput{Title: title})
	require.NoError(t, err)
	return tk
}

func TestCreateDefaultsAndRecords(t *testing.T) {
	f := newFixture(t)

	tk := f.create(t, "  Write docs ")
	assert.Equal(t, "Write docs", tk.Title)
	assert.Equal(t, task.StatusTodo, tk.Status)
	assert.Equal(t, task.PriorityMedium, tk.Priority)
	assert.Equal(t, f.member, tk.CreatedByID)

	ev := f.activity.Last()
	assert.Equal(t, activity.ActionCreated, ev.Action)
	assert.Equal(t, activity.EntityTask, ev.EntityType)
	assert.Equal(t, tk.ID, ev.EntityID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.member, f.project, CreateInput{Title: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.Create(ctx, f.member, f.project, CreateInput{Title: "x", Priority: "critical"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	missing := uuid.New()
	_, err = f.svc.Create(ctx, f.member, f.project, CreateInput{Title: "x", ParentTaskID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Create(ctx, f.outsider, f.project, CreateInput{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSubtaskKeepsParent(t *testing.T) {
	f := newFixture(t)
	parent := f.create(t, "Epic")

	child, err := f.svc.Create(context.Background(), f.member, f.project, CreateInput{Title: "Story", ParentTaskID: &parent.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentTaskID)
	assert.Equal(t, parent.ID, *child.ParentTaskID)
}

func TestListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Fix login bug")
	second := f.create(t, "Write release notes")

	high := task.PriorityHigh
	_, err := f.svc.Update(ctx, f.manager, f.project, second.ID, task.UpdateTaskInput{Priority: &high})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, f.member, f.project, ListFilter{Search: "LOGIN"}, page.Request{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Fix login bug", res.Items[0].Title)

	res, err = f.svc.List(ctx, f.member, f.project, ListFilter{Priority: &high}, page.Request{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, second.ID, res.Items[0].ID)

	res, err = f.svc.List(ctx, f.member, f.project, ListFilter{}, page.Request{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Meta.Total)
	assert.Len(t, res.Items, 1)

	_, err = f.svc.List(ctx, f.outsider, f.project, ListFilter{}, page.Request{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	bad := task.Status("blocked")
	_, err = f.svc.List(ctx, f.member, f.project, ListFilter{Status: &bad}, page.Request{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateToDoneRecordsCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.create(t, "Ship it")

	review := task.StatusReview
	_, err := f.svc.Update(ctx, f.member, f.project, tk.ID, task.UpdateTaskInput{Status: &review})
	require.NoError(t, err)
	assert.Equal(t, activity.ActionUpdated, f.activity.Last().Action)

	done := task.StatusDone
	updated, err := f.svc.Update(ctx, f.member, f.project, tk.ID, task.UpdateTaskInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, updated.Status)
	assert.Equal(t, activity.ActionCompleted, f.activity.Last().Action)

	// already done: a further edit is an ordinary update
	title := "Shipped"
	_, err = f.svc.Update(ctx, f.member, f.project, tk.ID, task.UpdateTaskInput{Title: &title, Status: &done})
	require.NoError(t, err)
	assert.Equal(t, activity.ActionUpdated, f.activity.Last().Action)
}

func TestUpdateAndDeleteFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.create(t, "Task")

	_, err := f.svc.Update(ctx, f.member, f.project, tk.ID, task.UpdateTaskInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	due := time.Now().Add(48 * time.Hour)
	_, err = f.svc.Update(ctx, f.member, f.project, uuid.New(), task.UpdateTaskInput{DueDate: &due})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// the member role cannot delete
	assert.ErrorIs(t, f.svc.Delete(ctx, f.member, f.project, tk.ID), apperrors.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.manager, f.project, tk.ID))
	assert.Equal(t, activity.ActionDeleted, f.activity.Last().Action)

	_, err = f.svc.Get(ctx, f.member, f.project, tk.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTaskFromAnotherProjectIsNotFound(t *testing.T) {
	f := newFixture(t)
	tk := f.create(t, "Scoped")

	_, err := f.svc.Get(context.Background(), f.owner, uuid.New(), tk.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAssignAndUnassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.create(t, "Pair on it")

	// member role lacks task:assign
	_, err := f.svc.Assign(ctx, f.member, f.project, tk.ID, f.member)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := f.svc.Assign(ctx, f.manager, f.project, tk.ID, f.member)
	require.NoError(t, err)
	require.Len(t, got.Assignees, 1)
	assert.Equal(t, f.member, got.Assignees[0].ID)
	assert.Equal(t, activity.ActionAssigned, f.activity.Last().Action)

	_, err = f.svc.Assign(ctx, f.manager, f.project, tk.ID, f.member)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.svc.Assign(ctx, f.manager, f.project, tk.ID, f.outsider)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	res, err := f.svc.List(ctx, f.member, f.project, ListFilter{AssigneeID: &f.member}, page.Request{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	require.NoError(t, f.svc.Unassign(ctx, f.manager, f.project, tk.ID, f.member))
	assert.Equal(t, activity.ActionUnassigned, f.activity.Last().Action)
	assert.ErrorIs(t, f.svc.Unassign(ctx, f.manager, f.project, tk.ID, f.member), apperrors.ErrNotFound)
}

func TestListFiltersByLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tagged := f.create(t, "Tagged")
	f.create(t, "Plain")

	bug, err := f.store.Labels().Create(ctx, label.CreateLabelInput{ProjectID: f.project, Name: "Bug", Color: "#FF0000"})
	require.NoError(t, err)
	require.NoError(t, f.store.Labels().Attach(ctx, tagged.ID, bug.ID))

	res, err := f.svc.List(ctx, f.member, f.project, ListFilter{LabelID: &bug.ID}, page.Request{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, tagged.ID, res.Items[0].ID)
	assert.Equal(t, int64(1), res.Meta.Total)
}
