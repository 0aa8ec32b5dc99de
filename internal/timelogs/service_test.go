package timelogs

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/project"
	"projecthub/internal/domain/task"
	"projecthub/internal/domain/timelog"
	"projecthub/internal/domain/user"
	"projecthub/internal/rbac"
	"projecthub/internal/repository/memory"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	activity *memory.Activity
	project  uuid.UUID
	taskA    uuid.UUID
	taskB    uuid.UUID

	owner    uuid.UUID
	manager  uuid.UUID
	author   uuid.UUID
	peer     uuid.UUID
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
		activity: &memory.Activity{},
		owner:    uuid.New(),
		manager:  uuid.New(),
		author:   uuid.New(),
		peer:     uuid.New(),
		outsider: uuid.New(),
	}
	names := map[uuid.UUID]string{f.owner: "Olga", f.manager: "Mia", f.author: "Ann", f.peer: "Pete", f.outsider: "Xan"}
	for id, name := range names {
		store.AddUser(user.Summary{ID: id, Email: id.String() + "@example.com", DisplayName: name})
	}

	roles := map[string]uuid.UUID{}
	for _, name := range []string{rbac.RoleAdmin, rbac.RoleManager, rbac.RoleMember} {
		r, err := catalog.GetByName(ctx, name)
		require.NoError(t, err)
		roles[name] = r.ID
	}

	projects := store.Projects()
	p, err := projects.CreateWithOwner(ctx, project.CreateProjectInput{Name: "Apollo", OwnerID: f.owner, OwnerRoleID: roles[rbac.RoleAdmin]})
	require.NoError(t, err)
	for id, role := range map[uuid.UUID]string{f.manager: rbac.RoleManager, f.author: rbac.RoleMember, f.peer: rbac.RoleMember} {
		_, err = projects.AddMember(ctx, project.AddMemberInput{ProjectID: p.ID, UserID: id, RoleID: roles[role]})
		require.NoError(t, err)
	}
	f.project = p.ID

	for _, dst := range []*uuid.UUID{&f.taskA, &f.taskB} {
		tk, err := store.Tasks().Create(ctx, task.CreateTaskInput{ProjectID: p.ID, Title: "Task", Priority: task.PriorityLow, CreatedByID: f.owner})
		require.NoError(t, err)
		*dst = tk.ID
	}

	f.svc = NewService(store.TimeLogs(), store.Tasks(), gate, f.activity, logger.Discard())
	f.svc.now = func() time.Time { return day }
	return f
}

func (f *fixture) log(t *testing.T, userID, taskID uuid.UUID, minutes int, at time.Time) *timelog.TimeLog {
	t.Helper()
	l, err := f.svc.Create(context.Background(), userID, f.project, taskID, CreateInput{DurationMinutes: minutes, LoggedAt: at})
	require.NoError(t, err)
	return l
}

func TestCreateDefaultsLoggedAt(t *testing.T) {
	f := newFixture(t)
	desc := "  pairing "

	l, err := f.svc.Create(context.Background(), f.author, f.project, f.taskA, CreateInput{DurationMinutes: 45, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, day, l.LoggedAt)
	assert.Equal(t, "pairing", *l.Description)

	ev := f.activity.Last()
	assert.Equal(t, activity.ActionCreated, ev.Action)
	assert.Equal(t, activity.EntityTimeLog, ev.EntityType)
	assert.Equal(t, 45, ev.Details["durationMinutes"])
}

func TestCreateFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, minutes := range []int{0, -5, 24*60 + 1} {
		_, err := f.svc.Create(ctx, f.author, f.project, f.taskA, CreateInput{DurationMinutes: minutes})
		assert.ErrorIs(t, err, apperrors.ErrValidation, "minutes=%d", minutes)
	}

	_, err := f.svc.Create(ctx, f.author, f.project, uuid.New(), CreateInput{DurationMinutes: 10})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Create(ctx, f.outsider, f.project, f.taskA, CreateInput{DurationMinutes: 10})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestListDateRangeIsInclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, f.author, f.taskA, 30, day.AddDate(0, 0, -2))
	f.log(t, f.author, f.taskA, 30, day)
	f.log(t, f.author, f.taskA, 30, day.AddDate(0, 0, 2))

	from, to := day, day
	got, err := f.svc.List(ctx, f.peer, f.project, f.taskA, &from, &to)
	require.NoError(t, err)
	require.Len(t, got, 1)

	all, err := f.svc.List(ctx, f.peer, f.project, f.taskA, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].LoggedAt.After(all[2].LoggedAt))

	later := day.Add(time.Hour)
	_, err = f.svc.List(ctx, f.peer, f.project, f.taskA, &later, &from)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateAndDeleteAuthorOrPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.log(t, f.author, f.taskA, 30, day)
	minutes := 90

	_, err := f.svc.Update(ctx, f.peer, f.project, l.ID, timelog.UpdateTimeLogInput{DurationMinutes: &minutes})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := f.svc.Update(ctx, f.author, f.project, l.ID, timelog.UpdateTimeLogInput{DurationMinutes: &minutes})
	require.NoError(t, err)
	assert.Equal(t, 90, updated.DurationMinutes)
	assert.Equal(t, activity.ActionUpdated, f.activity.Last().Action)

	_, err = f.svc.Update(ctx, f.author, f.project, l.ID, timelog.UpdateTimeLogInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.peer, f.project, l.ID), apperrors.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.manager, f.project, l.ID))
	assert.Equal(t, activity.ActionDeleted, f.activity.Last().Action)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.author, f.project, l.ID), apperrors.ErrNotFound)
}

func TestOutsiderCannotTellMissingFromHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.log(t, f.author, f.taskA, 30, day)
	minutes := 45

	for _, id := range []uuid.UUID{l.ID, uuid.New()} {
		_, err := f.svc.Update(ctx, f.outsider, f.project, id, timelog.UpdateTimeLogInput{DurationMinutes: &minutes})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.ErrorIs(t, f.svc.Delete(ctx, f.outsider, f.project, id), apperrors.ErrForbidden)
	}

	_, err := f.svc.Update(ctx, f.peer, f.project, uuid.New(), timelog.UpdateTimeLogInput{DurationMinutes: &minutes})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReportTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, f.author, f.taskA, 60, day)
	f.log(t, f.author, f.taskB, 30, day)
	f.log(t, f.peer, f.taskA, 15, day)
	f.log(t, f.peer, f.taskA, 600, day.AddDate(0, -1, 0))

	from := day.Add(-time.Hour)
	report, err := f.svc.Report(ctx, f.manager, f.project, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(105), report.TotalMinutes)
	require.Len(t, report.ByUser, 2)
	assert.Equal(t, "Ann", report.ByUser[0].DisplayName)
	assert.Equal(t, int64(90), report.ByUser[0].TotalMinutes)
	require.Len(t, report.ByTask, 2)
	assert.Equal(t, f.taskA, report.ByTask[0].TaskID)
	assert.Equal(t, int64(75), report.ByTask[0].TotalMinutes)

	_, err = f.svc.Report(ctx, f.outsider, f.project, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
