package audit

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/page"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/logger"
	"projecthub/pkg/metrics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryColumns = []string{
	"id", "project_id", "name", "user_id", "action", "entity_type", "entity_id", "details", "created_at",
	"uid", "email", "display_name", "avatar_url",
}

func newTestLogger(t *testing.T) (*Logger, sqlmock.Sqlmock, *metrics.Metrics) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	m := metrics.New()
	l := NewLogger(db, logger.Discard(), m)
	l.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return l, mock, m
}

func validEvent() activity.Event {
	return activity.Event{
		ProjectID:  uuid.New(),
		UserID:     uuid.New(),
		Action:     activity.ActionCreated,
		EntityType: activity.EntityTask,
		EntityID:   uuid.New(),
		Details:    map[string]any{"title": "Write docs"},
	}
}

func TestRecordWritesEntry(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	ev := validEvent()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WithArgs(sqlmock.AnyArg(), ev.ProjectID, ev.UserID, "created", "task", ev.EntityID, `{"title":"Write docs"}`, l.now()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, l.Record(context.Background(), ev))
}

func TestRecordRejectsInvalidEvents(t *testing.T) {
	l, _, _ := newTestLogger(t)

	cases := map[string]func(*activity.Event){
		"nil project":    func(e *activity.Event) { e.ProjectID = uuid.Nil },
		"nil user":       func(e *activity.Event) { e.UserID = uuid.Nil },
		"nil entity":     func(e *activity.Event) { e.EntityID = uuid.Nil },
		"unknown action": func(e *activity.Event) { e.Action = "archived" },
		"unknown entity": func(e *activity.Event) { e.EntityType = "invoice" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := validEvent()
			mutate(&ev)
			assert.ErrorIs(t, l.Record(context.Background(), ev), apperrors.ErrValidation)
		})
	}
}

func TestRecordSwallowsStorageFailure(t *testing.T) {
	l, mock, m := newTestLogger(t)
	var out bytes.Buffer
	base := logger.NewWithWriter(&out, "info", "json")
	l.log = base.WithField("component", "audit")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WillReturnError(errors.New("disk full"))

	require.NoError(t, l.Record(context.Background(), validEvent()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditWriteFailures))
	assert.Contains(t, out.String(), msgActivityWriteFail)
}

func TestRecordReportsUnknownProjectOrUser(t *testing.T) {
	l, mock, m := newTestLogger(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := l.Record(context.Background(), validEvent())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.AuditWriteFailures))
}

func TestRecordSurvivesCancelledRequest(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, l.Record(ctx, validEvent()))
}

func TestListForProjectFiltersAndPages(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	projectID, userID := uuid.New(), uuid.New()
	action := activity.ActionUpdated
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to, err := ParseBound("2026-10-02", true)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_logs a WHERE a.project_id = $1 AND a.action = $2 AND a.created_at >= $3 AND a.created_at <= $4")).
		WithArgs(projectID, "updated", from, *to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(21)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.created_at DESC, a.id LIMIT $5 OFFSET $6")).
		WithArgs(projectID, "updated", from, *to, 20, 20).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(
			uuid.NewString(), projectID.String(), "Apollo", userID.String(), "updated", "task", uuid.NewString(),
			[]byte(`{"status":"done"}`), time.Now(), userID.String(), "ann@example.com", "Ann", nil))

	res, err := l.ListForProject(context.Background(), projectID,
		activity.Filter{Action: &action, From: &from, To: to},
		page.Request{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(21), res.Meta.Total)
	assert.Equal(t, 2, res.Meta.TotalPages)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Ann", res.Items[0].User.DisplayName)
	assert.JSONEq(t, `{"status":"done"}`, string(res.Items[0].Details))
}

func TestListForProjectRejectsBadFilter(t *testing.T) {
	l, _, _ := newTestLogger(t)
	bad := activity.Action("archived")
	_, err := l.ListForProject(context.Background(), uuid.New(), activity.Filter{Action: &bad}, page.Request{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = l.ListForProject(context.Background(), uuid.New(), activity.Filter{From: &from, To: &to}, page.Request{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRecentForProjectClampsLimit(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	projectID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.project_id = $1 ORDER BY a.created_at DESC, a.id LIMIT $2")).
		WithArgs(projectID, 20).
		WillReturnRows(sqlmock.NewRows(entryColumns))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.project_id = $1 ORDER BY a.created_at DESC, a.id LIMIT $2")).
		WithArgs(projectID, 100).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	_, err := l.RecentForProject(context.Background(), projectID, 0)
	require.NoError(t, err)
	_, err = l.RecentForProject(context.Background(), projectID, 500)
	require.NoError(t, err)
}

func TestListForUser(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_logs a WHERE a.user_id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.user_id = $1 ORDER BY a.created_at DESC")).
		WithArgs(userID, 20, 0).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	res, err := l.ListForUser(context.Background(), userID, page.Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Meta.Page)
}

func TestParseBound(t *testing.T) {
	got, err := ParseBound("2026-10-15", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 23, 59, 59, 999999999, time.UTC), *got)

	got, err = ParseBound("2026-10-15", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseBound("2026-10-15T08:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	got, err = ParseBound("", true)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseBound("15/10/2026", false)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
