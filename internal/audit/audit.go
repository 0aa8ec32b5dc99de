package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/page"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout       = 2 * time.Second
	defaultRecentLimit = 20
	maxRecentLimit     = 100

	dateOnlyLayout = "2006-01-02"

	errMissingProjectID  = "activity requires a project id"
	errMissingUserID     = "activity requires a user id"
	errMissingEntityID   = "activity requires an entity id"
	errUnknownReference  = "activity references an unknown project or user"
	errInvalidActivity   = "invalid activity entry"
	errInvalidRange      = "from must not be after to"
	errInvalidDateFmt    = "invalid date %q: use YYYY-MM-DD or RFC 3339"
	errCountActivityFmt  = "failed to count activity: %w"
	errListActivityFmt   = "failed to list activity: %w"
	errScanActivityFmt   = "failed to scan activity: %w"
	msgActivityWriteFail = "failed to record activity"

	pgForeignKeyViolation = "23503"
)

const entrySelect = `
	SELECT a.id, a.project_id, p.name, a.user_id, a.action, a.entity_type, a.entity_id, a.details, a.created_at,
	       u.id, u.email, u.display_name, u.avatar_url
	FROM activity_logs a
	JOIN projects p ON p.id = a.project_id
	JOIN users u ON u.id = a.user_id
`

// Logger is the append-only activity ledger. Entries are never updated or
// deleted except by project cascade.
type Logger struct {
	db      *sql.DB
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewLogger(db *sql.DB, log logrus.FieldLogger, m *metrics.Metrics) *Logger {
	return &Logger{
		db:      db,
		log:     log.WithField("component", "audit"),
		metrics: m,
		now:     time.Now,
	}
}

// Validate checks an event before it is written.
func Validate(ev activity.Event) error {
	var problems []string
	if ev.ProjectID == uuid.Nil {
		problems = append(problems, errMissingProjectID)
	}
	if ev.UserID == uuid.Nil {
		problems = append(problems, errMissingUserID)
	}
	if ev.EntityID == uuid.Nil {
		problems = append(problems, errMissingEntityID)
	}
	if err := ev.Action.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := ev.EntityType.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return apperrors.Validation(errInvalidActivity, problems...)
	}
	return nil
}

// Record stores one event after the mutation it describes has been committed.
// It runs detached from request cancellation with its own short deadline.
// Invalid events are returned as validation errors and events pointing at a
// project or user that does not exist as NotFound. Other storage failures are
// logged and counted but never surface to the caller.
func (l *Logger) Record(ctx context.Context, ev activity.Event) error {
	if err := Validate(ev); err != nil {
		return err
	}

	var details any
	if len(ev.Details) > 0 {
		b, err := json.Marshal(ev.Details)
		if err != nil {
			return apperrors.Validation(errInvalidActivity, err.Error())
		}
		details = string(b)
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	_, err := l.db.ExecContext(wctx, `
		INSERT INTO activity_logs (id, project_id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		uuid.New(), ev.ProjectID, ev.UserID, string(ev.Action), string(ev.EntityType), ev.EntityID, details, l.now(),
	)
	if err == nil {
		return nil
	}

	entry := l.log.WithError(err).WithFields(logrus.Fields{
		"project_id":  ev.ProjectID,
		"user_id":     ev.UserID,
		"action":      ev.Action,
		"entity_type": ev.EntityType,
		"entity_id":   ev.EntityID,
	})
	if isForeignKeyViolation(err) {
		entry.Warn(errUnknownReference)
		return apperrors.NotFound(errUnknownReference)
	}
	l.metrics.ObserveAuditFailure()
	entry.Error(msgActivityWriteFail)
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// ListForProject returns one page of the project's ledger, newest first.
func (l *Logger) ListForProject(ctx context.Context, projectID uuid.UUID, filter activity.Filter, req page.Request) (*page.Result[*activity.Entry], error) {
	where, args, err := projectWhere(projectID, filter)
	if err != nil {
		return nil, err
	}
	return l.paged(ctx, where, args, req)
}

// RecentForProject returns the latest limit entries. limit defaults to 20 and
// is capped at 100.
func (l *Logger) RecentForProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*activity.Entry, error) {
	if limit < 1 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := entrySelect + ` WHERE a.project_id = $1 ORDER BY a.created_at DESC, a.id LIMIT $2`
	return l.query(ctx, query, projectID, limit)
}

// ListForUser returns entries performed by userID across every project.
func (l *Logger) ListForUser(ctx context.Context, userID uuid.UUID, req page.Request) (*page.Result[*activity.Entry], error) {
	return l.paged(ctx, "a.user_id = $1", []any{userID}, req)
}

// EachForProject streams every entry matching filter, oldest first.
func (l *Logger) EachForProject(ctx context.Context, projectID uuid.UUID, filter activity.Filter, fn func(*activity.Entry) error) error {
	where, args, err := projectWhere(projectID, filter)
	if err != nil {
		return err
	}

	rows, err := l.db.QueryContext(ctx, entrySelect+` WHERE `+where+` ORDER BY a.created_at ASC, a.id`, args...)
	if err != nil {
		return fmt.Errorf(errListActivityFmt, err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return fmt.Errorf(errScanActivityFmt, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (l *Logger) paged(ctx context.Context, where string, args []any, req page.Request) (*page.Result[*activity.Entry], error) {
	req = req.Normalize(page.DefaultLimit)

	var total int64
	countQuery := `SELECT COUNT(*) FROM activity_logs a WHERE ` + where
	if err := l.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf(errCountActivityFmt, err)
	}

	n := len(args)
	query := entrySelect + ` WHERE ` + where +
		fmt.Sprintf(` ORDER BY a.created_at DESC, a.id LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, req.Limit, req.Offset())

	items, err := l.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &page.Result[*activity.Entry]{Items: items, Meta: page.NewMeta(req, total)}, nil
}

func (l *Logger) query(ctx context.Context, query string, args ...any) ([]*activity.Entry, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(errListActivityFmt, err)
	}
	defer rows.Close()

	entries := []*activity.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanActivityFmt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errListActivityFmt, err)
	}
	return entries, nil
}

func scanEntry(row interface{ Scan(...any) error }) (*activity.Entry, error) {
	e := &activity.Entry{User: &user.Summary{}}
	var details []byte
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.ProjectName, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt,
		&e.User.ID, &e.User.Email, &e.User.DisplayName, &e.User.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		e.Details = json.RawMessage(details)
	}
	return e, nil
}

func projectWhere(projectID uuid.UUID, filter activity.Filter) (string, []any, error) {
	if projectID == uuid.Nil {
		return "", nil, apperrors.Validation(errMissingProjectID)
	}

	where := []string{"a.project_id = $1"}
	args := []any{projectID}
	argCount := 2

	if filter.Action != nil {
		if err := filter.Action.Validate(); err != nil {
			return "", nil, apperrors.Validation(err.Error())
		}
		where = append(where, fmt.Sprintf("a.action = $%d", argCount))
		args = append(args, string(*filter.Action))
		argCount++
	}

	if filter.EntityType != nil {
		if err := filter.EntityType.Validate(); err != nil {
			return "", nil, apperrors.Validation(err.Error())
		}
		where = append(where, fmt.Sprintf("a.entity_type = $%d", argCount))
		args = append(args, string(*filter.EntityType))
		argCount++
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return "", nil, apperrors.Validation(errInvalidRange)
	}

	if filter.From != nil {
		where = append(where, fmt.Sprintf("a.created_at >= $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}

	if filter.To != nil {
		where = append(where, fmt.Sprintf("a.created_at <= $%d", argCount))
		args = append(args, *filter.To)
	}

	return strings.Join(where, " AND "), args, nil
}

// ParseBound reads a range bound from a query string. A date-only upper bound
// is moved to the last instant of that day so the whole day is included.
func ParseBound(raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf(errInvalidDateFmt, raw))
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
