package postgres

import (
	"context"
	"fmt"
	"strings"

	"projecthub/internal/domain/timelog"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const timeLogSelect = `
	SELECT l.id, l.task_id, l.user_id, l.duration_minutes, l.description, l.logged_at, l.created_at,
	       u.id, u.email, u.display_name, u.avatar_url
	FROM time_logs l
	JOIN users u ON u.id = l.user_id
`

type TimeLogRepository struct {
	db *DB
}

func NewTimeLogRepository(db *DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

func scanTimeLog(row interface{ Scan(...any) error }) (*timelog.TimeLog, error) {
	l := &timelog.TimeLog{User: &user.Summary{}}
	err := row.Scan(
		&l.ID, &l.TaskID, &l.UserID, &l.DurationMinutes, &l.Description, &l.LoggedAt, &l.CreatedAt,
		&l.User.ID, &l.User.Email, &l.User.DisplayName, &l.User.AvatarURL,
	)
	return l, err
}

func (r *TimeLogRepository) Create(ctx context.Context, projectID uuid.UUID, input timelog.CreateTimeLogInput) (*timelog.TimeLog, error) {
	id := uuid.New()
	_, err := r.db.SQL.ExecContext(ctx, `
		INSERT INTO time_logs (id, task_id, user_id, duration_minutes, description, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, input.TaskID, input.UserID, input.DurationMinutes, input.Description, input.LoggedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, wrapf(errFailedCreateTimeLogFmt, err)
	}
	return r.GetInProject(ctx, projectID, id)
}

func (r *TimeLogRepository) GetInProject(ctx context.Context, projectID, id uuid.UUID) (*timelog.TimeLog, error) {
	query := timeLogSelect + `
		JOIN tasks t ON t.id = l.task_id
		WHERE l.id = $1 AND t.project_id = $2`

	l, err := scanTimeLog(r.db.SQL.QueryRowContext(ctx, query, id, projectID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errTimeLogNotFound)
		}
		return nil, wrapf(errFailedGetTimeLogFmt, err)
	}
	return l, nil
}

// ListForTask returns entries newest first. Both date bounds are inclusive.
func (r *TimeLogRepository) ListForTask(ctx context.Context, filter timelog.ListFilter) ([]*timelog.TimeLog, error) {
	where := []string{"l.task_id = $1"}
	args := []any{filter.TaskID}
	argCount := 2

	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("l.logged_at >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("l.logged_at <= $%d", argCount))
		args = append(args, *filter.EndDate)
	}

	query := timeLogSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY l.logged_at DESC`

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapf(errFailedListTimeLogsFmt, err)
	}
	defer rows.Close()

	logs := []*timelog.TimeLog{}
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, wrapf(errFailedScanTimeLogFmt, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapf(errFailedListTimeLogsFmt, err)
	}
	return logs, nil
}

func (r *TimeLogRepository) Update(ctx context.Context, projectID, id uuid.UUID, input timelog.UpdateTimeLogInput) (*timelog.TimeLog, error) {
	setClauses := []string{}
	args := []any{id, projectID}
	argCount := 3

	if input.DurationMinutes != nil {
		setClauses = append(setClauses, fmt.Sprintf("duration_minutes = $%d", argCount))
		args = append(args, *input.DurationMinutes)
		argCount++
	}

	if input.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *input.Description)
		argCount++
	}

	if input.LoggedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("logged_at = $%d", argCount))
		args = append(args, *input.LoggedAt)
	}

	if len(setClauses) == 0 {
		return r.GetInProject(ctx, projectID, id)
	}

	query := `UPDATE time_logs SET ` + strings.Join(setClauses, ", ") +
		` WHERE id = $1 AND task_id IN (SELECT id FROM tasks WHERE project_id = $2)`

	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapf(errFailedUpdateTimeLogFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.NotFound(errTimeLogNotFound)
	}
	return r.GetInProject(ctx, projectID, id)
}

func (r *TimeLogRepository) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `
		DELETE FROM time_logs
		WHERE id = $1 AND task_id IN (SELECT id FROM tasks WHERE project_id = $2)`,
		id, projectID)
	if err != nil {
		return wrapf(errFailedDeleteTimeLogFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errTimeLogNotFound)
	}
	return nil
}

// Report sums minutes per user and per task over the project's logs.
func (r *TimeLogRepository) Report(ctx context.Context, filter timelog.ReportFilter) (*timelog.Report, error) {
	where := []string{"t.project_id = $1"}
	args := []any{filter.ProjectID}
	argCount := 2

	if filter.From != nil {
		where = append(where, fmt.Sprintf("l.logged_at >= $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}

	if filter.To != nil {
		where = append(where, fmt.Sprintf("l.logged_at <= $%d", argCount))
		args = append(args, *filter.To)
	}

	cond := strings.Join(where, " AND ")
	report := &timelog.Report{ByUser: []timelog.UserTotal{}, ByTask: []timelog.TaskTotal{}}

	rows, err := r.db.SQL.QueryContext(ctx, `
		SELECT u.id, u.display_name, SUM(l.duration_minutes)
		FROM time_logs l
		JOIN tasks t ON t.id = l.task_id
		JOIN users u ON u.id = l.user_id
		WHERE `+cond+`
		GROUP BY u.id, u.display_name
		ORDER BY 3 DESC`, args...)
	if err != nil {
		return nil, wrapf(errFailedTimeReportFmt, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ut timelog.UserTotal
		if err := rows.Scan(&ut.UserID, &ut.DisplayName, &ut.TotalMinutes); err != nil {
			return nil, wrapf(errFailedTimeReportFmt, err)
		}
		report.ByUser = append(report.ByUser, ut)
		report.TotalMinutes += ut.TotalMinutes
	}
	if err := rows.Err(); err != nil {
		return nil, wrapf(errFailedTimeReportFmt, err)
	}

	taskRows, err := r.db.SQL.QueryContext(ctx, `
		SELECT t.id, t.title, SUM(l.duration_minutes)
		FROM time_logs l
		JOIN tasks t ON t.id = l.task_id
		WHERE `+cond+`
		GROUP BY t.id, t.title
		ORDER BY 3 DESC`, args...)
	if err != nil {
		return nil, wrapf(errFailedTimeReportFmt, err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		var tt timelog.TaskTotal
		if err := taskRows.Scan(&tt.TaskID, &tt.Title, &tt.TotalMinutes); err != nil {
			return nil, wrapf(errFailedTimeReportFmt, err)
		}
		report.ByTask = append(report.ByTask, tt)
	}
	if err := taskRows.Err(); err != nil {
		return nil, wrapf(errFailedTimeReportFmt, err)
	}

	return report, nil
}
