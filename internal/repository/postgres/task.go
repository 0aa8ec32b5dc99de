package postgres

import (
	"context"
	"fmt"
	"strings"

	"projecthub/internal/domain/task"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const taskColumns = `id, project_id, title, description, status, priority, due_date, created_by_id, parent_task_id, created_at, updated_at`

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (*task.Task, error) {
	t := &task.Task{Assignees: []user.Summary{}}
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.CreatedByID, &t.ParentTaskID, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepository) Create(ctx context.Context, input task.CreateTaskInput) (*task.Task, error) {
	query := `
		INSERT INTO tasks (id, project_id, title, description, status, priority, due_date, created_by_id, parent_task_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + taskColumns

	t, err := scanTask(r.db.SQL.QueryRowContext(ctx, query,
		uuid.New(), input.ProjectID, input.Title, input.Description,
		string(task.StatusTodo), string(input.Priority), input.DueDate,
		input.CreatedByID, input.ParentTaskID,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errParentTaskAbsent)
		}
		return nil, wrapf(errFailedCreateTaskFmt, err)
	}
	return t, nil
}

// GetByID scopes the lookup to the project so ids from elsewhere read as missing.
func (r *TaskRepository) GetByID(ctx context.Context, projectID, taskID uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND project_id = $2`

	t, err := scanTask(r.db.SQL.QueryRowContext(ctx, query, taskID, projectID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, wrapf(errFailedGetTaskFmt, err)
	}

	if err := r.loadAssignees(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, int64, error) {
	where := []string{"t.project_id = $1"}
	args := []any{filter.ProjectID}
	argCount := 2

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("t.status = $%d", argCount))
		args = append(args, string(*filter.Status))
		argCount++
	}

	if filter.Priority != nil {
		where = append(where, fmt.Sprintf("t.priority = $%d", argCount))
		args = append(args, string(*filter.Priority))
		argCount++
	}

	if filter.AssigneeID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM task_assignees a WHERE a.task_id = t.id AND a.user_id = $%d)", argCount))
		args = append(args, *filter.AssigneeID)
		argCount++
	}

	if filter.LabelID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM task_labels tl WHERE tl.task_id = t.id AND tl.label_id = $%d)", argCount))
		args = append(args, *filter.LabelID)
		argCount++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("t.title ILIKE $%d ESCAPE '\\'", argCount))
		args = append(args, "%"+escapeLikePattern(search)+"%")
		argCount++
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks t WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, wrapf(errFailedCountTasksFmt, err)
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.project_id, t.title, t.description, t.status, t.priority, t.due_date,
		       t.created_by_id, t.parent_task_id, t.created_at, t.updated_at
		FROM tasks t
		WHERE %s
		ORDER BY t.created_at DESC, t.id
		LIMIT $%d OFFSET $%d`, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapf(errFailedListTasksFmt, err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, wrapf(errFailedScanTaskFmt, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapf(errFailedListTasksFmt, err)
	}

	if err := r.loadAssignees(ctx, tasks); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// loadAssignees fills Assignees for a page of tasks with one query.
func (r *TaskRepository) loadAssignees(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	placeholders := make([]string, 0, len(tasks))
	args := make([]any, 0, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = t
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, t.ID)
	}

	query := `
		SELECT a.task_id, u.id, u.email, u.display_name, u.avatar_url
		FROM task_assignees a
		JOIN users u ON u.id = a.user_id
		WHERE a.task_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY a.assigned_at ASC`

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return wrapf(errFailedListAssigneesFmt, err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID uuid.UUID
		var s user.Summary
		if err := rows.Scan(&taskID, &s.ID, &s.Email, &s.DisplayName, &s.AvatarURL); err != nil {
			return wrapf(errFailedListAssigneesFmt, err)
		}
		if t, ok := byID[taskID]; ok {
			t.Assignees = append(t.Assignees, s)
		}
	}
	if err := rows.Err(); err != nil {
		return wrapf(errFailedListAssigneesFmt, err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, projectID, taskID uuid.UUID, input task.UpdateTaskInput) (*task.Task, error) {
	setClauses := []string{}
	args := []any{taskID, projectID}
	argCount := 3

	if input.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argCount))
		args = append(args, *input.Title)
		argCount++
	}

	if input.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *input.Description)
		argCount++
	}

	if input.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argCount))
		args = append(args, string(*input.Status))
		argCount++
	}

	if input.Priority != nil {
		setClauses = append(setClauses, fmt.Sprintf("priority = $%d", argCount))
		args = append(args, string(*input.Priority))
		argCount++
	}

	if input.DueDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("due_date = $%d", argCount))
		args = append(args, *input.DueDate)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := `UPDATE tasks SET ` + strings.Join(setClauses, ", ") +
		` WHERE id = $1 AND project_id = $2 RETURNING ` + taskColumns

	t, err := scanTask(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, wrapf(errFailedUpdateTaskFmt, err)
	}

	if err := r.loadAssignees(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, projectID, taskID uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND project_id = $2`, taskID, projectID)
	if err != nil {
		return wrapf(errFailedDeleteTaskFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errTaskNotFound)
	}
	return nil
}

func (r *TaskRepository) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)`,
		taskID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(errAssigneeExists)
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound(errUserNotFound)
		}
		return wrapf(errFailedAddAssigneeFmt, err)
	}
	return nil
}

func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`,
		taskID, userID)
	if err != nil {
		return wrapf(errFailedRemoveAssigneeFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errAssigneeNotFound)
	}
	return nil
}
