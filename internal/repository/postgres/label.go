package postgres

import (
	"context"
	"fmt"
	"strings"

	"projecthub/internal/domain/label"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const labelColumns = `id, project_id, name, color, created_at, updated_at`

type LabelRepository struct {
	db *DB
}

func NewLabelRepository(db *DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func scanLabel(row interface{ Scan(...any) error }) (*label.Label, error) {
	l := &label.Label{}
	err := row.Scan(&l.ID, &l.ProjectID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *LabelRepository) Create(ctx context.Context, input label.CreateLabelInput) (*label.Label, error) {
	query := `
		INSERT INTO labels (id, project_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + labelColumns

	l, err := scanLabel(r.db.SQL.QueryRowContext(ctx, query, uuid.New(), input.ProjectID, input.Name, input.Color))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errLabelNameTaken)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, wrapf(errFailedCreateLabelFmt, err)
	}
	return l, nil
}

func (r *LabelRepository) GetInProject(ctx context.Context, projectID, labelID uuid.UUID) (*label.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE id = $1 AND project_id = $2`

	l, err := scanLabel(r.db.SQL.QueryRowContext(ctx, query, labelID, projectID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errLabelNotFound)
		}
		return nil, wrapf(errFailedGetLabelFmt, err)
	}
	return l, nil
}

func (r *LabelRepository) ListForProject(ctx context.Context, projectID uuid.UUID) ([]*label.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE project_id = $1 ORDER BY name ASC`
	return r.list(ctx, query, projectID)
}

// ListForTask returns the labels attached to a task, by name.
func (r *LabelRepository) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*label.Label, error) {
	query := `
		SELECT l.id, l.project_id, l.name, l.color, l.created_at, l.updated_at
		FROM labels l
		JOIN task_labels tl ON tl.label_id = l.id
		WHERE tl.task_id = $1
		ORDER BY l.name ASC`
	return r.list(ctx, query, taskID)
}

func (r *LabelRepository) list(ctx context.Context, query string, arg uuid.UUID) ([]*label.Label, error) {
	rows, err := r.db.SQL.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, wrapf(errFailedListLabelsFmt, err)
	}
	defer rows.Close()

	labels := []*label.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, wrapf(errFailedScanLabelFmt, err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapf(errFailedListLabelsFmt, err)
	}
	return labels, nil
}

func (r *LabelRepository) Update(ctx context.Context, projectID, labelID uuid.UUID, input label.UpdateLabelInput) (*label.Label, error) {
	setClauses := []string{}
	args := []any{labelID, projectID}
	argCount := 3

	if input.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *input.Name)
		argCount++
	}

	if input.Color != nil {
		setClauses = append(setClauses, fmt.Sprintf("color = $%d", argCount))
		args = append(args, *input.Color)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := `UPDATE labels SET ` + strings.Join(setClauses, ", ") +
		` WHERE id = $1 AND project_id = $2 RETURNING ` + labelColumns

	l, err := scanLabel(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errLabelNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errLabelNameTaken)
		}
		return nil, wrapf(errFailedUpdateLabelFmt, err)
	}
	return l, nil
}

// Delete removes the label; its task attachments go with it.
func (r *LabelRepository) Delete(ctx context.Context, projectID, labelID uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM labels WHERE id = $1 AND project_id = $2`, labelID, projectID)
	if err != nil {
		return wrapf(errFailedDeleteLabelFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errLabelNotFound)
	}
	return nil
}

func (r *LabelRepository) Attach(ctx context.Context, taskID, labelID uuid.UUID) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2)`,
		taskID, labelID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(errLabelAttached)
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound(errTaskLabelMissing)
		}
		return wrapf(errFailedAttachLabelFmt, err)
	}
	return nil
}

func (r *LabelRepository) Detach(ctx context.Context, taskID, labelID uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM task_labels WHERE task_id = $1 AND label_id = $2`,
		taskID, labelID)
	if err != nil {
		return wrapf(errFailedDetachLabelFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errLabelNotAttached)
	}
	return nil
}
