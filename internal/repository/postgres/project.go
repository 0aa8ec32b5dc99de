package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"projecthub/internal/domain/project"
	"projecthub/internal/rbac"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const projectColumns = `id, name, description, status, owner_id, created_at, updated_at`

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row interface{ Scan(...any) error }) (*project.Project, error) {
	p := &project.Project{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateWithOwner inserts the project and the owner's membership together.
func (r *ProjectRepository) CreateWithOwner(ctx context.Context, input project.CreateProjectInput) (*project.Project, error) {
	var created *project.Project

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO projects (id, name, description, status, owner_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + projectColumns

		p, err := scanProject(tx.QueryRowContext(ctx, query,
			uuid.New(), input.Name, input.Description, string(project.StatusActive), input.OwnerID))
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NotFound(errUserNotFound)
			}
			return wrapf(errFailedCreateProjectFmt, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (id, project_id, user_id, role_id) VALUES ($1, $2, $3, $4)`,
			uuid.New(), p.ID, input.OwnerID, input.OwnerRoleID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NotFound(errRoleNotFound)
			}
			return wrapf(errFailedAddOwnerMemberFmt, err)
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := scanProject(r.db.SQL.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, wrapf(errFailedGetProjectFmt, err)
	}
	return p, nil
}

// ListForUser returns projects the user owns or belongs to, newest first,
// together with the unpaged total.
func (r *ProjectRepository) ListForUser(ctx context.Context, filter project.ListFilter) ([]*project.Project, int64, error) {
	where := `(p.owner_id = $1 OR EXISTS (
		SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1))`
	args := []any{filter.UserID}
	argCount := 2

	if filter.Status != nil {
		where += fmt.Sprintf(" AND p.status = $%d", argCount)
		args = append(args, string(*filter.Status))
		argCount++
	}

	var total int64
	if err := r.db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects p WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapf(errFailedCountProjectsFmt, err)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.description, p.status, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		WHERE %s
		ORDER BY p.created_at DESC, p.id
		LIMIT $%d OFFSET $%d`, where, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapf(errFailedListProjectsFmt, err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, wrapf(errFailedScanProjectFmt, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapf(errFailedListProjectsFmt, err)
	}

	return projects, total, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, input project.UpdateProjectInput) (*project.Project, error) {
	setClauses := []string{}
	args := []any{id}
	argCount := 2

	if input.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *input.Name)
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
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := `UPDATE projects SET ` + strings.Join(setClauses, ", ") + ` WHERE id = $1 RETURNING ` + projectColumns

	p, err := scanProject(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, wrapf(errFailedUpdateProjectFmt, err)
	}
	return p, nil
}

// Delete removes the project. Members, tasks and activity cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return wrapf(errFailedDeleteProjectFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}
	return nil
}

// LookupAccess reads the owner and the caller's membership in one round trip.
// A nil membership with a nil error means the project exists but the user is
// not a member.
func (r *ProjectRepository) LookupAccess(ctx context.Context, projectID, userID uuid.UUID) (uuid.UUID, *rbac.Membership, error) {
	query := `
		SELECT p.owner_id, m.id, m.role_id, m.joined_at
		FROM projects p
		LEFT JOIN project_members m ON m.project_id = p.id AND m.user_id = $2
		WHERE p.id = $1
	`

	var (
		ownerID  uuid.UUID
		memberID *uuid.UUID
		roleID   *uuid.UUID
		joinedAt *time.Time
	)
	err := r.db.SQL.QueryRowContext(ctx, query, projectID, userID).Scan(&ownerID, &memberID, &roleID, &joinedAt)
	if err != nil {
		if isNoRows(err) {
			return uuid.Nil, nil, apperrors.NotFound(errProjectNotFound)
		}
		return uuid.Nil, nil, wrapf(errFailedLookupAccessFmt, err)
	}

	if memberID == nil {
		return ownerID, nil, nil
	}

	m := &rbac.Membership{
		ID:        *memberID,
		ProjectID: projectID,
		UserID:    userID,
	}
	if roleID != nil {
		m.RoleID = *roleID
	}
	if joinedAt != nil {
		m.JoinedAt = *joinedAt
	}
	return ownerID, m, nil
}
