package postgres

import (
	"context"

	"projecthub/internal/domain/project"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const memberSelect = `
	SELECT m.id, m.project_id, m.user_id, m.role_id, r.name, m.joined_at,
	       u.id, u.email, u.display_name, u.avatar_url
	FROM project_members m
	JOIN users u ON u.id = m.user_id
	JOIN roles r ON r.id = m.role_id
`

func scanMember(row interface{ Scan(...any) error }) (*project.Member, error) {
	m := &project.Member{User: &user.Summary{}}
	err := row.Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.RoleID, &m.RoleName, &m.JoinedAt,
		&m.User.ID, &m.User.Email, &m.User.DisplayName, &m.User.AvatarURL,
	)
	return m, err
}

func (r *ProjectRepository) AddMember(ctx context.Context, input project.AddMemberInput) (*project.Member, error) {
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO project_members (id, project_id, user_id, role_id) VALUES ($1, $2, $3, $4)`,
		uuid.New(), input.ProjectID, input.UserID, input.RoleID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errMemberExists)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errMemberRefMissing)
		}
		return nil, wrapf(errFailedAddMemberFmt, err)
	}

	return r.GetMember(ctx, input.ProjectID, input.UserID)
}

func (r *ProjectRepository) GetMember(ctx context.Context, projectID, userID uuid.UUID) (*project.Member, error) {
	query := memberSelect + ` WHERE m.project_id = $1 AND m.user_id = $2`

	m, err := scanMember(r.db.SQL.QueryRowContext(ctx, query, projectID, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errMemberNotFound)
		}
		return nil, wrapf(errFailedGetMemberFmt, err)
	}
	return m, nil
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]*project.Member, error) {
	query := memberSelect + ` WHERE m.project_id = $1 ORDER BY m.joined_at ASC`

	rows, err := r.db.SQL.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, wrapf(errFailedListMembersFmt, err)
	}
	defer rows.Close()

	members := []*project.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, wrapf(errFailedScanMemberFmt, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapf(errFailedListMembersFmt, err)
	}
	return members, nil
}

func (r *ProjectRepository) UpdateMemberRole(ctx context.Context, input project.UpdateMemberRoleInput) (*project.Member, error) {
	res, err := r.db.SQL.ExecContext(ctx,
		`UPDATE project_members SET role_id = $3 WHERE project_id = $1 AND user_id = $2`,
		input.ProjectID, input.UserID, input.RoleID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errRoleNotFound)
		}
		return nil, wrapf(errFailedUpdateMemberRoleFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.NotFound(errMemberNotFound)
	}

	return r.GetMember(ctx, input.ProjectID, input.UserID)
}

func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if err != nil {
		return wrapf(errFailedRemoveMemberFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errMemberNotFound)
	}
	return nil
}
