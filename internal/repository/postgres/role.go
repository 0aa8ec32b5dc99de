package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"projecthub/internal/rbac"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const roleColumns = `id, name, permissions, created_at, updated_at`

// RoleRepository stores permission matrices as JSONB.
type RoleRepository struct {
	db *DB
}

func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func scanRole(row interface{ Scan(...any) error }) (*rbac.Role, error) {
	r := &rbac.Role{}
	var raw []byte
	if err := row.Scan(&r.ID, &r.Name, &raw, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Permissions = rbac.Matrix{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.Permissions); err != nil {
			return nil, wrapf(errFailedDecodePermissionsFmt, err)
		}
	}
	return r, nil
}

func encodeMatrix(m rbac.Matrix) (string, error) {
	if m == nil {
		m = rbac.Matrix{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", wrapf(errFailedEncodePermissionsFmt, err)
	}
	return string(b), nil
}

func (r *RoleRepository) InsertIfAbsent(ctx context.Context, name string, permissions rbac.Matrix) (bool, error) {
	encoded, err := encodeMatrix(permissions)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO roles (id, name, permissions)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (name) DO NOTHING
	`
	res, err := r.db.SQL.ExecContext(ctx, query, uuid.New(), name, encoded)
	if err != nil {
		return false, wrapf(errFailedSeedRoleFmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapf(errFailedSeedRoleFmt, err)
	}
	return n == 1, nil
}

func (r *RoleRepository) Create(ctx context.Context, input rbac.CreateRoleInput) (*rbac.Role, error) {
	encoded, err := encodeMatrix(input.Permissions)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO roles (id, name, permissions)
		VALUES ($1, $2, $3::jsonb)
		RETURNING ` + roleColumns

	role, err := scanRole(r.db.SQL.QueryRowContext(ctx, query, uuid.New(), input.Name, encoded))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errRoleNameTaken)
		}
		return nil, wrapf(errFailedCreateRoleFmt, err)
	}
	return role, nil
}

func (r *RoleRepository) Update(ctx context.Context, id uuid.UUID, input rbac.UpdateRoleInput) (*rbac.Role, error) {
	setClauses := []string{}
	args := []any{id}
	argCount := 2

	if input.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *input.Name)
		argCount++
	}

	if input.Permissions != nil {
		encoded, err := encodeMatrix(input.Permissions)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, fmt.Sprintf("permissions = $%d::jsonb", argCount))
		args = append(args, encoded)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := `UPDATE roles SET ` + strings.Join(setClauses, ", ") + ` WHERE id = $1 RETURNING ` + roleColumns

	role, err := scanRole(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errRoleNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errRoleNameTaken)
		}
		return nil, wrapf(errFailedUpdateRoleFmt, err)
	}
	return role, nil
}

func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		// a membership created between the count and the delete
		if isForeignKeyViolation(err) {
			return apperrors.Conflict(errRoleInUse)
		}
		return wrapf(errFailedDeleteRoleFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errRoleNotFound)
	}
	return nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*rbac.Role, error) {
	role, err := scanRole(r.db.SQL.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errRoleNotFound)
		}
		return nil, wrapf(errFailedGetRoleFmt, err)
	}
	return role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*rbac.Role, error) {
	role, err := scanRole(r.db.SQL.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errRoleNotFound)
		}
		return nil, wrapf(errFailedGetRoleFmt, err)
	}
	return role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*rbac.Role, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, wrapf(errFailedListRolesFmt, err)
	}
	defer rows.Close()

	var roles []*rbac.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, wrapf(errFailedScanRoleFmt, err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapf(errFailedListRolesFmt, err)
	}
	return roles, nil
}

func (r *RoleRepository) CountMemberships(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_members WHERE role_id = $1`, roleID).Scan(&n)
	if err != nil {
		return 0, wrapf(errFailedCountMembershipsFmt, err)
	}
	return n, nil
}
