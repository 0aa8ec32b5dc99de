package postgres

import (
	"context"
	"database/sql"

	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, display_name, avatar_url, is_active, created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.AvatarURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, uuid.New(), input.Email, input.PasswordHash, input.DisplayName))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errEmailTaken)
		}
		return nil, wrapf(errFailedCreateUserFmt, err)
	}

	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, wrapf(errFailedGetUserFmt, err)
	}

	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, email))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, wrapf(errFailedGetUserFmt, err)
	}

	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, input user.UpdateProfileInput) (*user.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, id, input.DisplayName, input.AvatarURL))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, wrapf(errFailedUpdateUserFmt, err)
	}

	return u, nil
}

// UpdatePasswordAndRevokeSessions swaps the hash and drops every refresh
// token of the user in one transaction.
func (r *UserRepository) UpdatePasswordAndRevokeSessions(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
			id, passwordHash)
		if err != nil {
			return wrapf(errFailedUpdateUserFmt, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound(errUserNotFound)
		}
		return revokeAllSessions(ctx, tx, id)
	})
}

// UpdatePasswordHash replaces the stored hash and leaves sessions alone.
// Used when an existing password is rehashed at a higher cost.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.SQL.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return wrapf(errFailedUpdateUserFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errUserNotFound)
	}
	return nil
}

// DeactivateAndRevokeSessions soft-disables the account. Users are never deleted.
func (r *UserRepository) DeactivateAndRevokeSessions(ctx context.Context, id uuid.UUID) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
			id)
		if err != nil {
			return wrapf(errFailedUpdateUserFmt, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound(errUserNotFound)
		}
		return revokeAllSessions(ctx, tx, id)
	})
}

func revokeAllSessions(ctx context.Context, q querier, userID uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return wrapf(errFailedRevokeSessionFmt, err)
	}
	return nil
}
