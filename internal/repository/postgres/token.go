package postgres

import (
	"context"
	"time"

	"projecthub/internal/domain/token"

	"github.com/google/uuid"
)

type TokenRepository struct {
	db *DB
}

func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Insert(ctx context.Context, t *token.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.SQL.ExecContext(ctx, query, t.ID, t.UserID, t.TokenHash, t.ExpiresAt); err != nil {
		return wrapf(errFailedInsertTokenFmt, err)
	}
	return nil
}

// Consume deletes the row matching id and hash and reports what it held.
// It is a single statement, so of two concurrent calls with the same value
// at most one sees ok == true.
func (r *TokenRepository) Consume(ctx context.Context, id, tokenHash string) (*token.Consumed, bool, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE id = $1 AND token_hash = $2
		RETURNING user_id, expires_at
	`

	c := &token.Consumed{}
	err := r.db.SQL.QueryRowContext(ctx, query, id, tokenHash).Scan(&c.UserID, &c.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, wrapf(errFailedConsumeTokenFmt, err)
	}
	return c, true, nil
}

// DeleteOne removes a single session of the user. Missing rows are not an error.
func (r *TokenRepository) DeleteOne(ctx context.Context, userID uuid.UUID, id, tokenHash string) (int64, error) {
	res, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE id = $1 AND user_id = $2 AND token_hash = $3`,
		id, userID, tokenHash)
	if err != nil {
		return 0, wrapf(errFailedDeleteTokenFmt, err)
	}
	return res.RowsAffected()
}

func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, wrapf(errFailedDeleteTokenFmt, err)
	}
	return res.RowsAffected()
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, wrapf(errFailedDeleteTokenFmt, err)
	}
	return res.RowsAffected()
}
