package postgres

import (
	"context"

	"projecthub/internal/domain/comment"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

const commentSelect = `
	SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, c.updated_at,
	       u.id, u.email, u.display_name, u.avatar_url
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func scanComment(row interface{ Scan(...any) error }) (*comment.Comment, error) {
	c := &comment.Comment{Author: &user.Summary{}}
	err := row.Scan(
		&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Email, &c.Author.DisplayName, &c.Author.AvatarURL,
	)
	return c, err
}

func (r *CommentRepository) Create(ctx context.Context, projectID uuid.UUID, input comment.CreateCommentInput) (*comment.Comment, error) {
	id := uuid.New()
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, user_id, content) VALUES ($1, $2, $3, $4)`,
		id, input.TaskID, input.UserID, input.Content)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, wrapf(errFailedCreateCommentFmt, err)
	}
	return r.GetInProject(ctx, projectID, id)
}

// GetInProject only finds comments whose task belongs to projectID.
func (r *CommentRepository) GetInProject(ctx context.Context, projectID, commentID uuid.UUID) (*comment.Comment, error) {
	query := commentSelect + `
		JOIN tasks t ON t.id = c.task_id
		WHERE c.id = $1 AND t.project_id = $2`

	c, err := scanComment(r.db.SQL.QueryRowContext(ctx, query, commentID, projectID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCommentNotFound)
		}
		return nil, wrapf(errFailedGetCommentFmt, err)
	}
	return c, nil
}

func (r *CommentRepository) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error) {
	rows, err := r.db.SQL.QueryContext(ctx, commentSelect+` WHERE c.task_id = $1 ORDER BY c.created_at ASC`, taskID)
	if err != nil {
		return nil, wrapf(errFailedListCommentsFmt, err)
	}
	defer rows.Close()

	comments := []*comment.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, wrapf(errFailedScanCommentFmt, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapf(errFailedListCommentsFmt, err)
	}
	return comments, nil
}

func (r *CommentRepository) Update(ctx context.Context, projectID, commentID uuid.UUID, content string) (*comment.Comment, error) {
	res, err := r.db.SQL.ExecContext(ctx, `
		UPDATE comments SET content = $3, updated_at = NOW()
		WHERE id = $1 AND task_id IN (SELECT id FROM tasks WHERE project_id = $2)`,
		commentID, projectID, content)
	if err != nil {
		return nil, wrapf(errFailedUpdateCommentFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.NotFound(errCommentNotFound)
	}
	return r.GetInProject(ctx, projectID, commentID)
}

func (r *CommentRepository) Delete(ctx context.Context, projectID, commentID uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `
		DELETE FROM comments
		WHERE id = $1 AND task_id IN (SELECT id FROM tasks WHERE project_id = $2)`,
		commentID, projectID)
	if err != nil {
		return wrapf(errFailedDeleteCommentFmt, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound(errCommentNotFound)
	}
	return nil
}
