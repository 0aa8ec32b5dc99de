package comment

import (
	"time"

	"projecthub/internal/domain/user"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID     `json:"id"`
	TaskID    uuid.UUID     `json:"taskId"`
	UserID    uuid.UUID     `json:"userId"`
	Content   string        `json:"content"`
	Author    *user.Summary `json:"author,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type CreateCommentInput struct {
	TaskID  uuid.UUID
	UserID  uuid.UUID
	Content string
}
