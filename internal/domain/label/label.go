package label

import (
	"time"

	"github.com/google/uuid"
)

// Label is a project-scoped tag. Names are unique within a project.
type Label struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateLabelInput struct {
	ProjectID uuid.UUID
	Name      string
	Color     string
}

type UpdateLabelInput struct {
	Name  *string
	Color *string
}
