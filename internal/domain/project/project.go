package project

import (
	"fmt"
	"time"

	"projecthub/internal/domain/user"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
	StatusCompleted Status = "completed"

	errInvalidStatusFmt = "invalid project status: %s"
)

func (s Status) Validate() error {
	switch s {
	case StatusActive, StatusArchived, StatusCompleted:
		return nil
	default:
		return fmt.Errorf(errInvalidStatusFmt, s)
	}
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	OwnerID     uuid.UUID `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateProjectInput struct {
	Name        string
	Description *string
	OwnerID     uuid.UUID
	// OwnerRoleID is the role given to the owner's own membership row.
	OwnerRoleID uuid.UUID
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *Status
}

type ListFilter struct {
	UserID uuid.UUID
	Status *Status
	Limit  int
	Offset int
}

// Member represents a project member with their role
type Member struct {
	ID        uuid.UUID     `json:"id"`
	ProjectID uuid.UUID     `json:"projectId"`
	UserID    uuid.UUID     `json:"userId"`
	RoleID    uuid.UUID     `json:"roleId"`
	RoleName  string        `json:"roleName"`
	JoinedAt  time.Time     `json:"joinedAt"`
	User      *user.Summary `json:"user,omitempty"`
}

type AddMemberInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
}

type UpdateMemberRoleInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
}
