package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"projecthub/internal/domain/user"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionDeleted    Action = "deleted"
	ActionAssigned   Action = "assigned"
	ActionUnassigned Action = "unassigned"
	ActionCompleted  Action = "completed"
	ActionCommented  Action = "commented"
	ActionUploaded   Action = "uploaded"
)

type EntityType string

const (
	EntityProject EntityType = "project"
	EntityTask    EntityType = "task"
	EntityLabel   EntityType = "label"
	EntityComment EntityType = "comment"
	EntityFile    EntityType = "file"
	EntityMember  EntityType = "member"
	EntityTimeLog EntityType = "time_log"
)

const (
	errInvalidActionFmt     = "invalid activity action: %s"
	errInvalidEntityTypeFmt = "invalid entity type: %s"
)

func (a Action) Validate() error {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionAssigned,
		ActionUnassigned, ActionCompleted, ActionCommented, ActionUploaded:
		return nil
	default:
		return fmt.Errorf(errInvalidActionFmt, a)
	}
}

func (e EntityType) Validate() error {
	switch e {
	case EntityProject, EntityTask, EntityLabel, EntityComment, EntityFile, EntityMember, EntityTimeLog:
		return nil
	default:
		return fmt.Errorf(errInvalidEntityTypeFmt, e)
	}
}

// Event is what a resource module hands to the audit log after a mutation.
type Event struct {
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	Action     Action
	EntityType EntityType
	EntityID   uuid.UUID
	Details    map[string]any
}

// Entry is one stored, append-only activity row.
type Entry struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"projectId"`
	ProjectName string          `json:"projectName,omitempty"`
	UserID      uuid.UUID       `json:"userId"`
	User        *user.Summary   `json:"user,omitempty"`
	Action      Action          `json:"action"`
	EntityType  EntityType      `json:"entityType"`
	EntityID    uuid.UUID       `json:"entityId"`
	Details     json.RawMessage `json:"details,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Filter narrows ListForProject. From and To are inclusive.
type Filter struct {
	Action     *Action
	EntityType *EntityType
	From       *time.Time
	To         *time.Time
}
