package task

import (
	"fmt"
	"time"

	"projecthub/internal/domain/user"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

const (
	errInvalidStatusFmt   = "invalid task status: %s"
	errInvalidPriorityFmt = "invalid task priority: %s"
)

func (s Status) Validate() error {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return nil
	default:
		return fmt.Errorf(errInvalidStatusFmt, s)
	}
}

func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return nil
	default:
		return fmt.Errorf(errInvalidPriorityFmt, p)
	}
}

type Task struct {
	ID           uuid.UUID      `json:"id"`
	ProjectID    uuid.UUID      `json:"projectId"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Status       Status         `json:"status"`
	Priority     Priority       `json:"priority"`
	DueDate      *time.Time     `json:"dueDate"`
	CreatedByID  uuid.UUID      `json:"createdById"`
	ParentTaskID *uuid.UUID     `json:"parentTaskId"`
	Assignees    []user.Summary `json:"assignees"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type CreateTaskInput struct {
	ProjectID    uuid.UUID
	Title        string
	Description  *string
	Priority     Priority
	DueDate      *time.Time
	ParentTaskID *uuid.UUID
	CreatedByID  uuid.UUID
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
}

type ListFilter struct {
	ProjectID  uuid.UUID
	Status     *Status
	Priority   *Priority
	AssigneeID *uuid.UUID
	LabelID    *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}
