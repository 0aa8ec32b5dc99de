package timelog

import (
	"time"

	"projecthub/internal/domain/user"

	"github.com/google/uuid"
)

type TimeLog struct {
	ID              uuid.UUID     `json:"id"`
	TaskID          uuid.UUID     `json:"taskId"`
	UserID          uuid.UUID     `json:"userId"`
	DurationMinutes int           `json:"durationMinutes"`
	Description     *string       `json:"description"`
	LoggedAt        time.Time     `json:"loggedAt"`
	User            *user.Summary `json:"user,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type CreateTimeLogInput struct {
	TaskID          uuid.UUID
	UserID          uuid.UUID
	DurationMinutes int
	Description     *string
	LoggedAt        time.Time
}

type UpdateTimeLogInput struct {
	DurationMinutes *int
	Description     *string
	LoggedAt        *time.Time
}

type ListFilter struct {
	TaskID    uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// ReportFilter bounds a project time report. Both ends are inclusive.
type ReportFilter struct {
	ProjectID uuid.UUID
	From      *time.Time
	To        *time.Time
}

type UserTotal struct {
	UserID       uuid.UUID `json:"userId"`
	DisplayName  string    `json:"displayName"`
	TotalMinutes int64     `json:"totalMinutes"`
}

type TaskTotal struct {
	TaskID       uuid.UUID `json:"taskId"`
	Title        string    `json:"title"`
	TotalMinutes int64     `json:"totalMinutes"`
}

// Report sums logged minutes per user and per task.
type Report struct {
	ByUser       []UserTotal `json:"byUser"`
	ByTask       []TaskTotal `json:"byTask"`
	TotalMinutes int64       `json:"totalMinutes"`
}
