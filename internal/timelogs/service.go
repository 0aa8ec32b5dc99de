// Package timelogs records time spent on tasks and summarizes it per project.
package timelogs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/task"
	"projecthub/internal/domain/timelog"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	minDuration = 1
	maxDuration = 24 * 60

	errInvalidDurationFmt = "duration must be between %d and %d minutes"
	errInvalidDescription = "invalid description"
	errInvalidRange       = "start date must not be after end date"
	errEmptyUpdate        = "at least one of durationMinutes, description or loggedAt is required"
)

type Recorder interface {
	Record(ctx context.Context, ev activity.Event) error
}

type TaskFinder interface {
	GetByID(ctx context.Context, projectID, taskID uuid.UUID) (*task.Task, error)
}

type Service struct {
	logs     repository.TimeLogRepository
	tasks    TaskFinder
	gate     *rbac.Gate
	activity Recorder
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(logs repository.TimeLogRepository, tasks TaskFinder, gate *rbac.Gate, activity Recorder, log logrus.FieldLogger) *Service {
	return &Service{
		logs:     logs,
		tasks:    tasks,
		gate:     gate,
		activity: activity,
		log:      log.WithField("component", "timelogs"),
		now:      time.Now,
	}
}

type CreateInput struct {
	DurationMinutes int
	Description     *string
	// LoggedAt defaults to now when zero.
	LoggedAt time.Time
}

func (s *Service) Create(ctx context.Context, userID, projectID, taskID uuid.UUID, in CreateInput) (*timelog.TimeLog, error) {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTimeLog, rbac.ActionCreate); err != nil {
		return nil, err
	}
	if err := validDuration(in.DurationMinutes); err != nil {
		return nil, err
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}

	loggedAt := in.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = s.now()
	}

	l, err := s.logs.Create(ctx, projectID, timelog.CreateTimeLogInput{
		TaskID:          taskID,
		UserID:          userID,
		DurationMinutes: in.DurationMinutes,
		Description:     desc,
		LoggedAt:        loggedAt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, projectID, userID, activity.ActionCreated, l, map[string]any{
		"taskId":          taskID,
		"durationMinutes": l.DurationMinutes,
	}); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns a task's entries newest first, optionally bounded by date.
func (s *Service) List(ctx context.Context, userID, projectID, taskID uuid.UUID, from, to *time.Time) ([]*timelog.TimeLog, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.Validation(errInvalidRange)
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return s.logs.ListForTask(ctx, timelog.ListFilter{TaskID: taskID, StartDate: from, EndDate: to})
}

// Update is open to the author or anyone holding time_log:update.
func (s *Service) Update(ctx context.Context, userID, projectID, id uuid.UUID, in timelog.UpdateTimeLogInput) (*timelog.TimeLog, error) {
	if in.DurationMinutes == nil && in.Description == nil && in.LoggedAt == nil {
		return nil, apperrors.Validation(errEmptyUpdate)
	}
	if in.DurationMinutes != nil {
		if err := validDuration(*in.DurationMinutes); err != nil {
			return nil, err
		}
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return nil, err
	}
	in.Description = desc

	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	existing, err := s.logs.GetInProject(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireAuthorOr(ctx, projectID, userID, existing.UserID, rbac.ResourceTimeLog, rbac.ActionUpdate); err != nil {
		return nil, err
	}

	l, err := s.logs.Update(ctx, projectID, id, in)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, projectID, userID, activity.ActionUpdated, l, map[string]any{
		"taskId":          l.TaskID,
		"durationMinutes": l.DurationMinutes,
	}); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete is open to the author or anyone holding time_log:delete.
func (s *Service) Delete(ctx context.Context, userID, projectID, id uuid.UUID) error {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return err
	}
	existing, err := s.logs.GetInProject(ctx, projectID, id)
	if err != nil {
		return err
	}
	if err := s.gate.RequireAuthorOr(ctx, projectID, userID, existing.UserID, rbac.ResourceTimeLog, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.logs.Delete(ctx, projectID, id); err != nil {
		return err
	}
	return s.record(ctx, projectID, userID, activity.ActionDeleted, existing, map[string]any{"taskId": existing.TaskID})
}

// Report totals minutes per user and per task. It needs report:view.
func (s *Service) Report(ctx context.Context, userID, projectID uuid.UUID, from, to *time.Time) (*timelog.Report, error) {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceReport, rbac.ActionView); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.Validation(errInvalidRange)
	}
	return s.logs.Report(ctx, timelog.ReportFilter{ProjectID: projectID, From: from, To: to})
}

func (s *Service) record(ctx context.Context, projectID, userID uuid.UUID, action activity.Action, l *timelog.TimeLog, details map[string]any) error {
	s.log.WithFields(logrus.Fields{
		"project_id":  projectID,
		"time_log_id": l.ID,
		"action":      action,
	}).Debug("time log changed")

	return s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     action,
		EntityType: activity.EntityTimeLog,
		EntityID:   l.ID,
		Details:    details,
	})
}

func validDuration(minutes int) error {
	if minutes < minDuration || minutes > maxDuration {
		return apperrors.Validation(fmt.Sprintf(errInvalidDurationFmt, minDuration, maxDuration))
	}
	return nil
}

func cleanDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*desc)
	if v != "" {
		if err := validator.Content(v); err != nil {
			return nil, apperrors.Validation(errInvalidDescription, err.Error())
		}
	}
	return &v, nil
}
