// Package tasks implements task management inside a project.
package tasks

import (
	"context"
	"strings"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/page"
	"projecthub/internal/domain/task"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	errInvalidTitle       = "invalid task title"
	errInvalidStatus      = "invalid task status"
	errInvalidPriority    = "invalid task priority"
	errEmptyUpdate        = "at least one field is required"
	errAssigneeRequired   = "assignee id is required"
	errAssigneeNotMember  = "assignee must be a member of the project"
	errParentNotInProject = "parent task not found"
	maxSearchLength       = 100
)

type Recorder interface {
	Record(ctx context.Context, ev activity.Event) error
}

type Service struct {
	tasks    repository.TaskRepository
	gate     *rbac.Gate
	activity Recorder
	log      logrus.FieldLogger
	pageSize int
}

func NewService(tasks repository.TaskRepository, gate *rbac.Gate, activity Recorder, log logrus.FieldLogger, pageSize int) *Service {
	return &Service{
		tasks:    tasks,
		gate:     gate,
		activity: activity,
		log:      log.WithField("component", "tasks"),
		pageSize: pageSize,
	}
}

type CreateInput struct {
	Title        string
	Description  *string
	Priority     task.Priority
	DueDate      *time.Time
	ParentTaskID *uuid.UUID
}

// ListFilter is the caller-facing filter; paging comes separately.
type ListFilter struct {
	Status     *task.Status
	Priority   *task.Priority
	AssigneeID *uuid.UUID
	LabelID    *uuid.UUID
	Search     string
}

func (s *Service) Create(ctx context.Context, userID, projectID uuid.UUID, in CreateInput) (*task.Task, error) {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTask, rbac.ActionCreate); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if err := validator.Title(title); err != nil {
		return nil, apperrors.Validation(errInvalidTitle, err.Error())
	}
	priority := in.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	if err := priority.Validate(); err != nil {
		return nil, apperrors.Validation(errInvalidPriority, err.Error())
	}
	if in.ParentTaskID != nil {
		if _, err := s.tasks.GetByID(ctx, projectID, *in.ParentTaskID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound(errParentNotInProject)
			}
			return nil, err
		}
	}

	t, err := s.tasks.Create(ctx, task.CreateTaskInput{
		ProjectID:    projectID,
		Title:        title,
		Description:  in.Description,
		Priority:     priority,
		DueDate:      in.DueDate,
		ParentTaskID: in.ParentTaskID,
		CreatedByID:  userID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, projectID, userID, activity.ActionCreated, t.ID, map[string]any{"title": t.Title}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, userID, projectID uuid.UUID, filter ListFilter, req page.Request) (*page.Result[*task.Task], error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if filter.Status != nil {
		if err := filter.Status.Validate(); err != nil {
			return nil, apperrors.Validation(errInvalidStatus, err.Error())
		}
	}
	if filter.Priority != nil {
		if err := filter.Priority.Validate(); err != nil {
			return nil, apperrors.Validation(errInvalidPriority, err.Error())
		}
	}

	search := strings.TrimSpace(filter.Search)
	if len(search) > maxSearchLength {
		search = search[:maxSearchLength]
	}

	req = req.Normalize(s.pageSize)
	items, total, err := s.tasks.List(ctx, task.ListFilter{
		ProjectID:  projectID,
		Status:     filter.Status,
		Priority:   filter.Priority,
		AssigneeID: filter.AssigneeID,
		LabelID:    filter.LabelID,
		Search:     search,
		Limit:      req.Limit,
		Offset:     req.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &page.Result[*task.Task]{Items: items, Meta: page.NewMeta(req, total)}, nil
}

func (s *Service) Get(ctx context.Context, userID, projectID, taskID uuid.UUID) (*task.Task, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, projectID, taskID)
}

// Update applies a partial change. Moving a task into done is recorded as
// completed rather than updated.
func (s *Service) Update(ctx context.Context, userID, projectID, taskID uuid.UUID, in task.UpdateTaskInput) (*task.Task, error) {
	if in.Title == nil && in.Description == nil && in.Status == nil && in.Priority == nil && in.DueDate == nil {
		return nil, apperrors.Validation(errEmptyUpdate)
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTask, rbac.ActionUpdate); err != nil {
		return nil, err
	}

	changed := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validator.Title(title); err != nil {
			return nil, apperrors.Validation(errInvalidTitle, err.Error())
		}
		in.Title = &title
		changed["title"] = title
	}
	if in.Status != nil {
		if err := in.Status.Validate(); err != nil {
			return nil, apperrors.Validation(errInvalidStatus, err.Error())
		}
		changed["status"] = *in.Status
	}
	if in.Priority != nil {
		if err := in.Priority.Validate(); err != nil {
			return nil, apperrors.Validation(errInvalidPriority, err.Error())
		}
		changed["priority"] = *in.Priority
	}
	if in.DueDate != nil {
		changed["dueDate"] = *in.DueDate
	}

	before, err := s.tasks.GetByID(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.Update(ctx, projectID, taskID, in)
	if err != nil {
		return nil, err
	}

	action := activity.ActionUpdated
	if before.Status != task.StatusDone && t.Status == task.StatusDone {
		action = activity.ActionCompleted
	}
	if err := s.record(ctx, projectID, userID, action, taskID, changed); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, projectID, taskID uuid.UUID) error {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTask, rbac.ActionDelete); err != nil {
		return err
	}

	t, err := s.tasks.GetByID(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, projectID, taskID); err != nil {
		return err
	}

	return s.record(ctx, projectID, userID, activity.ActionDeleted, taskID, map[string]any{"title": t.Title})
}

// Assign adds assigneeID to the task. The assignee has to be the owner or a
// member of the same project.
func (s *Service) Assign(ctx context.Context, userID, projectID, taskID, assigneeID uuid.UUID) (*task.Task, error) {
	if assigneeID == uuid.Nil {
		return nil, apperrors.Validation(errAssigneeRequired)
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTask, rbac.ActionAssign); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}

	ok, err := s.gate.IsParticipant(ctx, projectID, assigneeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation(errAssigneeNotMember)
	}

	if err := s.tasks.AddAssignee(ctx, taskID, assigneeID); err != nil {
		return nil, err
	}
	if err := s.record(ctx, projectID, userID, activity.ActionAssigned, taskID, map[string]any{"assigneeId": assigneeID}); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, projectID, taskID)
}

func (s *Service) Unassign(ctx context.Context, userID, projectID, taskID, assigneeID uuid.UUID) error {
	if assigneeID == uuid.Nil {
		return apperrors.Validation(errAssigneeRequired)
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTask, rbac.ActionAssign); err != nil {
		return err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return err
	}
	if err := s.tasks.RemoveAssignee(ctx, taskID, assigneeID); err != nil {
		return err
	}
	return s.record(ctx, projectID, userID, activity.ActionUnassigned, taskID, map[string]any{"assigneeId": assigneeID})
}

func (s *Service) record(ctx context.Context, projectID, userID uuid.UUID, action activity.Action, taskID uuid.UUID, details map[string]any) error {
	s.log.WithFields(logrus.Fields{
		"project_id": projectID,
		"task_id":    taskID,
		"action":     action,
	}).Debug("task changed")

	return s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     action,
		EntityType: activity.EntityTask,
		EntityID:   taskID,
		Details:    details,
	})
}
