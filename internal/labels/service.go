// Package labels manages project labels and their attachment to tasks.
package labels

import (
	"context"
	"strings"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/label"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	errInvalidName     = "invalid label name"
	errInvalidColor    = "invalid label color"
	errEmptyUpdate     = "at least one of name or color is required"
	errLabelIDRequired = "label id is required"
)

type Recorder interface {
	Record(ctx context.Context, ev activity.Event) error
}

// Service gates label writes on the label resource and task attachment on
// task:update. Reads need project read access only.
type Service struct {
	labels   repository.LabelRepository
	tasks    repository.TaskRepository
	gate     *rbac.Gate
	activity Recorder
	log      logrus.FieldLogger
}

func NewService(labels repository.LabelRepository, tasks repository.TaskRepository, gate *rbac.Gate, activity Recorder, log logrus.FieldLogger) *Service {
	return &Service{
		labels:   labels,
		tasks:    tasks,
		gate:     gate,
		activity: activity,
		log:      log.WithField("component", "labels"),
	}
}

type CreateInput struct {
	Name  string
	Color string
}

func (s *Service) Create(ctx context.Context, userID, projectID uuid.UUID, in CreateInput) (*label.Label, error) {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceLabel, rbac.ActionCreate); err != nil {
		return nil, err
	}

	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	color, err := cleanColor(in.Color)
	if err != nil {
		return nil, err
	}

	l, err := s.labels.Create(ctx, label.CreateLabelInput{ProjectID: projectID, Name: name, Color: color})
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, projectID, userID, activity.ActionCreated, activity.EntityLabel, l.ID, map[string]any{
		"name":  l.Name,
		"color": l.Color,
	}); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns the project's labels by name.
func (s *Service) List(ctx context.Context, userID, projectID uuid.UUID) ([]*label.Label, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.labels.ListForProject(ctx, projectID)
}

func (s *Service) Update(ctx context.Context, userID, projectID, labelID uuid.UUID, in label.UpdateLabelInput) (*label.Label, error) {
	if in.Name == nil && in.Color == nil {
		return nil, apperrors.Validation(errEmptyUpdate)
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceLabel, rbac.ActionUpdate); err != nil {
		return nil, err
	}

	changed := map[string]any{}
	if in.Name != nil {
		name, err := cleanName(*in.Name)
		if err != nil {
			return nil, err
		}
		in.Name = &name
		changed["name"] = name
	}
	if in.Color != nil {
		color, err := cleanColor(*in.Color)
		if err != nil {
			return nil, err
		}
		in.Color = &color
		changed["color"] = color
	}

	l, err := s.labels.Update(ctx, projectID, labelID, in)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, projectID, userID, activity.ActionUpdated, activity.EntityLabel, labelID, changed); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes the label from the project and from every task carrying it.
func (s *Service) Delete(ctx context.Context, userID, projectID, labelID uuid.UUID) error {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceLabel, rbac.ActionDelete); err != nil {
		return err
	}

	l, err := s.labels.GetInProject(ctx, projectID, labelID)
	if err != nil {
		return err
	}
	if err := s.labels.Delete(ctx, projectID, labelID); err != nil {
		return err
	}

	return s.record(ctx, projectID, userID, activity.ActionDeleted, activity.EntityLabel, labelID, map[string]any{"name": l.Name})
}

// Attach puts a label of the same project on a task. It counts as a task
// update for both permission and activity.
func (s *Service) Attach(ctx context.Context, userID, projectID, taskID, labelID uuid.UUID) ([]*label.Label, error) {
	l, err := s.taskAndLabel(ctx, userID, projectID, taskID, labelID)
	if err != nil {
		return nil, err
	}
	if err := s.labels.Attach(ctx, taskID, labelID); err != nil {
		return nil, err
	}

	if err := s.record(ctx, projectID, userID, activity.ActionUpdated, activity.EntityTask, taskID, map[string]any{
		"labelAdded": l.ID,
		"label":      l.Name,
	}); err != nil {
		return nil, err
	}
	return s.labels.ListForTask(ctx, taskID)
}

func (s *Service) Detach(ctx context.Context, userID, projectID, taskID, labelID uuid.UUID) error {
	l, err := s.taskAndLabel(ctx, userID, projectID, taskID, labelID)
	if err != nil {
		return err
	}
	if err := s.labels.Detach(ctx, taskID, labelID); err != nil {
		return err
	}

	return s.record(ctx, projectID, userID, activity.ActionUpdated, activity.EntityTask, taskID, map[string]any{
		"labelRemoved": l.ID,
		"label":        l.Name,
	})
}

func (s *Service) ListForTask(ctx context.Context, userID, projectID, taskID uuid.UUID) ([]*label.Label, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return s.labels.ListForTask(ctx, taskID)
}

// taskAndLabel checks task:update and that both ids belong to projectID.
func (s *Service) taskAndLabel(ctx context.Context, userID, projectID, taskID, labelID uuid.UUID) (*label.Label, error) {
	if labelID == uuid.Nil {
		return nil, apperrors.Validation(errLabelIDRequired)
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceTask, rbac.ActionUpdate); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return s.labels.GetInProject(ctx, projectID, labelID)
}

func (s *Service) record(ctx context.Context, projectID, userID uuid.UUID, action activity.Action, entity activity.EntityType, entityID uuid.UUID, details map[string]any) error {
	s.log.WithFields(logrus.Fields{
		"project_id":  projectID,
		"entity_type": entity,
		"entity_id":   entityID,
		"action":      action,
	}).Debug("label changed")

	return s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     action,
		EntityType: entity,
		EntityID:   entityID,
		Details:    details,
	})
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validator.LabelName(name); err != nil {
		return "", apperrors.Validation(errInvalidName, err.Error())
	}
	return name, nil
}

func cleanColor(color string) (string, error) {
	color = strings.ToUpper(strings.TrimSpace(color))
	if err := validator.Color(color); err != nil {
		return "", apperrors.Validation(errInvalidColor, err.Error())
	}
	return color, nil
}
