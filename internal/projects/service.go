// Package projects implements project and membership management on top of
// the permission gate and the activity ledger.
package projects

import (
	"context"
	"strings"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/page"
	"projecthub/internal/domain/project"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	errInvalidName       = "invalid project name"
	errInvalidStatus     = "invalid project status"
	errEmptyUpdate       = "at least one of name, description or status is required"
	errOwnerOnlyDelete   = "only the project owner can delete the project"
	errUserIDRequired    = "user id is required"
	errRoleIDRequired    = "role id is required"
	errProjectIDRequired = "project id is required"
)

// Recorder receives activity after each successful mutation.
type Recorder interface {
	Record(ctx context.Context, ev activity.Event) error
}

// RoleFinder resolves the built-in role given to project owners.
type RoleFinder interface {
	GetByName(ctx context.Context, name string) (*rbac.Role, error)
}

type Service struct {
	projects repository.ProjectRepository
	roles    RoleFinder
	gate     *rbac.Gate
	activity Recorder
	log      logrus.FieldLogger
	pageSize int
}

func NewService(
	projects repository.ProjectRepository,
	roles RoleFinder,
	gate *rbac.Gate,
	activity Recorder,
	log logrus.FieldLogger,
	pageSize int,
) *Service {
	return &Service{
		projects: projects,
		roles:    roles,
		gate:     gate,
		activity: activity,
		log:      log.WithField("component", "projects"),
		pageSize: pageSize,
	}
}

type CreateInput struct {
	Name        string
	Description *string
}

// Create stores the project and makes the caller its owner with an admin
// membership row.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*project.Project, error) {
	name := strings.TrimSpace(in.Name)
	if err := validator.ProjectName(name); err != nil {
		return nil, apperrors.Validation(errInvalidName, err.Error())
	}

	admin, err := s.roles.GetByName(ctx, rbac.RoleAdmin)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.CreateWithOwner(ctx, project.CreateProjectInput{
		Name:        name,
		Description: trimmed(in.Description),
		OwnerID:     userID,
		OwnerRoleID: admin.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.activity.Record(ctx, activity.Event{
		ProjectID:  p.ID,
		UserID:     userID,
		Action:     activity.ActionCreated,
		EntityType: activity.EntityProject,
		EntityID:   p.ID,
		Details:    map[string]any{"name": p.Name},
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"project_id": p.ID, "owner_id": userID}).Info("project created")
	return p, nil
}

// List returns projects the user owns or belongs to, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, status *project.Status, req page.Request) (*page.Result[*project.Project], error) {
	if status != nil {
		if err := status.Validate(); err != nil {
			return nil, apperrors.Validation(errInvalidStatus, err.Error())
		}
	}

	req = req.Normalize(s.pageSize)
	items, total, err := s.projects.ListForUser(ctx, project.ListFilter{
		UserID: userID,
		Status: status,
		Limit:  req.Limit,
		Offset: req.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &page.Result[*project.Project]{Items: items, Meta: page.NewMeta(req, total)}, nil
}

func (s *Service) Get(ctx context.Context, userID, projectID uuid.UUID) (*project.Project, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.GetByID(ctx, projectID)
}

func (s *Service) Update(ctx context.Context, userID, projectID uuid.UUID, in project.UpdateProjectInput) (*project.Project, error) {
	if in.Name == nil && in.Description == nil && in.Status == nil {
		return nil, apperrors.Validation(errEmptyUpdate)
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceProject, rbac.ActionUpdate); err != nil {
		return nil, err
	}

	patch := project.UpdateProjectInput{Description: trimmed(in.Description), Status: in.Status}
	changed := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validator.ProjectName(name); err != nil {
			return nil, apperrors.Validation(errInvalidName, err.Error())
		}
		patch.Name = &name
		changed["name"] = name
	}
	if in.Status != nil {
		if err := in.Status.Validate(); err != nil {
			return nil, apperrors.Validation(errInvalidStatus, err.Error())
		}
		changed["status"] = *in.Status
	}
	if patch.Description != nil {
		changed["description"] = *patch.Description
	}

	p, err := s.projects.Update(ctx, projectID, patch)
	if err != nil {
		return nil, err
	}

	if err := s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     activity.ActionUpdated,
		EntityType: activity.EntityProject,
		EntityID:   projectID,
		Details:    changed,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete is reserved for the owner. Members, tasks and the project's
// activity go with it, so nothing is recorded.
func (s *Service) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		return apperrors.Forbidden(errOwnerOnlyDelete)
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"project_id": projectID, "user_id": userID}).Info("project deleted")
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
