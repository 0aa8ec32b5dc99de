package projects

import (
	"context"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/project"
	"projecthub/internal/rbac"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func (s *Service) ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]*project.Member, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.ListMembers(ctx, projectID)
}

// AddMember gives targetID roleID on the project. An unknown user or role is
// NotFound and an existing membership is a Conflict.
func (s *Service) AddMember(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) (*project.Member, error) {
	if err := requireIDs(projectID, targetID, roleID); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceProject, rbac.ActionManageMembers); err != nil {
		return nil, err
	}

	m, err := s.projects.AddMember(ctx, project.AddMemberInput{ProjectID: projectID, UserID: targetID, RoleID: roleID})
	if err != nil {
		return nil, err
	}

	if err := s.recordMember(ctx, userID, m, activity.ActionAssigned); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) (*project.Member, error) {
	if err := requireIDs(projectID, targetID, roleID); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceProject, rbac.ActionManageMembers); err != nil {
		return nil, err
	}

	m, err := s.projects.UpdateMemberRole(ctx, project.UpdateMemberRoleInput{ProjectID: projectID, UserID: targetID, RoleID: roleID})
	if err != nil {
		return nil, err
	}

	if err := s.recordMember(ctx, userID, m, activity.ActionUpdated); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember refuses to remove the owner before looking at the caller's
// permissions, so even a manager gets the owner-specific error.
func (s *Service) RemoveMember(ctx context.Context, userID, projectID, targetID uuid.UUID) error {
	if projectID == uuid.Nil {
		return apperrors.Validation(errProjectIDRequired)
	}
	if targetID == uuid.Nil {
		return apperrors.Validation(errUserIDRequired)
	}
	if err := s.gate.EnsureRemovable(ctx, projectID, targetID); err != nil {
		return err
	}
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceProject, rbac.ActionManageMembers); err != nil {
		return err
	}

	m, err := s.projects.GetMember(ctx, projectID, targetID)
	if err != nil {
		return err
	}
	if err := s.projects.RemoveMember(ctx, projectID, targetID); err != nil {
		return err
	}

	return s.recordMember(ctx, userID, m, activity.ActionUnassigned)
}

func (s *Service) recordMember(ctx context.Context, actorID uuid.UUID, m *project.Member, action activity.Action) error {
	s.log.WithFields(logrus.Fields{
		"project_id": m.ProjectID,
		"member_id":  m.UserID,
		"role_id":    m.RoleID,
		"action":     action,
	}).Info("membership changed")

	return s.activity.Record(ctx, activity.Event{
		ProjectID:  m.ProjectID,
		UserID:     actorID,
		Action:     action,
		EntityType: activity.EntityMember,
		EntityID:   m.ID,
		Details: map[string]any{
			"userId":   m.UserID,
			"roleId":   m.RoleID,
			"roleName": m.RoleName,
		},
	})
}

func requireIDs(projectID, userID, roleID uuid.UUID) error {
	switch {
	case projectID == uuid.Nil:
		return apperrors.Validation(errProjectIDRequired)
	case userID == uuid.Nil:
		return apperrors.Validation(errUserIDRequired)
	case roleID == uuid.Nil:
		return apperrors.Validation(errRoleIDRequired)
	}
	return nil
}
