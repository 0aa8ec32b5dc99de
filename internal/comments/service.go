// Package comments implements task discussion threads.
package comments

import (
	"context"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/comment"
	"projecthub/internal/domain/task"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const errInvalidContent = "invalid comment content"

type Recorder interface {
	Record(ctx context.Context, ev activity.Event) error
}

// TaskFinder confirms a task belongs to the project before anything is
// attached to it.
type TaskFinder interface {
	GetByID(ctx context.Context, projectID, taskID uuid.UUID) (*task.Task, error)
}

type Service struct {
	comments repository.CommentRepository
	tasks    TaskFinder
	gate     *rbac.Gate
	activity Recorder
	log      logrus.FieldLogger
}

func NewService(comments repository.CommentRepository, tasks TaskFinder, gate *rbac.Gate, activity Recorder, log logrus.FieldLogger) *Service {
	return &Service{
		comments: comments,
		tasks:    tasks,
		gate:     gate,
		activity: activity,
		log:      log.WithField("component", "comments"),
	}
}

func (s *Service) Create(ctx context.Context, userID, projectID, taskID uuid.UUID, content string) (*comment.Comment, error) {
	if err := s.gate.Require(ctx, projectID, userID, rbac.ResourceComment, rbac.ActionCreate); err != nil {
		return nil, err
	}
	if err := validator.Content(content); err != nil {
		return nil, apperrors.Validation(errInvalidContent, err.Error())
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}

	c, err := s.comments.Create(ctx, projectID, comment.CreateCommentInput{TaskID: taskID, UserID: userID, Content: content})
	if err != nil {
		return nil, err
	}

	if err := s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     activity.ActionCommented,
		EntityType: activity.EntityComment,
		EntityID:   c.ID,
		Details:    map[string]any{"taskId": taskID},
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the thread oldest first.
func (s *Service) List(ctx context.Context, userID, projectID, taskID uuid.UUID) ([]*comment.Comment, error) {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return s.comments.ListForTask(ctx, taskID)
}

// Update is open to the author or anyone holding comment:update.
func (s *Service) Update(ctx context.Context, userID, projectID, commentID uuid.UUID, content string) (*comment.Comment, error) {
	if err := validator.Content(content); err != nil {
		return nil, apperrors.Validation(errInvalidContent, err.Error())
	}

	// non-members get Forbidden before the lookup can report NotFound
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return nil, err
	}
	existing, err := s.comments.GetInProject(ctx, projectID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireAuthorOr(ctx, projectID, userID, existing.UserID, rbac.ResourceComment, rbac.ActionUpdate); err != nil {
		return nil, err
	}

	c, err := s.comments.Update(ctx, projectID, commentID, content)
	if err != nil {
		return nil, err
	}

	if err := s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     activity.ActionUpdated,
		EntityType: activity.EntityComment,
		EntityID:   commentID,
		Details:    map[string]any{"taskId": c.TaskID},
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete is open to the author or anyone holding comment:delete.
func (s *Service) Delete(ctx context.Context, userID, projectID, commentID uuid.UUID) error {
	if err := s.gate.RequireRead(ctx, projectID, userID); err != nil {
		return err
	}
	existing, err := s.comments.GetInProject(ctx, projectID, commentID)
	if err != nil {
		return err
	}
	if err := s.gate.RequireAuthorOr(ctx, projectID, userID, existing.UserID, rbac.ResourceComment, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, projectID, commentID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"project_id": projectID, "comment_id": commentID, "user_id": userID}).Debug("comment deleted")
	return s.activity.Record(ctx, activity.Event{
		ProjectID:  projectID,
		UserID:     userID,
		Action:     activity.ActionDeleted,
		EntityType: activity.EntityComment,
		EntityID:   commentID,
		Details:    map[string]any{"taskId": existing.TaskID},
	})
}
