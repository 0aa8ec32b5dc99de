package repository

import (
	"context"
	"time"

	"projecthub/internal/domain/comment"
	"projecthub/internal/domain/label"
	"projecthub/internal/domain/project"
	"projecthub/internal/domain/task"
	"projecthub/internal/domain/timelog"
	"projecthub/internal/domain/token"
	"projecthub/internal/domain/user"
	"projecthub/internal/rbac"

	"github.com/google/uuid"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input user.UpdateProfileInput) (*user.User, error)
	UpdatePasswordAndRevokeSessions(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeactivateAndRevokeSessions(ctx context.Context, id uuid.UUID) error
}

// TokenRepository defines refresh token persistence
type TokenRepository interface {
	Insert(ctx context.Context, t *token.RefreshToken) error
	Consume(ctx context.Context, id, tokenHash string) (*token.Consumed, bool, error)
	DeleteOne(ctx context.Context, userID uuid.UUID, id, tokenHash string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RoleRepository is the role store behind the role catalog
type RoleRepository interface {
	rbac.RoleStore
}

// ProjectRepository defines project and membership data access operations
type ProjectRepository interface {
	rbac.AccessStore

	CreateWithOwner(ctx context.Context, input project.CreateProjectInput) (*project.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
	ListForUser(ctx context.Context, filter project.ListFilter) ([]*project.Project, int64, error)
	Update(ctx context.Context, id uuid.UUID, input project.UpdateProjectInput) (*project.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, input project.AddMemberInput) (*project.Member, error)
	GetMember(ctx context.Context, projectID, userID uuid.UUID) (*project.Member, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]*project.Member, error)
	UpdateMemberRole(ctx context.Context, input project.UpdateMemberRoleInput) (*project.Member, error)
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

// TaskRepository defines task data access operations
type TaskRepository interface {
	Create(ctx context.Context, input task.CreateTaskInput) (*task.Task, error)
	GetByID(ctx context.Context, projectID, taskID uuid.UUID) (*task.Task, error)
	List(ctx context.Context, filter task.ListFilter) ([]*task.Task, int64, error)
	Update(ctx context.Context, projectID, taskID uuid.UUID, input task.UpdateTaskInput) (*task.Task, error)
	Delete(ctx context.Context, projectID, taskID uuid.UUID) error
	AddAssignee(ctx context.Context, taskID, userID uuid.UUID) error
	RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error
}

// LabelRepository defines label and task-label data access operations
type LabelRepository interface {
	Create(ctx context.Context, input label.CreateLabelInput) (*label.Label, error)
	GetInProject(ctx context.Context, projectID, labelID uuid.UUID) (*label.Label, error)
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]*label.Label, error)
	Update(ctx context.Context, projectID, labelID uuid.UUID, input label.UpdateLabelInput) (*label.Label, error)
	Delete(ctx context.Context, projectID, labelID uuid.UUID) error

	Attach(ctx context.Context, taskID, labelID uuid.UUID) error
	Detach(ctx context.Context, taskID, labelID uuid.UUID) error
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*label.Label, error)
}

// CommentRepository defines comment data access operations
type CommentRepository interface {
	Create(ctx context.Context, projectID uuid.UUID, input comment.CreateCommentInput) (*comment.Comment, error)
	GetInProject(ctx context.Context, projectID, commentID uuid.UUID) (*comment.Comment, error)
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*comment.Comment, error)
	Update(ctx context.Context, projectID, commentID uuid.UUID, content string) (*comment.Comment, error)
	Delete(ctx context.Context, projectID, commentID uuid.UUID) error
}

// TimeLogRepository defines time log data access operations
type TimeLogRepository interface {
	Create(ctx context.Context, projectID uuid.UUID, input timelog.CreateTimeLogInput) (*timelog.TimeLog, error)
	GetInProject(ctx context.Context, projectID, id uuid.UUID) (*timelog.TimeLog, error)
	ListForTask(ctx context.Context, filter timelog.ListFilter) ([]*timelog.TimeLog, error)
	Update(ctx context.Context, projectID, id uuid.UUID, input timelog.UpdateTimeLogInput) (*timelog.TimeLog, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
	Report(ctx context.Context, filter timelog.ReportFilter) (*timelog.Report, error)
}
