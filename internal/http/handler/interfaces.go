package handler

import (
	"context"
	"time"

	"projecthub/internal/audit"
	"projecthub/internal/auth"
	"projecthub/internal/comments"
	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/comment"
	"projecthub/internal/domain/label"
	"projecthub/internal/domain/page"
	"projecthub/internal/domain/project"
	"projecthub/internal/domain/task"
	"projecthub/internal/domain/timelog"
	"projecthub/internal/domain/token"
	"projecthub/internal/domain/user"
	"projecthub/internal/labels"
	"projecthub/internal/projects"
	"projecthub/internal/rbac"
	"projecthub/internal/tasks"
	"projecthub/internal/timelogs"

	"github.com/google/uuid"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*token.Pair, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// UserHandler interfaces
type ProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input user.UpdateProfileInput) (*user.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ActivityReader interface {
	ListForProject(ctx context.Context, projectID uuid.UUID, filter activity.Filter, req page.Request) (*page.Result[*activity.Entry], error)
	RecentForProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*activity.Entry, error)
	ListForUser(ctx context.Context, userID uuid.UUID, req page.Request) (*page.Result[*activity.Entry], error)
}

type ActivityExporter interface {
	Export(ctx context.Context, projectID uuid.UUID, filter activity.Filter) (*audit.Export, error)
}

// RoleHandler interfaces
type RoleService interface {
	List(ctx context.Context) ([]*rbac.Role, error)
	Get(ctx context.Context, id uuid.UUID) (*rbac.Role, error)
	Create(ctx context.Context, input rbac.CreateRoleInput) (*rbac.Role, error)
	Update(ctx context.Context, id uuid.UUID, input rbac.UpdateRoleInput) (*rbac.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectHandler interfaces
type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, in projects.CreateInput) (*project.Project, error)
	List(ctx context.Context, userID uuid.UUID, status *project.Status, req page.Request) (*page.Result[*project.Project], error)
	Get(ctx context.Context, userID, projectID uuid.UUID) (*project.Project, error)
	Update(ctx context.Context, userID, projectID uuid.UUID, in project.UpdateProjectInput) (*project.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error

	ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]*project.Member, error)
	AddMember(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) (*project.Member, error)
	UpdateMemberRole(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) (*project.Member, error)
	RemoveMember(ctx context.Context, userID, projectID, targetID uuid.UUID) error
}

// TaskHandler interfaces
type TaskService interface {
	Create(ctx context.Context, userID, projectID uuid.UUID, in tasks.CreateInput) (*task.Task, error)
	List(ctx context.Context, userID, projectID uuid.UUID, filter tasks.ListFilter, req page.Request) (*page.Result[*task.Task], error)
	Get(ctx context.Context, userID, projectID, taskID uuid.UUID) (*task.Task, error)
	Update(ctx context.Context, userID, projectID, taskID uuid.UUID, in task.UpdateTaskInput) (*task.Task, error)
	Delete(ctx context.Context, userID, projectID, taskID uuid.UUID) error
	Assign(ctx context.Context, userID, projectID, taskID, assigneeID uuid.UUID) (*task.Task, error)
	Unassign(ctx context.Context, userID, projectID, taskID, assigneeID uuid.UUID) error
}

// LabelHandler interfaces
type LabelService interface {
	Create(ctx context.Context, userID, projectID uuid.UUID, in labels.CreateInput) (*label.Label, error)
	List(ctx context.Context, userID, projectID uuid.UUID) ([]*label.Label, error)
	Update(ctx context.Context, userID, projectID, labelID uuid.UUID, in label.UpdateLabelInput) (*label.Label, error)
	Delete(ctx context.Context, userID, projectID, labelID uuid.UUID) error
	ListForTask(ctx context.Context, userID, projectID, taskID uuid.UUID) ([]*label.Label, error)
	Attach(ctx context.Context, userID, projectID, taskID, labelID uuid.UUID) ([]*label.Label, error)
	Detach(ctx context.Context, userID, projectID, taskID, labelID uuid.UUID) error
}

// CommentHandler interfaces
type CommentService interface {
	Create(ctx context.Context, userID, projectID, taskID uuid.UUID, content string) (*comment.Comment, error)
	List(ctx context.Context, userID, projectID, taskID uuid.UUID) ([]*comment.Comment, error)
	Update(ctx context.Context, userID, projectID, commentID uuid.UUID, content string) (*comment.Comment, error)
	Delete(ctx context.Context, userID, projectID, commentID uuid.UUID) error
}

// TimeLogHandler interfaces
type TimeLogService interface {
	Create(ctx context.Context, userID, projectID, taskID uuid.UUID, in timelogs.CreateInput) (*timelog.TimeLog, error)
	List(ctx context.Context, userID, projectID, taskID uuid.UUID, from, to *time.Time) ([]*timelog.TimeLog, error)
	Update(ctx context.Context, userID, projectID, id uuid.UUID, in timelog.UpdateTimeLogInput) (*timelog.TimeLog, error)
	Delete(ctx context.Context, userID, projectID, id uuid.UUID) error
	Report(ctx context.Context, userID, projectID uuid.UUID, from, to *time.Time) (*timelog.Report, error)
}

var (
	_ ProjectService   = (*projects.Service)(nil)
	_ TaskService      = (*tasks.Service)(nil)
	_ LabelService     = (*labels.Service)(nil)
	_ CommentService   = (*comments.Service)(nil)
	_ TimeLogService   = (*timelogs.Service)(nil)
	_ RoleService      = (*rbac.Catalog)(nil)
	_ AuthService      = (*auth.Service)(nil)
	_ ProfileService   = (*auth.IdentityStore)(nil)
	_ ActivityReader   = (*audit.Logger)(nil)
	_ ActivityExporter = (*audit.Exporter)(nil)
)
