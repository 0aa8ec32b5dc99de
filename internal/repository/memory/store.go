// Package memory provides in-memory implementations of the repository
// interfaces. It is intended for service tests and local development.
package memory

import (
	"context"
	"sync"

	"projecthub/internal/domain/activity"
	"projecthub/internal/domain/comment"
	"projecthub/internal/domain/label"
	"projecthub/internal/domain/project"
	"projecthub/internal/domain/task"
	"projecthub/internal/domain/timelog"
	"projecthub/internal/domain/user"
	"projecthub/internal/rbac"

	"github.com/google/uuid"
)

const (
	errProjectNotFound = "project not found"
	errMemberNotFound  = "member not found"
	errMemberExists    = "user is already a member of this project"
	errUserNotFound    = "user not found"
	errRoleNotFound    = "role not found"
	errRoleExists      = "role name already exists"
	errRoleInUse       = "role is still assigned to project members"
	errTaskNotFound    = "task not found"
	errParentNotFound  = "parent task not found"
	errAssigneeExists  = "user is already assigned to this task"
	errAssigneeMissing = "assignee not found"
	errCommentNotFound = "comment not found"
	errLabelNotFound   = "label not found"
	errLabelNameTaken  = "label with this name already exists in the project"
	errLabelAttached   = "label is already attached to this task"
	errLabelDetached   = "label is not attached to this task"
	errTimeLogNotFound = "time log not found"
)

type memberKey struct {
	project uuid.UUID
	user    uuid.UUID
}

// Store is a thread-safe in-memory store. Each repository view shares it,
// so cross-entity lookups behave like the SQL joins they stand in for.
type Store struct {
	mu sync.RWMutex

	users      map[uuid.UUID]user.Summary
	roles      map[uuid.UUID]*rbac.Role
	projects   map[uuid.UUID]*project.Project
	members    map[memberKey]*project.Member
	tasks      map[uuid.UUID]*task.Task
	assignees  map[uuid.UUID][]uuid.UUID
	labels     map[uuid.UUID]*label.Label
	taskLabels map[uuid.UUID][]uuid.UUID
	comments   map[uuid.UUID]*comment.Comment
	timeLogs   map[uuid.UUID]*timelog.TimeLog
}

func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]user.Summary),
		roles:      make(map[uuid.UUID]*rbac.Role),
		projects:   make(map[uuid.UUID]*project.Project),
		members:    make(map[memberKey]*project.Member),
		tasks:      make(map[uuid.UUID]*task.Task),
		assignees:  make(map[uuid.UUID][]uuid.UUID),
		labels:     make(map[uuid.UUID]*label.Label),
		taskLabels: make(map[uuid.UUID][]uuid.UUID),
		comments:   make(map[uuid.UUID]*comment.Comment),
		timeLogs:   make(map[uuid.UUID]*timelog.TimeLog),
	}
}

// AddUser registers a user so membership and assignee references resolve.
func (s *Store) AddUser(u user.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) Projects() *Projects { return &Projects{s} }
func (s *Store) Tasks() *Tasks       { return &Tasks{s} }
func (s *Store) Labels() *Labels     { return &Labels{s} }
func (s *Store) Comments() *Comments { return &Comments{s} }
func (s *Store) TimeLogs() *TimeLogs { return &TimeLogs{s} }
func (s *Store) Roles() *Roles       { return &Roles{s} }

func (s *Store) userSummary(id uuid.UUID) *user.Summary {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}

// Activity collects recorded events in order.
type Activity struct {
	mu     sync.Mutex
	events []activity.Event
	err    error
}

// FailWith makes later Record calls return err.
func (a *Activity) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *Activity) Record(_ context.Context, ev activity.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, ev)
	return nil
}

func (a *Activity) Events() []activity.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]activity.Event(nil), a.events...)
}

// Last returns the most recent event, or the zero Event.
func (a *Activity) Last() activity.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) == 0 {
		return activity.Event{}
	}
	return a.events[len(a.events)-1]
}
