package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"projecthub/internal/domain/task"
	"projecthub/internal/domain/user"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

type Tasks struct {
	s *Store
}

func (r *Tasks) Create(_ context.Context, input task.CreateTaskInput) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[input.ProjectID]; !ok {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	if input.ParentTaskID != nil {
		if _, ok := r.s.tasks[*input.ParentTaskID]; !ok {
			return nil, apperrors.NotFound(errParentNotFound)
		}
	}
	now := time.Now()
	t := &task.Task{
		ID:           uuid.New(),
		ProjectID:    input.ProjectID,
		Title:        input.Title,
		Description:  input.Description,
		Status:       task.StatusTodo,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		CreatedByID:  input.CreatedByID,
		ParentTaskID: input.ParentTaskID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.tasks[t.ID] = t
	return r.s.taskView(t), nil
}

func (r *Tasks) GetByID(_ context.Context, projectID, taskID uuid.UUID) (*task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return nil, apperrors.NotFound(errTaskNotFound)
	}
	return r.s.taskView(t), nil
}

func (r *Tasks) List(_ context.Context, filter task.ListFilter) ([]*task.Task, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []*task.Task
	for _, t := range r.s.tasks {
		if t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && !slices.Contains(r.s.assignees[t.ID], *filter.AssigneeID) {
			continue
		}
		if filter.LabelID != nil && !slices.Contains(r.s.taskLabels[t.ID], *filter.LabelID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		matched = append(matched, r.s.taskView(t))
	}
	slices.SortFunc(matched, func(a, b *task.Task) int { return b.CreatedAt.Compare(a.CreatedAt) })

	return window(matched, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func (r *Tasks) Update(_ context.Context, projectID, taskID uuid.UUID, input task.UpdateTaskInput) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return nil, apperrors.NotFound(errTaskNotFound)
	}
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}
	t.UpdatedAt = time.Now()
	return r.s.taskView(t), nil
}

func (r *Tasks) Delete(_ context.Context, projectID, taskID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return apperrors.NotFound(errTaskNotFound)
	}
	r.s.deleteTaskLocked(taskID)
	return nil
}

func (r *Tasks) AddAssignee(_ context.Context, taskID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[taskID]; !ok {
		return apperrors.NotFound(errTaskNotFound)
	}
	if _, ok := r.s.users[userID]; !ok {
		return apperrors.NotFound(errUserNotFound)
	}
	if slices.Contains(r.s.assignees[taskID], userID) {
		return apperrors.Conflict(errAssigneeExists)
	}
	r.s.assignees[taskID] = append(r.s.assignees[taskID], userID)
	return nil
}

func (r *Tasks) RemoveAssignee(_ context.Context, taskID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current := r.s.assignees[taskID]
	i := slices.Index(current, userID)
	if i < 0 {
		return apperrors.NotFound(errAssigneeMissing)
	}
	r.s.assignees[taskID] = slices.Delete(current, i, i+1)
	return nil
}

// deleteTaskLocked removes a task with its subtasks, comments, time logs,
// assignees and label links. Callers hold the write lock.
func (s *Store) deleteTaskLocked(id uuid.UUID) {
	delete(s.tasks, id)
	delete(s.assignees, id)
	delete(s.taskLabels, id)
	for cid, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, cid)
		}
	}
	for lid, l := range s.timeLogs {
		if l.TaskID == id {
			delete(s.timeLogs, lid)
		}
	}
	for sid, t := range s.tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == id {
			s.deleteTaskLocked(sid)
		}
	}
}

func (s *Store) taskView(t *task.Task) *task.Task {
	cp := *t
	cp.Assignees = []user.Summary{}
	for _, uid := range s.assignees[t.ID] {
		if u := s.userSummary(uid); u != nil {
			cp.Assignees = append(cp.Assignees, *u)
		}
	}
	return &cp
}
