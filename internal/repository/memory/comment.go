package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"projecthub/internal/domain/comment"
	"projecthub/internal/domain/timelog"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

type Comments struct {
	s *Store
}

func (r *Comments) Create(_ context.Context, projectID uuid.UUID, input comment.CreateCommentInput) (*comment.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.taskInProjectLocked(projectID, input.TaskID) {
		return nil, apperrors.NotFound(errTaskNotFound)
	}
	now := time.Now()
	c := &comment.Comment{ID: uuid.New(), TaskID: input.TaskID, UserID: input.UserID, Content: input.Content, CreatedAt: now, UpdatedAt: now}
	r.s.comments[c.ID] = c
	return r.s.commentView(c), nil
}

func (r *Comments) GetInProject(_ context.Context, projectID, commentID uuid.UUID) (*comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[commentID]
	if !ok || !r.s.taskInProjectLocked(projectID, c.TaskID) {
		return nil, apperrors.NotFound(errCommentNotFound)
	}
	return r.s.commentView(c), nil
}

func (r *Comments) ListForTask(_ context.Context, taskID uuid.UUID) ([]*comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*comment.Comment{}
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, r.s.commentView(c))
		}
	}
	slices.SortFunc(out, func(a, b *comment.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r *Comments) Update(_ context.Context, projectID, commentID uuid.UUID, content string) (*comment.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[commentID]
	if !ok || !r.s.taskInProjectLocked(projectID, c.TaskID) {
		return nil, apperrors.NotFound(errCommentNotFound)
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return r.s.commentView(c), nil
}

func (r *Comments) Delete(_ context.Context, projectID, commentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[commentID]
	if !ok || !r.s.taskInProjectLocked(projectID, c.TaskID) {
		return apperrors.NotFound(errCommentNotFound)
	}
	delete(r.s.comments, commentID)
	return nil
}

type TimeLogs struct {
	s *Store
}

func (r *TimeLogs) Create(_ context.Context, projectID uuid.UUID, input timelog.CreateTimeLogInput) (*timelog.TimeLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.taskInProjectLocked(projectID, input.TaskID) {
		return nil, apperrors.NotFound(errTaskNotFound)
	}
	l := &timelog.TimeLog{
		ID:              uuid.New(),
		TaskID:          input.TaskID,
		UserID:          input.UserID,
		DurationMinutes: input.DurationMinutes,
		Description:     input.Description,
		LoggedAt:        input.LoggedAt,
		CreatedAt:       time.Now(),
	}
	r.s.timeLogs[l.ID] = l
	return r.s.timeLogView(l), nil
}

func (r *TimeLogs) GetInProject(_ context.Context, projectID, id uuid.UUID) (*timelog.TimeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.timeLogs[id]
	if !ok || !r.s.taskInProjectLocked(projectID, l.TaskID) {
		return nil, apperrors.NotFound(errTimeLogNotFound)
	}
	return r.s.timeLogView(l), nil
}

func (r *TimeLogs) ListForTask(_ context.Context, filter timelog.ListFilter) ([]*timelog.TimeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*timelog.TimeLog{}
	for _, l := range r.s.timeLogs {
		if l.TaskID != filter.TaskID {
			continue
		}
		if filter.StartDate != nil && l.LoggedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && l.LoggedAt.After(*filter.EndDate) {
			continue
		}
		out = append(out, r.s.timeLogView(l))
	}
	slices.SortFunc(out, func(a, b *timelog.TimeLog) int { return b.LoggedAt.Compare(a.LoggedAt) })
	return out, nil
}

func (r *TimeLogs) Update(_ context.Context, projectID, id uuid.UUID, input timelog.UpdateTimeLogInput) (*timelog.TimeLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.timeLogs[id]
	if !ok || !r.s.taskInProjectLocked(projectID, l.TaskID) {
		return nil, apperrors.NotFound(errTimeLogNotFound)
	}
	if input.DurationMinutes != nil {
		l.DurationMinutes = *input.DurationMinutes
	}
	if input.Description != nil {
		l.Description = input.Description
	}
	if input.LoggedAt != nil {
		l.LoggedAt = *input.LoggedAt
	}
	return r.s.timeLogView(l), nil
}

func (r *TimeLogs) Delete(_ context.Context, projectID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.timeLogs[id]
	if !ok || !r.s.taskInProjectLocked(projectID, l.TaskID) {
		return apperrors.NotFound(errTimeLogNotFound)
	}
	delete(r.s.timeLogs, id)
	return nil
}

func (s *Store) taskInProjectLocked(projectID, taskID uuid.UUID) bool {
	t, ok := s.tasks[taskID]
	return ok && t.ProjectID == projectID
}

func (s *Store) commentView(c *comment.Comment) *comment.Comment {
	cp := *c
	cp.Author = s.userSummary(c.UserID)
	return &cp
}

func (s *Store) timeLogView(l *timelog.TimeLog) *timelog.TimeLog {
	cp := *l
	cp.User = s.userSummary(l.UserID)
	return &cp
}

func (r *TimeLogs) Report(_ context.Context, filter timelog.ReportFilter) (*timelog.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byUser := map[uuid.UUID]int64{}
	byTask := map[uuid.UUID]int64{}
	report := &timelog.Report{ByUser: []timelog.UserTotal{}, ByTask: []timelog.TaskTotal{}}
	for _, l := range r.s.timeLogs {
		if !r.s.taskInProjectLocked(filter.ProjectID, l.TaskID) {
			continue
		}
		if filter.From != nil && l.LoggedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.LoggedAt.After(*filter.To) {
			continue
		}
		byUser[l.UserID] += int64(l.DurationMinutes)
		byTask[l.TaskID] += int64(l.DurationMinutes)
		report.TotalMinutes += int64(l.DurationMinutes)
	}
	for id, total := range byUser {
		name := ""
		if u := r.s.userSummary(id); u != nil {
			name = u.DisplayName
		}
		report.ByUser = append(report.ByUser, timelog.UserTotal{UserID: id, DisplayName: name, TotalMinutes: total})
	}
	for id, total := range byTask {
		report.ByTask = append(report.ByTask, timelog.TaskTotal{TaskID: id, Title: r.s.tasks[id].Title, TotalMinutes: total})
	}
	slices.SortFunc(report.ByUser, func(a, b timelog.UserTotal) int { return cmp.Compare(b.TotalMinutes, a.TotalMinutes) })
	slices.SortFunc(report.ByTask, func(a, b timelog.TaskTotal) int { return cmp.Compare(b.TotalMinutes, a.TotalMinutes) })
	return report, nil
}
