package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"projecthub/internal/domain/label"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
)

type Labels struct {
	s *Store
}

func (r *Labels) Create(_ context.Context, input label.CreateLabelInput) (*label.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[input.ProjectID]; !ok {
		return nil, apperrors.NotFound(errProjectNotFound)
	}
	if r.s.labelNameTakenLocked(input.ProjectID, input.Name, uuid.Nil) {
		return nil, apperrors.Conflict(errLabelNameTaken)
	}
	now := time.Now()
	l := &label.Label{ID: uuid.New(), ProjectID: input.ProjectID, Name: input.Name, Color: input.Color, CreatedAt: now, UpdatedAt: now}
	r.s.labels[l.ID] = l
	cp := *l
	return &cp, nil
}

func (r *Labels) GetInProject(_ context.Context, projectID, labelID uuid.UUID) (*label.Label, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.labels[labelID]
	if !ok || l.ProjectID != projectID {
		return nil, apperrors.NotFound(errLabelNotFound)
	}
	cp := *l
	return &cp, nil
}

func (r *Labels) ListForProject(_ context.Context, projectID uuid.UUID) ([]*label.Label, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*label.Label{}
	for _, l := range r.s.labels {
		if l.ProjectID == projectID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sortByName(out)
	return out, nil
}

func (r *Labels) Update(_ context.Context, projectID, labelID uuid.UUID, input label.UpdateLabelInput) (*label.Label, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.labels[labelID]
	if !ok || l.ProjectID != projectID {
		return nil, apperrors.NotFound(errLabelNotFound)
	}
	if input.Name != nil {
		if r.s.labelNameTakenLocked(projectID, *input.Name, labelID) {
			return nil, apperrors.Conflict(errLabelNameTaken)
		}
		l.Name = *input.Name
	}
	if input.Color != nil {
		l.Color = *input.Color
	}
	l.UpdatedAt = time.Now()
	cp := *l
	return &cp, nil
}

func (r *Labels) Delete(_ context.Context, projectID, labelID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.labels[labelID]
	if !ok || l.ProjectID != projectID {
		return apperrors.NotFound(errLabelNotFound)
	}
	delete(r.s.labels, labelID)
	for tid, ids := range r.s.taskLabels {
		r.s.taskLabels[tid] = slices.DeleteFunc(ids, func(id uuid.UUID) bool { return id == labelID })
	}
	return nil
}

func (r *Labels) Attach(_ context.Context, taskID, labelID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[taskID]; !ok {
		return apperrors.NotFound(errTaskNotFound)
	}
	if _, ok := r.s.labels[labelID]; !ok {
		return apperrors.NotFound(errLabelNotFound)
	}
	if slices.Contains(r.s.taskLabels[taskID], labelID) {
		return apperrors.Conflict(errLabelAttached)
	}
	r.s.taskLabels[taskID] = append(r.s.taskLabels[taskID], labelID)
	return nil
}

func (r *Labels) Detach(_ context.Context, taskID, labelID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current := r.s.taskLabels[taskID]
	i := slices.Index(current, labelID)
	if i < 0 {
		return apperrors.NotFound(errLabelDetached)
	}
	r.s.taskLabels[taskID] = slices.Delete(current, i, i+1)
	return nil
}

func (r *Labels) ListForTask(_ context.Context, taskID uuid.UUID) ([]*label.Label, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*label.Label{}
	for _, id := range r.s.taskLabels[taskID] {
		if l, ok := r.s.labels[id]; ok {
			cp := *l
			out = append(out, &cp)
		}
	}
	sortByName(out)
	return out, nil
}

// labelNameTakenLocked ignores the label identified by except.
func (s *Store) labelNameTakenLocked(projectID uuid.UUID, name string, except uuid.UUID) bool {
	for id, l := range s.labels {
		if id != except && l.ProjectID == projectID && l.Name == name {
			return true
		}
	}
	return false
}

func sortByName(labels []*label.Label) {
	slices.SortFunc(labels, func(a, b *label.Label) int { return strings.Compare(a.Name, b.Name) })
}
