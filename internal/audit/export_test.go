package audit

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"projecthub/internal/domain/activity"
	apperrors "projecthub/pkg/errors"
	"projecthub/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	objects    map[string]string
	types      map[string]string
	presignErr error
	deleted    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeStore) PutObject(_ context.Context, key string, body io.ReadSeeker, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = string(b)
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) PresignDownload(_ context.Context, key string) (string, time.Time, error) {
	if f.presignErr != nil {
		return "", time.Time{}, f.presignErr
	}
	return "https://exports.example.com/" + key, time.Date(2026, 10, 15, 12, 15, 0, 0, time.UTC), nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func expectExportRows(mock sqlmock.Sqlmock, projectID uuid.UUID, n int) {
	rows := sqlmock.NewRows(entryColumns)
	for i := 0; i < n; i++ {
		uid := uuid.New()
		rows.AddRow(uuid.NewString(), projectID.String(), "Apollo", uid.String(), "created", "task", uuid.NewString(),
			nil, time.Date(2026, 10, 1+i, 0, 0, 0, 0, time.UTC), uid.String(), "dev@example.com", "Dev", nil)
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.project_id = $1 ORDER BY a.created_at ASC, a.id")).
		WithArgs(projectID).
		WillReturnRows(rows)
}

func TestExportDisabledWithoutStore(t *testing.T) {
	l, _, _ := newTestLogger(t)
	x := NewExporter(l, nil, logger.Discard())

	assert.False(t, x.Enabled())
	_, err := x.Export(context.Background(), uuid.New(), activity.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestExportWritesJSONLines(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	store := newFakeStore()
	x := NewExporter(l, store, logger.Discard())
	projectID := uuid.New()
	expectExportRows(mock, projectID, 3)

	out, err := x.Export(context.Background(), projectID, activity.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Entries)
	assert.True(t, strings.HasPrefix(out.Key, "activity/"+projectID.String()+"/"))
	assert.True(t, strings.HasSuffix(out.Key, ".jsonl"))
	assert.Equal(t, "https://exports.example.com/"+out.Key, out.URL)
	assert.Equal(t, exportContentType, store.types[out.Key])

	lines := strings.Split(strings.TrimSpace(store.objects[out.Key]), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"action":"created"`)
}

func TestExportRemovesObjectWhenPresignFails(t *testing.T) {
	l, mock, _ := newTestLogger(t)
	store := newFakeStore()
	store.presignErr = errors.New("signer offline")
	x := NewExporter(l, store, logger.Discard())
	projectID := uuid.New()
	expectExportRows(mock, projectID, 1)

	_, err := x.Export(context.Background(), projectID, activity.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	require.Len(t, store.deleted, 1)
	assert.Empty(t, store.objects)
}
