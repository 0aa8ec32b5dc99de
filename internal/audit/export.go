package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"projecthub/internal/domain/activity"
	"projecthub/internal/ids"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	exportContentType = "application/x-ndjson"
	exportKeyFmt      = "activity/%s/%s.jsonl"

	errExportDisabled    = "activity export is not configured"
	errEncodeEntryFmt    = "failed to encode activity entry: %w"
	msgExportCleanupFail = "failed to remove export object after presign failure"
	msgExportFailed      = "activity export failed"
)

// ObjectStore is where exports are written.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	PresignDownload(ctx context.Context, key string) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// Export describes one finished export.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Entries   int       `json:"entries"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Exporter writes a filtered project ledger as JSON lines to object storage.
type Exporter struct {
	ledger *Logger
	store  ObjectStore
	log    logrus.FieldLogger
}

// NewExporter returns an exporter. A nil store yields one that always
// reports ErrUnavailable.
func NewExporter(ledger *Logger, store ObjectStore, log logrus.FieldLogger) *Exporter {
	return &Exporter{
		ledger: ledger,
		store:  store,
		log:    log.WithField("component", "activity_export"),
	}
}

func (x *Exporter) Enabled() bool {
	return x != nil && x.store != nil
}

func (x *Exporter) Export(ctx context.Context, projectID uuid.UUID, filter activity.Filter) (*Export, error) {
	if !x.Enabled() {
		return nil, apperrors.Unavailable(errExportDisabled)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	count := 0
	err := x.ledger.EachForProject(ctx, projectID, filter, func(e *activity.Entry) error {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf(errEncodeEntryFmt, err)
		}
		count++
		return nil
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf(exportKeyFmt, projectID, ids.New())
	if err := x.store.PutObject(ctx, key, bytes.NewReader(buf.Bytes()), exportContentType); err != nil {
		x.log.WithError(err).WithField("project_id", projectID).Error(msgExportFailed)
		return nil, apperrors.Unavailable(msgExportFailed)
	}

	url, expiresAt, err := x.store.PresignDownload(ctx, key)
	if err != nil {
		if delErr := x.store.DeleteObject(context.WithoutCancel(ctx), key); delErr != nil {
			x.log.WithError(delErr).WithField("key", key).Warn(msgExportCleanupFail)
		}
		x.log.WithError(err).WithField("project_id", projectID).Error(msgExportFailed)
		return nil, apperrors.Unavailable(msgExportFailed)
	}

	x.log.WithFields(logrus.Fields{"project_id": projectID, "key": key, "entries": count}).Info("activity exported")
	return &Export{Key: key, URL: url, Entries: count, ExpiresAt: expiresAt}, nil
}
