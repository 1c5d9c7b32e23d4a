// Package backup writes point-in-time JSON snapshots of the tracker to an
// S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/google/uuid"
)

// Source is the read side of the tracker store.
type Source interface {
	GetState(ctx context.Context) (*models.TrackerState, error)
	ListExtraPuffs(ctx context.Context) ([]models.ExtraPuff, error)
}

// ObjectPutter is the part of *s3.Client the snapshotter uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is the stored document.
type Snapshot struct {
	TakenAt    time.Time            `json:"taken_at"`
	State      *models.TrackerState `json:"state"`
	ExtraPuffs []models.ExtraPuff   `json:"extra_puffs"`
}

type Snapshotter struct {
	source Source
	client ObjectPutter
	bucket string
	now    func() time.Time
}

func NewSnapshotter(source Source, client ObjectPutter, bucket string) *Snapshotter {
	return &Snapshotter{source: source, client: client, bucket: bucket, now: time.Now}
}

func objectKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("snapshots/%04d/%02d/%02d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

// Snapshot reads the tracker and uploads it. It returns the object key.
func (s *Snapshotter) Snapshot(ctx context.Context) (string, error) {
	st, err := s.source.GetState(ctx)
	if err != nil {
		return "", fmt.Errorf("read state: %w", err)
	}

	puffs, err := s.source.ListExtraPuffs(ctx)
	if err != nil {
		return "", fmt.Errorf("read extra puffs: %w", err)
	}

	takenAt := s.now().UTC()
	body, err := json.Marshal(Snapshot{TakenAt: takenAt, State: st, ExtraPuffs: puffs})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := objectKey(takenAt)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	return key, nil
}
