package repository

import (
	"context"
	"time"

	"vip-manifest-service/internal/domain/entity"
)

// ManifestRepository defines the interface for staged manifest operations
type ManifestRepository interface {
	Save(ctx context.Context, manifest *entity.Manifest) error
	FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.Manifest, error)
	FindUnprocessed(ctx context.Context, limit int) ([]*entity.Manifest, error)
	GetLatest(ctx context.Context) (*entity.Manifest, error)
	UpdateStatus(ctx context.Context, messageID, status string, at time.Time) error
	UpdateProcessSteps(ctx context.Context, messageID string, steps entity.ProcessSteps) error
	MarkProcessed(ctx context.Context, messageID, status, errorDetail string, extracted map[string]interface{}) error
	ResetStaleProcessing(ctx context.Context, olderThan time.Duration) error
}
