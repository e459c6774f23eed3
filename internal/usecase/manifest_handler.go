package usecase

import (
	"context"

	"vip-manifest-service/internal/domain/entity"
)

// ManifestHandler defines the interface for staged-manifest handlers
type ManifestHandler interface {
	// CanHandle determines if this handler can process the given subject
	CanHandle(subject string) bool

	// Process reconciles the staged manifest
	Process(ctx context.Context, manifest *entity.Manifest) error
}

// SubjectRouter resolves the handler for a manifest subject
type SubjectRouter interface {
	// Register registers a handler
	Register(handler ManifestHandler)

	// GetHandler returns the handler for a given subject
	GetHandler(subject string) ManifestHandler
}
