package router

import (
	"vip-manifest-service/internal/usecase"
	"vip-manifest-service/pkg/logger"
)

// SubjectRouter routes staged manifests to a handler based on their subject
type SubjectRouter struct {
	handlers []usecase.ManifestHandler
	logger   logger.Logger
}

// NewSubjectRouter creates a new subject router
func NewSubjectRouter(logger logger.Logger) *SubjectRouter {
	return &SubjectRouter{
		handlers: make([]usecase.ManifestHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler
func (r *SubjectRouter) Register(handler usecase.ManifestHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered manifest handler")
}

// GetHandler returns the first handler claiming the subject, nil when none do
func (r *SubjectRouter) GetHandler(subject string) usecase.ManifestHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(subject) {
			return handler
		}
	}
	return nil
}
