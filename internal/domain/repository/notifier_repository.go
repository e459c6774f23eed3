package repository

import (
	"context"

	"vip-manifest-service/internal/domain/entity"
)

// NotifierRepository delivers reconciliation outcomes to operators. Delivery
// failures are the caller's to log; they never fail a batch.
type NotifierRepository interface {
	SendSummary(ctx context.Context, airportCode string, result *entity.ReconcileResult) error
}
