package repository

import (
	"context"

	"vip-manifest-service/internal/domain/entity"
)

// PassengerRepository defines the registry operations for passenger records.
// SearchByName is a pre-filter: its breadth is up to the implementation, the
// reconciler re-scores every candidate itself.
type PassengerRepository interface {
	SearchByName(ctx context.Context, nameFragment, airportID string) ([]*entity.Passenger, error)
	Create(ctx context.Context, passenger *entity.Passenger) error
	UpdateCategory(ctx context.Context, id, category string) error
}
