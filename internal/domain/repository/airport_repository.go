package repository

import (
	"context"

	"vip-manifest-service/internal/domain/entity"
)

// AirportRepository resolves IATA airport codes against reference data
type AirportRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airport, error)
}
