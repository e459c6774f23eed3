package repository

import (
	"context"
	"time"

	"vip-manifest-service/internal/domain/entity"
)

// FlightRepository defines the registry operations for flight records
type FlightRepository interface {
	ListByDate(ctx context.Context, date time.Time, airportID string) ([]*entity.Flight, error)
	Create(ctx context.Context, flight *entity.Flight) error
	LinkPassenger(ctx context.Context, flightID, passengerID, seat, status string) error
}
