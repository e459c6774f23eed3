package entity

import (
	"time"
)

// SeatAssignment links one passenger to a flight with the seat and status
// taken from the manifest line that placed them there
type SeatAssignment struct {
	PassengerID string `bson:"passengerId"`
	Seat        string `bson:"seat"`
	Status      string `bson:"status"`
}

// Flight is a registry record of one departure from an airport on a date
type Flight struct {
	ID           string           `bson:"_id,omitempty"`
	FlightNumber string           `bson:"flightNumber"`
	Destination  string           `bson:"destination"`
	Date         time.Time        `bson:"date"`
	AirportID    string           `bson:"airportId"`
	Passengers   []SeatAssignment `bson:"passengers"`
	CreatedAt    time.Time        `bson:"createdAt"`
	UpdatedAt    time.Time        `bson:"updatedAt"`
}

// HasPassenger reports whether the passenger is already seated on this flight
func (f *Flight) HasPassenger(passengerID string) bool {
	for _, assignment := range f.Passengers {
		if assignment.PassengerID == passengerID {
			return true
		}
	}
	return false
}
