package entity

import (
	"time"
)

// Passenger is a registry record of a VIP-program guest. The same physical
// person may appear on many manifests with inconsistent spellings; the
// reconciler is responsible for resolving those to a single record.
type Passenger struct {
	ID         string    `bson:"_id,omitempty"`
	Name       string    `bson:"name"`
	DocumentID string    `bson:"documentId"`
	Category   string    `bson:"category"`
	AirportID  string    `bson:"airportId"`
	FlightIDs  []string  `bson:"flightIds"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}
