package repository

import (
	"context"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFlightRepository implements FlightRepository
type MongoFlightRepository struct {
	collection *mongo.Collection
}

// NewMongoFlightRepository creates a new flight repository
func NewMongoFlightRepository(db *mongo.Database) repository.FlightRepository {
	collection := db.Collection("flights")

	ctx := context.Background()

	// One flight per number/destination/date/airport
	flightIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "flightNumber", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "date", Value: 1},
			{Key: "airportId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, flightIndex)

	dateIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "airportId", Value: 1},
			{Key: "date", Value: 1},
		},
	}
	collection.Indexes().CreateOne(ctx, dateIndex)

	return &MongoFlightRepository{
		collection: collection,
	}
}

// ListByDate returns the flights registered for a date at an airport
func (r *MongoFlightRepository) ListByDate(ctx context.Context, date time.Time, airportID string) ([]*entity.Flight, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	filter := bson.M{
		"airportId": airportID,
		"date": bson.M{
			"$gte": dayStart,
			"$lt":  dayEnd,
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var flights []*entity.Flight
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// Create inserts a new flight record
func (r *MongoFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	now := time.Now()
	flight.CreatedAt = now
	flight.UpdatedAt = now
	if flight.ID == "" {
		flight.ID = primitive.NewObjectID().Hex()
	}
	if flight.Passengers == nil {
		flight.Passengers = make([]entity.SeatAssignment, 0)
	}

	_, err := r.collection.InsertOne(ctx, flight)
	return err
}

// LinkPassenger appends a seat assignment to the flight. The caller has
// already checked the passenger is not on the flight.
func (r *MongoFlightRepository) LinkPassenger(ctx context.Context, flightID, passengerID, seat, status string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": flightID},
		bson.M{
			"$push": bson.M{"passengers": entity.SeatAssignment{
				PassengerID: passengerID,
				Seat:        seat,
				Status:      status,
			}},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
