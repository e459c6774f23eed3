package repository

import (
	"context"
	"regexp"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPassengerRepository implements PassengerRepository
type MongoPassengerRepository struct {
	collection *mongo.Collection
}

// NewMongoPassengerRepository creates a new passenger repository
func NewMongoPassengerRepository(db *mongo.Database) repository.PassengerRepository {
	collection := db.Collection("passengers")

	ctx := context.Background()

	documentIndex := mongo.IndexModel{
		Keys:    bson.M{"documentId": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, documentIndex)

	// Compound index backing SearchByName
	nameIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "airportId", Value: 1},
			{Key: "name", Value: 1},
		},
	}
	collection.Indexes().CreateOne(ctx, nameIndex)

	return &MongoPassengerRepository{
		collection: collection,
	}
}

// SearchByName finds passengers at the airport whose name contains the
// fragment, case-insensitively. The fragment is regex-quoted so manifest
// names cannot inject pattern syntax.
func (r *MongoPassengerRepository) SearchByName(ctx context.Context, nameFragment, airportID string) ([]*entity.Passenger, error) {
	filter := bson.M{
		"airportId": airportID,
		"name": bson.M{
			"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(nameFragment), Options: "i"},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var passengers []*entity.Passenger
	if err := cursor.All(ctx, &passengers); err != nil {
		return nil, err
	}
	return passengers, nil
}

// Create inserts a new passenger record
func (r *MongoPassengerRepository) Create(ctx context.Context, passenger *entity.Passenger) error {
	now := time.Now()
	passenger.CreatedAt = now
	passenger.UpdatedAt = now
	if passenger.ID == "" {
		passenger.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, passenger)
	return err
}

// UpdateCategory raises the stored loyalty category of a passenger
func (r *MongoPassengerRepository) UpdateCategory(ctx context.Context, id, category string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"category":  category,
			"updatedAt": time.Now(),
		}},
	)
	return err
}
