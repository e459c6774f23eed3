package repository

import (
	"context"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoManifestRepository implements the ManifestRepository interface
type MongoManifestRepository struct {
	collection *mongo.Collection
}

// NewMongoManifestRepository creates a new MongoDB manifest repository
func NewMongoManifestRepository(db *mongo.Database) repository.ManifestRepository {
	collection := db.Collection("manifests")

	ctx := context.Background()

	messageIDIndex := mongo.IndexModel{
		Keys:    bson.M{"messageId": 1},
		Options: options.Index().SetUnique(true),
	}

	statusIndex := mongo.IndexModel{
		Keys: bson.M{"processStatus": 1},
	}

	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	unprocessedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		messageIDIndex,
		statusIndex,
		receivedAtIndex,
		unprocessedIndex,
	})

	return &MongoManifestRepository{
		collection: collection,
	}
}

// Save stages an inbound manifest
func (r *MongoManifestRepository) Save(ctx context.Context, manifest *entity.Manifest) error {
	if manifest.ProcessStatus == "" {
		manifest.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.InsertOne(ctx, manifest)
	return err
}

// FindByMessageIDs batch-checks which message ids are already staged
func (r *MongoManifestRepository) FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.Manifest, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"messageId": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	existing := make(map[string]*entity.Manifest)
	for cursor.Next(ctx) {
		var manifest entity.Manifest
		if err := cursor.Decode(&manifest); err != nil {
			return nil, err
		}
		existing[manifest.MessageID] = &manifest
	}
	return existing, cursor.Err()
}

// FindUnprocessed returns pending manifests, oldest first
func (r *MongoManifestRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Manifest, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "receivedAt", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var manifests []*entity.Manifest
	if err := cursor.All(ctx, &manifests); err != nil {
		return nil, err
	}
	return manifests, nil
}

// GetLatest returns the most recently received manifest, nil when none exist
func (r *MongoManifestRepository) GetLatest(ctx context.Context) (*entity.Manifest, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})

	var manifest entity.Manifest
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&manifest)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// UpdateStatus moves a manifest to a new process status
func (r *MongoManifestRepository) UpdateStatus(ctx context.Context, messageID, status string, at time.Time) error {
	update := bson.M{
		"processStatus": status,
	}
	if status == entity.StatusProcessing {
		update["processStartedAt"] = at
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		bson.M{"$set": update},
	)
	return err
}

// UpdateProcessSteps records partial progress on a manifest
func (r *MongoManifestRepository) UpdateProcessSteps(ctx context.Context, messageID string, steps entity.ProcessSteps) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		bson.M{"$set": bson.M{"processSteps": steps}},
	)
	return err
}

// MarkProcessed finalizes a manifest with its outcome and extracted counters
func (r *MongoManifestRepository) MarkProcessed(ctx context.Context, messageID, status, errorDetail string, extracted map[string]interface{}) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		bson.M{"$set": bson.M{
			"processStatus": status,
			"processedAt":   time.Now(),
			"errorDetail":   errorDetail,
			"extractedData": extracted,
		}},
	)
	return err
}

// ResetStaleProcessing returns manifests stuck in PROCESSING to PENDING so a
// crashed run can be retried
func (r *MongoManifestRepository) ResetStaleProcessing(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"processStatus":    entity.StatusProcessing,
			"processStartedAt": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"processStatus": entity.StatusPending}},
	)
	return err
}
