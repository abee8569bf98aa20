package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const metricsCollectionName = "metrics"

// mongoMetricsRepository implements repository.MetricsRepository
type mongoMetricsRepository struct {
	collection *mongo.Collection
}

// NewMongoMetricsRepository creates a new metrics repository.
func NewMongoMetricsRepository(db *mongo.Database) repository.MetricsRepository {
	return &mongoMetricsRepository{
		collection: db.Collection(metricsCollectionName),
	}
}

// Upsert stores the athlete's threshold metrics, replacing any previous
// document.
func (r *mongoMetricsRepository) Upsert(ctx context.Context, record *domain.MetricsRecord) error {
	if record.AthleteID == primitive.NilObjectID {
		return errors.New("metrics record requires athleteId")
	}
	record.UpdatedAt = time.Now().UTC()

	filter := bson.M{"athleteId": record.AthleteID}
	update := bson.M{
		"$set": bson.M{
			"metrics":   record.Metrics,
			"updatedAt": record.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"athleteId": record.AthleteID,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByAthleteID retrieves the athlete's threshold metrics.
func (r *mongoMetricsRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.MetricsRecord, error) {
	var record domain.MetricsRecord
	filter := bson.M{"athleteId": athleteID}

	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// EnsureMetricsIndexes creates necessary indexes. Call during startup.
func EnsureMetricsIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
