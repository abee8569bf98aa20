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

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Upsert stores the athlete's current plan record, replacing any previous
// one. CreatedAt is preserved across replacements.
func (r *mongoPlanRepository) Upsert(ctx context.Context, record *domain.PlanRecord) error {
	if record.AthleteID == primitive.NilObjectID {
		return errors.New("plan record requires athleteId")
	}
	now := time.Now().UTC()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	filter := bson.M{"athleteId": record.AthleteID}
	update := bson.M{
		"$set": bson.M{
			"plan":        record.Plan,
			"rawMarkdown": record.RawMarkdown,
			"updatedAt":   record.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"athleteId": record.AthleteID,
			"createdAt": record.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByAthleteID retrieves the athlete's current plan record.
func (r *mongoPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.PlanRecord, error) {
	var record domain.PlanRecord
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

// DeleteByAthleteID removes the athlete's plan record.
func (r *mongoPlanRepository) DeleteByAthleteID(ctx context.Context, athleteID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"athleteId": athleteID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One current plan per athlete.
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
