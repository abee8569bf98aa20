package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanRecord is the persisted plan document for an athlete: the structured
// plan together with the raw markdown it was parsed from. One record per
// athlete; ingestion upserts it.
type PlanRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AthleteID   primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	RawMarkdown string             `bson:"rawMarkdown,omitempty" json:"-"`
	Plan        Plan               `bson:"plan" json:"plan"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MetricsRecord is the persisted threshold metrics document for an athlete.
type MetricsRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Metrics   TrainingMetrics    `bson:"metrics" json:"metrics"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
