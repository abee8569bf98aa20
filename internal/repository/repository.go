package repository

import (
	"context"

	"alcyxob/coach-engine/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AthleteRepository defines the interface for interacting with athlete data.
type AthleteRepository interface {
	Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Athlete, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	UpdateStyle(ctx context.Context, id primitive.ObjectID, style domain.SchedulingStyle) error
}

// PlanRepository defines the interface for interacting with plan documents.
// Each athlete has at most one current plan record.
type PlanRepository interface {
	Upsert(ctx context.Context, record *domain.PlanRecord) error
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.PlanRecord, error)
	DeleteByAthleteID(ctx context.Context, athleteID primitive.ObjectID) error
}

// MetricsRepository defines the interface for interacting with athlete
// threshold metrics.
type MetricsRepository interface {
	Upsert(ctx context.Context, record *domain.MetricsRecord) error
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.MetricsRecord, error)
}
