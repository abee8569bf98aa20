package service

import (
	"context"
	"errors"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMetricsNotFound = errors.New("no metrics found for athlete")
	ErrUnknownMetric   = errors.New("unknown metric")
	ErrMetricNotSet    = errors.New("metric has no value to confirm")
)

// MetricsService manages an athlete's threshold metrics outside automatic
// detection: lab values and user confirmation.
type MetricsService interface {
	Get(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingMetrics, error)
	SetLTHRFromLab(ctx context.Context, athleteID primitive.ObjectID, value int, testDate, notes string) (*domain.TrainingMetrics, error)
	SetFTPFromLab(ctx context.Context, athleteID primitive.ObjectID, value int, testDate, notes string) (*domain.TrainingMetrics, error)
	// Confirm marks the named metric ("lthr", "ftp", "vdot") as accepted by
	// the athlete.
	Confirm(ctx context.Context, athleteID primitive.ObjectID, metric string) (*domain.TrainingMetrics, error)
}

// metricsService implements the MetricsService interface.
type metricsService struct {
	metricsRepo repository.MetricsRepository
}

// NewMetricsService creates a new instance of metricsService.
func NewMetricsService(metricsRepo repository.MetricsRepository) MetricsService {
	return &metricsService{metricsRepo: metricsRepo}
}

func (s *metricsService) Get(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingMetrics, error) {
	record, err := s.metricsRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMetricsNotFound
		}
		return nil, err
	}
	return &record.Metrics, nil
}

func (s *metricsService) SetLTHRFromLab(ctx context.Context, athleteID primitive.ObjectID, value int, testDate, notes string) (*domain.TrainingMetrics, error) {
	return s.update(ctx, athleteID, func(m *domain.TrainingMetrics) error {
		m.SetLTHRFromLab(value, testDate, notes)
		return nil
	})
}

func (s *metricsService) SetFTPFromLab(ctx context.Context, athleteID primitive.ObjectID, value int, testDate, notes string) (*domain.TrainingMetrics, error) {
	return s.update(ctx, athleteID, func(m *domain.TrainingMetrics) error {
		m.SetFTPFromLab(value, testDate, notes)
		return nil
	})
}

func (s *metricsService) Confirm(ctx context.Context, athleteID primitive.ObjectID, metric string) (*domain.TrainingMetrics, error) {
	return s.update(ctx, athleteID, func(m *domain.TrainingMetrics) error {
		var slot *domain.MetricValue
		switch metric {
		case "lthr":
			slot = m.LTHR
		case "ftp":
			slot = m.FTP
		case "vdot":
			slot = m.VDOT
		default:
			return ErrUnknownMetric
		}
		if slot == nil {
			return ErrMetricNotSet
		}
		slot.Confirm()
		return nil
	})
}

// update loads the athlete's metrics record (creating an empty one when
// missing), applies fn and persists the result.
func (s *metricsService) update(ctx context.Context, athleteID primitive.ObjectID, fn func(*domain.TrainingMetrics) error) (*domain.TrainingMetrics, error) {
	record, err := s.metricsRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		record = &domain.MetricsRecord{AthleteID: athleteID, Metrics: *domain.NewTrainingMetrics()}
	}
	if err := fn(&record.Metrics); err != nil {
		return nil, err
	}
	if err := s.metricsRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return &record.Metrics, nil
}
