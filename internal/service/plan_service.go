package service

import (
	"context"
	"errors"
	"log"
	"time"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/parser"
	"alcyxob/coach-engine/internal/repository"
	"alcyxob/coach-engine/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound = errors.New("no plan found for athlete")
	ErrEmptyPlan    = errors.New("no week structure found in plan document")
)

type PlanService interface {
	// Ingest parses a plan document, merges it against the athlete's stored
	// plan, persists the result and returns it.
	Ingest(ctx context.Context, athleteID primitive.ObjectID, document string, inputs parser.UserInputs) (*domain.Plan, error)
	// CurrentPlan returns the athlete's stored plan.
	CurrentPlan(ctx context.Context, athleteID primitive.ObjectID) (*domain.Plan, error)
	// CurrentWeek returns the week containing today, or the nearest
	// upcoming one.
	CurrentWeek(ctx context.Context, athleteID primitive.ObjectID) (*domain.Week, error)
	// DeletePlan archives the stored plan, then removes it.
	DeletePlan(ctx context.Context, athleteID primitive.ObjectID) error
}

// planService implements the PlanService interface.
type planService struct {
	planRepo    repository.PlanRepository
	metricsRepo repository.MetricsRepository
	archive     storage.ArchiveStore
	evolution   EvolutionService
	training    TrainingService
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.PlanRepository,
	metricsRepo repository.MetricsRepository,
	archive storage.ArchiveStore,
	evolution EvolutionService,
	training TrainingService,
) PlanService {
	return &planService{
		planRepo:    planRepo,
		metricsRepo: metricsRepo,
		archive:     archive,
		evolution:   evolution,
		training:    training,
	}
}

func (s *planService) Ingest(ctx context.Context, athleteID primitive.ObjectID, document string, inputs parser.UserInputs) (*domain.Plan, error) {
	markdown, hint := parser.SplitStructuredBlock(document)

	// HR zones annotate parsed zone labels with concrete BPM ranges.
	var hrZones *domain.ZoneSet
	if rec, err := s.metricsRepo.GetByAthleteID(ctx, athleteID); err == nil {
		hrZones = rec.Metrics.Zones.HeartRate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	newPlan := parser.Parse(markdown, hint, athleteID.Hex(), inputs, hrZones)
	if len(newPlan.Weeks) == 0 {
		log.Printf("WARN: ingest: no weeks parsed for athlete %s, keeping stored plan", athleteID.Hex())
		return nil, ErrEmptyPlan
	}

	today := time.Now().UTC().Format(domain.DateLayout)

	existing, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Plan.IsFinished(today) {
			s.archivePlan(ctx, athleteID, &existing.Plan)
		} else {
			newPlan = s.evolution.MergePastWeeks(&existing.Plan, newPlan, today)
			s.evolution.CarryCompletion(&existing.Plan, newPlan)
		}
	}

	record := &domain.PlanRecord{
		AthleteID:   athleteID,
		RawMarkdown: markdown,
		Plan:        *newPlan,
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	if err := s.planRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	for _, issue := range newPlan.Validate() {
		log.Printf("WARN: ingest: plan issue for athlete %s: %s", athleteID.Hex(), issue)
	}
	return newPlan, nil
}

// archivePlan prepends the finished plan to the athlete's archive. Archive
// failures are logged, not returned; the new plan must still be stored.
func (s *planService) archivePlan(ctx context.Context, athleteID primitive.ObjectID, plan *domain.Plan) {
	if s.archive == nil {
		return
	}
	entries, err := s.archive.LoadArchive(ctx, athleteID.Hex())
	if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Printf("WARN: ingest: could not load archive for athlete %s: %v", athleteID.Hex(), err)
		return
	}
	entries = append([]storage.ArchiveEntry{storage.NewArchiveEntry(plan)}, entries...)
	if _, err := s.archive.SaveArchive(ctx, athleteID.Hex(), entries); err != nil {
		log.Printf("WARN: ingest: could not save archive for athlete %s: %v", athleteID.Hex(), err)
	}
}

func (s *planService) CurrentPlan(ctx context.Context, athleteID primitive.ObjectID) (*domain.Plan, error) {
	record, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &record.Plan, nil
}

func (s *planService) DeletePlan(ctx context.Context, athleteID primitive.ObjectID) error {
	record, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	s.archivePlan(ctx, athleteID, &record.Plan)
	if err := s.planRepo.DeleteByAthleteID(ctx, athleteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	log.Printf("INFO: ingest: deleted plan for athlete %s", athleteID.Hex())
	return nil
}

func (s *planService) CurrentWeek(ctx context.Context, athleteID primitive.ObjectID) (*domain.Week, error) {
	plan, err := s.CurrentPlan(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	today := time.Now().UTC().Format(domain.DateLayout)
	week := s.training.CurrentWeek(plan, today)
	if week == nil {
		return nil, ErrPlanNotFound
	}
	return week, nil
}
