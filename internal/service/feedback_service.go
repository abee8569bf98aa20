package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrAthleteNotFound = errors.New("athlete not found")

// FeedbackResult reports everything that happened when an activity was
// processed: the session it completed and any metric detections, each with
// a human-readable reason.
type FeedbackResult struct {
	ActivityID       int64       `json:"activity_id"`
	MatchedSessionID string      `json:"matched_session_id,omitempty"`
	MatchScore       float64     `json:"match_score,omitempty"`
	MatchReason      string      `json:"match_reason,omitempty"`
	RaceTag          string      `json:"race_tag,omitempty"`
	VDOT             *VDOTResult `json:"vdot,omitempty"`
	VDOTReason       string      `json:"vdot_reason,omitempty"`
	FTP              *FTPResult  `json:"ftp,omitempty"`
	FTPReason        string      `json:"ftp_reason,omitempty"`
	CompletionPct    float64     `json:"completion_pct,omitempty"`
}

// FeedbackService processes a finished activity end to end: zone analysis,
// session matching, threshold metric detection, persistence.
type FeedbackService interface {
	ProcessActivity(ctx context.Context, athleteID primitive.ObjectID, activity *domain.Activity) (*FeedbackResult, error)
}

// feedbackService implements the FeedbackService interface.
type feedbackService struct {
	athleteRepo repository.AthleteRepository
	planRepo    repository.PlanRepository
	metricsRepo repository.MetricsRepository
	training    TrainingService
	matcher     MatcherService
	vdotDetect  VDOTDetectionService
	ftpDetect   FTPDetectionService
}

// NewFeedbackService creates a new instance of feedbackService.
func NewFeedbackService(
	athleteRepo repository.AthleteRepository,
	planRepo repository.PlanRepository,
	metricsRepo repository.MetricsRepository,
	training TrainingService,
	matcher MatcherService,
	vdotDetect VDOTDetectionService,
	ftpDetect FTPDetectionService,
) FeedbackService {
	return &feedbackService{
		athleteRepo: athleteRepo,
		planRepo:    planRepo,
		metricsRepo: metricsRepo,
		training:    training,
		matcher:     matcher,
		vdotDetect:  vdotDetect,
		ftpDetect:   ftpDetect,
	}
}

func (s *feedbackService) ProcessActivity(ctx context.Context, athleteID primitive.ObjectID, activity *domain.Activity) (*FeedbackResult, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}

	metricsRec, err := s.metricsRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		metricsRec = &domain.MetricsRecord{AthleteID: athleteID, Metrics: *domain.NewTrainingMetrics()}
	}
	metrics := &metricsRec.Metrics

	analysis := s.training.AnalyzeActivity(activity, metrics.Zones.HeartRate, metrics.Zones.Power)

	result := &FeedbackResult{ActivityID: activity.ID}
	if analysis.IsRace {
		result.RaceTag = analysis.RaceTag
	}

	// Session matching against the stored plan.
	planRec, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if planRec != nil {
		if match := s.matcher.Match(&planRec.Plan, analysis, athlete.Style); match != nil {
			match.Session.MarkComplete(activity.ID, activity.StartDate)
			result.MatchedSessionID = match.Session.ID
			result.MatchScore = match.Score
			result.MatchReason = match.Reason
			result.CompletionPct = planRec.Plan.CompletionPercentage()
			if err := s.planRepo.Upsert(ctx, planRec); err != nil {
				return nil, err
			}
		}
	}

	metricsChanged := false

	if vdotResult, reason := s.vdotDetect.FromActivity(analysis); vdotResult != nil {
		result.VDOT = vdotResult
		result.VDOTReason = reason
		source := domain.MetricSource{
			ActivityID:      activity.ID,
			ActivityName:    activity.Name,
			DetectionMethod: "race_result",
			Notes:           reason,
		}
		if metrics.UpdateVDOT(vdotResult.VDOT, source) {
			metricsChanged = true
		}
	} else {
		result.VDOTReason = reason
	}

	if ftpResult, reason := s.ftpDetect.FromActivity(analysis); ftpResult != nil {
		result.FTP = ftpResult
		result.FTPReason = reason
		source := domain.MetricSource{
			ActivityID:      activity.ID,
			ActivityName:    activity.Name,
			DetectionMethod: fmt.Sprintf("%s_test", ftpResult.TestDuration),
			Notes:           reason,
		}
		if metrics.UpdateFTP(ftpResult.FTP, source) {
			metricsChanged = true
		} else {
			log.Printf("INFO: feedback: FTP detection skipped, current value is lab measured")
		}
	} else {
		result.FTPReason = reason
	}

	if metricsChanged {
		if err := s.metricsRepo.Upsert(ctx, metricsRec); err != nil {
			return nil, err
		}
	}

	return result, nil
}
