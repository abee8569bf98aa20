package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/coach-engine/internal/domain"
)

func raceWeekPlan() *domain.Plan {
	return &domain.Plan{
		AthleteID: "athlete-1",
		Weeks: []domain.Week{
			{
				WeekNumber: 1,
				StartDate:  "2026-05-04",
				EndDate:    "2026-05-10",
				Sessions: []domain.Session{
					{ID: "w1-s1", Day: "Tuesday", Type: domain.SessionRun, Priority: domain.PriorityKey,
						Description: "Club league race - 5 miles all out"},
					{ID: "w1-s2", Day: "Thursday", Type: domain.SessionRun,
						Description: "Easy recovery run, 40 mins", DurationMinutes: 40},
					{ID: "w1-s3", Day: "Saturday", Type: domain.SessionRest, Description: "Rest day"},
				},
			},
		},
	}
}

func runAnalysis(act *domain.Activity) *ActivityAnalysis {
	return &ActivityAnalysis{
		Activity: act,
		IsRace:   act.WorkoutType == domain.WorkoutTypeRace,
	}
}

func TestMatchDisciplinarianByDate(t *testing.T) {
	plan := raceWeekPlan()
	plan.Weeks[0].Sessions[0].Date = "2026-05-05"

	analysis := runAnalysis(&domain.Activity{
		ID:        100,
		Name:      "Morning Run",
		Type:      domain.ActivityRun,
		StartDate: "2026-05-05T07:30:00Z",
	})

	result := NewMatcherService().Match(plan, analysis, domain.StyleDisciplinarian)

	require.NotNil(t, result)
	assert.Equal(t, "w1-s1", result.Session.ID)
	assert.Equal(t, "date match", result.Reason)
}

func TestMatchDisciplinarianDateTypeMismatchFallsThrough(t *testing.T) {
	plan := &domain.Plan{Weeks: []domain.Week{
		{
			WeekNumber: 1, StartDate: "2026-05-04", EndDate: "2026-05-10",
			Sessions: []domain.Session{
				{ID: "w1-s1", Type: domain.SessionBike, Date: "2026-05-05", Description: "FTP intervals"},
			},
		},
	}}

	analysis := runAnalysis(&domain.Activity{
		ID:        101,
		Name:      "Morning Run",
		Type:      domain.ActivityRun,
		StartDate: "2026-05-05T07:30:00Z",
	})

	// The dated session is a ride, and there is no run session anywhere
	// in the week to fall back on.
	assert.Nil(t, NewMatcherService().Match(plan, analysis, domain.StyleDisciplinarian))
}

func TestMatchOutsidePlanWeeks(t *testing.T) {
	analysis := runAnalysis(&domain.Activity{
		ID:        102,
		Name:      "Morning Run",
		Type:      domain.ActivityRun,
		StartDate: "2026-07-01T07:30:00Z",
	})

	assert.Nil(t, NewMatcherService().Match(raceWeekPlan(), analysis, domain.StyleImproviser))
}

func TestMatchUniqueCandidateBoost(t *testing.T) {
	plan := &domain.Plan{Weeks: []domain.Week{
		{
			WeekNumber: 1, StartDate: "2026-05-04", EndDate: "2026-05-10",
			Sessions: []domain.Session{
				{ID: "w1-s1", Type: domain.SessionRun, Description: "Easy run 40 mins"},
			},
		},
	}}

	// A title with no textual overlap scores only the base point, but a
	// lone candidate is still accepted.
	analysis := runAnalysis(&domain.Activity{
		ID:        103,
		Name:      "W1D2",
		Type:      domain.ActivityRun,
		StartDate: "2026-05-06T18:00:00Z",
	})

	result := NewMatcherService().Match(plan, analysis, domain.StyleImproviser)

	require.NotNil(t, result)
	assert.Equal(t, "w1-s1", result.Session.ID)
	assert.InDelta(t, matchThresholdUnique, result.Score, 0.001)
	assert.Contains(t, result.Reason, "unique match boost")
}

func TestMatchMultipleWeakCandidatesRejected(t *testing.T) {
	plan := &domain.Plan{Weeks: []domain.Week{
		{
			WeekNumber: 1, StartDate: "2026-05-04", EndDate: "2026-05-10",
			Sessions: []domain.Session{
				{ID: "w1-s1", Type: domain.SessionRun, Description: "Easy run"},
				{ID: "w1-s2", Type: domain.SessionRun, Description: "Long run"},
			},
		},
	}}

	analysis := runAnalysis(&domain.Activity{
		ID:        104,
		Name:      "W1D2",
		Type:      domain.ActivityRun,
		StartDate: "2026-05-06T18:00:00Z",
	})

	assert.Nil(t, NewMatcherService().Match(plan, analysis, domain.StyleImproviser))
}

func TestMatchRaceActivityToRaceSession(t *testing.T) {
	plan := raceWeekPlan()
	analysis := runAnalysis(&domain.Activity{
		ID:          105,
		Name:        "Club League Race 5 Mile",
		Type:        domain.ActivityRun,
		StartDate:   "2026-05-05T19:00:00Z",
		WorkoutType: domain.WorkoutTypeRace,
		Distance:    8050,
		MovingTime:  1860,
	})

	result := NewMatcherService().Match(plan, analysis, domain.StyleImproviser)

	require.NotNil(t, result)
	assert.Equal(t, "w1-s1", result.Session.ID)
	assert.Greater(t, result.Score, matchThresholdMulti)
	assert.Contains(t, result.Reason, "race flag + session is race")
	assert.Contains(t, result.Reason, "distance match")
	assert.Contains(t, result.Reason, "KEY session")
}

func TestMatchIgnoresCompletedSessions(t *testing.T) {
	plan := raceWeekPlan()
	plan.Weeks[0].Sessions[0].Completed = true
	plan.Weeks[0].Sessions[1].Completed = true

	analysis := runAnalysis(&domain.Activity{
		ID:        106,
		Name:      "Easy recovery run",
		Type:      domain.ActivityRun,
		StartDate: "2026-05-07T18:00:00Z",
	})

	assert.Nil(t, NewMatcherService().Match(plan, analysis, domain.StyleImproviser))
}

func TestMatchBatchClaimsEachSessionOnce(t *testing.T) {
	plan := &domain.Plan{Weeks: []domain.Week{
		{
			WeekNumber: 1, StartDate: "2026-05-04", EndDate: "2026-05-10",
			Sessions: []domain.Session{
				{ID: "w1-s1", Type: domain.SessionRun, Description: "Easy run 40 mins"},
			},
		},
	}}

	first := runAnalysis(&domain.Activity{
		ID: 107, Name: "Easy run", Type: domain.ActivityRun, StartDate: "2026-05-05T07:00:00Z",
	})
	second := runAnalysis(&domain.Activity{
		ID: 108, Name: "Easy run", Type: domain.ActivityRun, StartDate: "2026-05-07T07:00:00Z",
	})

	matches := NewMatcherService().MatchBatch(plan, []*ActivityAnalysis{first, second}, domain.StyleImproviser)

	require.Len(t, matches, 1)
	assert.Equal(t, int64(107), matches[0].Analysis.Activity.ID)
	session := plan.Weeks[0].Sessions[0]
	assert.True(t, session.Completed)
	assert.Equal(t, int64(107), session.ActivityID)
}

func TestTargetDistanceMeters(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"club league race - 5 miles all out", 8047},
		{"5k parkrun at goal pace", 5000},
		{"10k time trial", 10000},
		{"half marathon tune-up", 21100},
		{"marathon at goal pace", 42195},
		{"easy run 40 mins", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, targetDistanceMeters(tt.desc), 0.001, tt.desc)
	}
}

func TestSimilarityRatio(t *testing.T) {
	assert.InDelta(t, 1.0, similarityRatio("tempo run", "tempo run"), 0.001)
	assert.Zero(t, similarityRatio("", "tempo run"))
	assert.Greater(t, similarityRatio("club league race 5 mile", "club league race - 5 miles all out"), 0.5)
	assert.Less(t, similarityRatio("w1d2", "easy run"), 0.2)
}
