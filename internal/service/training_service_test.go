package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/coach-engine/internal/domain"
)

func TestAnalyzeActivityHRZoneTimes(t *testing.T) {
	hrZones := domain.FrielHRZones(160)
	activity := &domain.Activity{
		ID:   1,
		Type: domain.ActivityRun,
		Streams: domain.Streams{
			Time:      []float64{0, 60, 120, 180, 240},
			HeartRate: []float64{130, 140, 150, 160, 160},
		},
	}

	analysis := NewTrainingService().AnalyzeActivity(activity, &hrZones, nil)

	assert.InDelta(t, 60, analysis.TimeInHRZones[1], 0.001)
	assert.InDelta(t, 60, analysis.TimeInHRZones[2], 0.001)
	assert.InDelta(t, 60, analysis.TimeInHRZones[3], 0.001)
	assert.InDelta(t, 0, analysis.TimeInHRZones[4], 0.001)
	// 160 bpm is on the LTHR boundary and belongs to the top zone.
	assert.InDelta(t, 60, analysis.TimeInHRZones[5], 0.001)
	assert.InDelta(t, 240, analysis.TimeInHRZones.Total(), 0.001)
}

func TestAnalyzeActivityPowerZoneTimes(t *testing.T) {
	powerZones := domain.FrielPowerZones(200)
	activity := &domain.Activity{
		ID:   2,
		Type: domain.ActivityRide,
		Streams: domain.Streams{
			Time:  []float64{0, 60, 120, 180},
			Watts: []float64{100, 160, 220, 400},
		},
	}

	analysis := NewTrainingService().AnalyzeActivity(activity, nil, &powerZones)

	assert.InDelta(t, 60, analysis.TimeInPowerZones[1], 0.001)
	assert.InDelta(t, 60, analysis.TimeInPowerZones[3], 0.001)
	assert.InDelta(t, 60, analysis.TimeInPowerZones[5], 0.001)
	assert.InDelta(t, 180, analysis.TimeInPowerZones.Total(), 0.001)
}

func TestAnalyzeActivityWithoutZonesOrStreams(t *testing.T) {
	activity := &domain.Activity{
		ID:          3,
		Type:        domain.ActivityRun,
		WorkoutType: domain.WorkoutTypeRace,
		Distance:    10050,
	}

	analysis := NewTrainingService().AnalyzeActivity(activity, nil, nil)

	assert.True(t, analysis.IsRace)
	assert.Equal(t, "10k Race", analysis.RaceTag)
	assert.Zero(t, analysis.TimeInHRZones.Total())
	assert.Equal(t, "none", analysis.Intervals.DetectionMethod)
}

func TestRaceTag(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{5000, "5k Race"},
		{10100, "10k Race"},
		{21100, "Half Marathon Race"},
		{42195, "Marathon Race"},
		{7500, "Race (Non-Standard Distance)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RaceTag(tt.meters), "distance %.0f", tt.meters)
	}
}

func TestDetectIntervalsCountMismatch(t *testing.T) {
	activity := &domain.Activity{
		Type:   domain.ActivityRun,
		Laps:   []domain.Lap{{ElapsedTimeS: 240}, {ElapsedTimeS: 120}, {ElapsedTimeS: 240}},
		Splits: make([]domain.Lap, 5),
	}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.True(t, detected.HasIntervals)
	assert.Equal(t, "laps_vs_splits_count_mismatch", detected.DetectionMethod)
}

func TestDetectIntervalsTimeConsistency(t *testing.T) {
	activity := &domain.Activity{
		Type: domain.ActivityRun,
		Laps: []domain.Lap{
			{ElapsedTimeS: 240}, {ElapsedTimeS: 240}, {ElapsedTimeS: 240}, {ElapsedTimeS: 241},
		},
		Splits: []domain.Lap{
			{ElapsedTimeS: 200}, {ElapsedTimeS: 300}, {ElapsedTimeS: 250}, {ElapsedTimeS: 400},
		},
	}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.True(t, detected.HasIntervals)
	assert.Equal(t, "laps_vs_splits_time_consistency", detected.DetectionMethod)
}

func TestDetectIntervalsDistanceMismatch(t *testing.T) {
	activity := &domain.Activity{
		Type: domain.ActivityRun,
		Laps: []domain.Lap{
			{DistanceM: 400, ElapsedTimeS: 300},
			{DistanceM: 400, ElapsedTimeS: 300},
			{DistanceM: 400, ElapsedTimeS: 300},
		},
		Splits: []domain.Lap{
			{DistanceM: 1000, ElapsedTimeS: 300},
			{DistanceM: 1000, ElapsedTimeS: 300},
			{DistanceM: 1000, ElapsedTimeS: 300},
		},
	}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.True(t, detected.HasIntervals)
	assert.Equal(t, "laps_vs_splits_distance_mismatch", detected.DetectionMethod)
}

func TestDetectIntervalsLapsMatchSplits(t *testing.T) {
	segments := []domain.Lap{
		{DistanceM: 1000, ElapsedTimeS: 300},
		{DistanceM: 1000, ElapsedTimeS: 300},
		{DistanceM: 1000, ElapsedTimeS: 300},
		{DistanceM: 1000, ElapsedTimeS: 300},
	}
	activity := &domain.Activity{Type: domain.ActivityRun, Laps: segments, Splits: segments}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.False(t, detected.HasIntervals)
	assert.Equal(t, "laps_match_splits", detected.DetectionMethod)
}

func TestDetectIntervalsLapsOnlyTimeConsistency(t *testing.T) {
	activity := &domain.Activity{
		Type: domain.ActivityRun,
		Laps: []domain.Lap{
			{ElapsedTimeS: 300}, {ElapsedTimeS: 300}, {ElapsedTimeS: 310},
			{ElapsedTimeS: 295}, {ElapsedTimeS: 305}, {ElapsedTimeS: 300},
		},
	}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.True(t, detected.HasIntervals)
	assert.Equal(t, "laps_time_consistency", detected.DetectionMethod)
}

func TestDetectIntervalsPatternFallback(t *testing.T) {
	// Inconsistent lap times rule out time-based detection; the
	// alternating fast/slow speeds still read as work/recovery.
	activity := &domain.Activity{
		Type: domain.ActivityRun,
		Laps: []domain.Lap{
			{ElapsedTimeS: 100, AvgSpeedMPS: 5.0},
			{ElapsedTimeS: 400, AvgSpeedMPS: 2.0},
			{ElapsedTimeS: 100, AvgSpeedMPS: 5.0},
			{ElapsedTimeS: 400, AvgSpeedMPS: 2.0},
			{ElapsedTimeS: 100, AvgSpeedMPS: 5.0},
			{ElapsedTimeS: 400, AvgSpeedMPS: 2.0},
			{ElapsedTimeS: 100, AvgSpeedMPS: 3.5},
		},
	}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.True(t, detected.HasIntervals)
	assert.Equal(t, "pattern_detection_fallback", detected.DetectionMethod)
	assert.Equal(t, 3, detected.WorkCount)
	assert.Equal(t, 3, detected.RecoveryCount)
	assert.GreaterOrEqual(t, detected.Transitions, 3)
}

func TestDetectIntervalsPaceZonesOverrideSpeed(t *testing.T) {
	laps := make([]domain.Lap, 8)
	for i := range laps {
		laps[i].ElapsedTimeS = float64(100 + 150*(i%2)*i) // not consistent
		laps[i].AvgSpeedMPS = 3.0
		if i%2 == 0 {
			laps[i].PaceZone = 5
		} else {
			laps[i].PaceZone = 1
		}
	}
	activity := &domain.Activity{Type: domain.ActivityRun, Laps: laps}

	detected := NewTrainingService().AnalyzeActivity(activity, nil, nil).Intervals

	assert.True(t, detected.HasIntervals)
	assert.Equal(t, 4, detected.WorkCount)
	assert.Equal(t, 4, detected.RecoveryCount)
}

func TestCurrentWeek(t *testing.T) {
	plan := &domain.Plan{Weeks: []domain.Week{
		{WeekNumber: 1, StartDate: "2026-01-05", EndDate: "2026-01-11"},
		{WeekNumber: 2, StartDate: "2026-01-12", EndDate: "2026-01-18"},
	}}
	svc := NewTrainingService()

	containing := svc.CurrentWeek(plan, "2026-01-14")
	require.NotNil(t, containing)
	assert.Equal(t, 2, containing.WeekNumber)

	upcoming := svc.CurrentWeek(plan, "2026-01-01")
	require.NotNil(t, upcoming)
	assert.Equal(t, 1, upcoming.WeekNumber)

	assert.Nil(t, svc.CurrentWeek(plan, "2026-02-01"))
	assert.Nil(t, svc.CurrentWeek(nil, "2026-01-14"))
}
