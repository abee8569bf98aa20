package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/coach-engine/internal/domain"
)

func TestVDOTDetectionMarkedRaceQualifies(t *testing.T) {
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:          1,
			Name:        "Parkrun PB attempt",
			Type:        domain.ActivityRun,
			WorkoutType: domain.WorkoutTypeRace,
			Distance:    5000,
			MovingTime:  1500,
			ElapsedTime: 1520,
		},
		TimeInHRZones: domain.ZoneTimes{1: 100, 4: 200, 5: 1200},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	require.NotNil(t, result)
	assert.Equal(t, "5K", result.Distance)
	assert.Equal(t, 1500, result.TimeSeconds)
	assert.True(t, result.IsRace)
	assert.Greater(t, result.VDOT, 0.0)
	assert.Contains(t, reason, "marked as race")
}

func TestVDOTDetectionLenientDistanceForRaces(t *testing.T) {
	// 5.4 km falls outside the strict 5K band but GPS long courses are
	// accepted for marked races.
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:          2,
			Name:        "Trail 5k",
			Type:        domain.ActivityRun,
			WorkoutType: domain.WorkoutTypeRace,
			Distance:    5400,
			MovingTime:  1500,
			ElapsedTime: 1500,
		},
		TimeInHRZones: domain.ZoneTimes{4: 100, 5: 1400},
	}

	result, _ := NewVDOTDetectionService(nil).FromActivity(analysis)

	require.NotNil(t, result)
	assert.Equal(t, "5K", result.Distance)
}

func TestVDOTDetectionRejectsNonStandardDistance(t *testing.T) {
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:         3,
			Name:       "Evening Run",
			Type:       domain.ActivityRun,
			Distance:   7000,
			MovingTime: 2400,
		},
		TimeInHRZones: domain.ZoneTimes{2: 2400},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	assert.Nil(t, result)
	assert.Equal(t, "distance 7000m is not a standard race distance", reason)
}

func TestVDOTDetectionRejectsWithoutHeartRate(t *testing.T) {
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:         4,
			Name:       "Lunch Run",
			Type:       domain.ActivityRun,
			Distance:   5000,
			MovingTime: 1500,
		},
		TimeInHRZones: domain.ZoneTimes{},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	assert.Nil(t, result)
	assert.Equal(t, "no heart rate data available", reason)
}

func TestVDOTDetectionRejectsStoppedEffort(t *testing.T) {
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:          5,
			Name:        "Stop-start 5k",
			Type:        domain.ActivityRun,
			Distance:    5000,
			MovingTime:  1200,
			ElapsedTime: 1500,
		},
		TimeInHRZones: domain.ZoneTimes{4: 1200},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	assert.Nil(t, result)
	assert.Equal(t, "too many stops (not a continuous effort)", reason)
}

func TestVDOTDetectionRejectsRecoveryIntervals(t *testing.T) {
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:          6,
			Name:        "5k with strides",
			Type:        domain.ActivityRun,
			Distance:    5000,
			MovingTime:  1500,
			ElapsedTime: 1500,
		},
		TimeInHRZones: domain.ZoneTimes{1: 300, 2: 200, 3: 700, 4: 300},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	assert.Nil(t, result)
	assert.Equal(t, "contains recovery intervals (not a continuous effort)", reason)
}

func TestVDOTDetectionRejectsLowIntensity(t *testing.T) {
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:          7,
			Name:        "Steady 5k",
			Type:        domain.ActivityRun,
			Distance:    5000,
			MovingTime:  1500,
			ElapsedTime: 1500,
		},
		TimeInHRZones: domain.ZoneTimes{3: 1400, 4: 100},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	assert.Nil(t, result)
	assert.Contains(t, reason, "need 50% Z5 or 80% Z4+Z5")
}

func TestVDOTDetectionAllOutTimeTrial(t *testing.T) {
	// Unmarked, but hard enough throughout to count as a time trial.
	analysis := &ActivityAnalysis{
		Activity: &domain.Activity{
			ID:          8,
			Name:        "Solo 10k effort",
			Type:        domain.ActivityRun,
			Distance:    10000,
			MovingTime:  2700,
			ElapsedTime: 2750,
		},
		TimeInHRZones: domain.ZoneTimes{4: 1200, 5: 1500},
	}

	result, reason := NewVDOTDetectionService(nil).FromActivity(analysis)

	require.NotNil(t, result)
	assert.Equal(t, "10K", result.Distance)
	assert.False(t, result.IsRace)
	assert.Contains(t, reason, "all-out time trial")
}
