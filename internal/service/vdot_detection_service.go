package service

import (
	"fmt"
	"log"
	"strings"

	"alcyxob/coach-engine/internal/domain"
	"alcyxob/coach-engine/internal/vdot"
)

// Distance bands in meters that qualify for VDOT. Strict bands apply to
// ordinary activities; lenient bands (±10%, GPS and long courses) apply to
// races and clearly hard efforts.
var vdotStrictDistances = []distanceBand{
	{"1500M", 1400, 1600},
	{"MILE", 1580, 1620},
	{"3K", 2900, 3100},
	{"5K", 4900, 5100},
	{"10K", 9900, 10100},
	{"15K", 14900, 15100},
	{"HM", 21000, 21300},
	{"MARATHON", 42000, 42500},
}

var vdotLenientDistances = []distanceBand{
	{"1500M", 1260, 1760},
	{"MILE", 1422, 1782},
	{"3K", 2610, 3410},
	{"5K", 4410, 5610},
	{"10K", 8910, 11110},
	{"15K", 13410, 16610},
	{"HM", 18900, 23430},
	{"MARATHON", 37800, 46750},
}

type distanceBand struct {
	category string
	min, max float64
}

const (
	// Moving/elapsed below this means too many stops for a race effort.
	continuousEffortRatio = 0.9
	// More than this share of time in Z1+Z2 marks recovery intervals.
	recoveryShareLimit = 0.20
	// Z4+Z5 at or above this share marks an all-out effort regardless of
	// easy time (HRM dropouts at the start are common).
	hardEffortShare = 0.50
)

var raceNameKeywords = []string{"race", "parkrun", "marathon", "half marathon", "10k race", "5k race"}

// VDOTResult is a qualified VDOT candidate computed from an activity.
type VDOTResult struct {
	VDOT           float64 `json:"vdot"`
	Distance       string  `json:"distance"`
	DistanceMeters float64 `json:"distance_meters"`
	TimeSeconds    int     `json:"time_seconds"`
	ActivityID     int64   `json:"activity_id"`
	ActivityName   string  `json:"activity_name"`
	IsRace         bool    `json:"is_race"`
	Reason         string  `json:"reason"`
}

// VDOTDetectionService decides when a run qualifies for a VDOT update and
// computes the value. Only races and all-out time trials qualify.
type VDOTDetectionService interface {
	// FromActivity returns a VDOT candidate, or nil plus a human-readable
	// reason when the activity does not qualify. The reason is
	// informational, never an error.
	FromActivity(analysis *ActivityAnalysis) (*VDOTResult, string)
}

type vdotDetectionService struct {
	table *vdot.Table
}

// NewVDOTDetectionService creates a new instance of vdotDetectionService.
// table may be nil; lookups then use the analytic formula.
func NewVDOTDetectionService(table *vdot.Table) VDOTDetectionService {
	return &vdotDetectionService{table: table}
}

func (s *vdotDetectionService) FromActivity(analysis *ActivityAnalysis) (*VDOTResult, string) {
	activity := analysis.Activity

	ok, reason, category := s.shouldCalculate(analysis)
	if !ok {
		log.Printf("INFO: vdot-detect: activity %d not used: %s", activity.ID, reason)
		return nil, reason
	}

	timeSeconds := int(activity.MovingTime)
	value := s.table.FromRace(category, timeSeconds)
	if value <= 0 {
		return nil, fmt.Sprintf("could not derive VDOT for %s", category)
	}

	result := &VDOTResult{
		VDOT:           value,
		Distance:       category,
		DistanceMeters: activity.Distance,
		TimeSeconds:    timeSeconds,
		ActivityID:     activity.ID,
		ActivityName:   activity.Name,
		IsRace:         isRaceMarked(activity),
		Reason:         reason,
	}
	log.Printf("INFO: vdot-detect: VDOT %.1f from %s (%s)", value, category, reason)
	return result, reason
}

// shouldCalculate runs the qualification pipeline: distance band, HR data,
// continuous effort, recovery-interval check, intensity bar.
func (s *vdotDetectionService) shouldCalculate(analysis *ActivityAnalysis) (bool, string, string) {
	activity := analysis.Activity
	zones := analysis.TimeInHRZones
	isRace := isRaceMarked(activity)
	movingTime := activity.MovingTime

	category := matchDistanceBand(vdotStrictDistances, activity.Distance)
	if category == "" {
		lenient := false
		if isRace {
			lenient = true
		} else if movingTime > 0 && zones.Share(movingTime, 4, 5) >= hardEffortShare {
			lenient = true
		}
		if lenient {
			category = matchDistanceBand(vdotLenientDistances, activity.Distance)
		}
	}
	if category == "" {
		return false, fmt.Sprintf("distance %.0fm is not a standard race distance", activity.Distance), ""
	}

	if zones.Total() == 0 {
		return false, "no heart rate data available", ""
	}

	if activity.ElapsedTime > 0 && movingTime/activity.ElapsedTime < continuousEffortRatio {
		return false, "too many stops (not a continuous effort)", ""
	}

	// Recovery-interval check, skipped for races and all-out efforts.
	if !isRace && movingTime > 0 && zones.Share(movingTime, 4, 5) < hardEffortShare {
		if zones.Share(movingTime, 1, 2) > recoveryShareLimit {
			return false, "contains recovery intervals (not a continuous effort)", ""
		}
	}

	qualifies, intensityReason := effortIntensity(zones, movingTime, category)

	if isRace {
		return true, "marked as race - " + intensityReason, category
	}
	if qualifies {
		return true, "all-out time trial - " + intensityReason, category
	}
	return false, intensityReason, ""
}

// effortIntensity applies the per-distance intensity bar. Shorter races
// demand more Z5; the marathon is run in Z3-Z4.
func effortIntensity(zones domain.ZoneTimes, totalTime float64, category string) (bool, string) {
	if totalTime == 0 {
		return false, "no moving time"
	}
	z5 := zones.Share(totalTime, 5) * 100
	z45 := zones.Share(totalTime, 4, 5) * 100
	z34 := zones.Share(totalTime, 3, 4) * 100

	switch category {
	case "1500M", "MILE", "3K":
		if z5 >= 60 {
			return true, fmt.Sprintf("60%%+ in Z5 (%.0f%%)", z5)
		}
		return false, fmt.Sprintf("only %.0f%% in Z5, need 60%%+ for %s", z5, category)
	case "5K", "10K":
		if z5 >= 50 {
			return true, fmt.Sprintf("50%%+ in Z5 (%.0f%%)", z5)
		}
		if z45 >= 80 {
			return true, fmt.Sprintf("80%%+ in Z4+Z5 (%.0f%%)", z45)
		}
		return false, fmt.Sprintf("only %.0f%% Z5 and %.0f%% Z4+Z5, need 50%% Z5 or 80%% Z4+Z5", z5, z45)
	case "15K", "HM":
		if z45 >= 70 {
			return true, fmt.Sprintf("70%%+ in Z4+Z5 (%.0f%%)", z45)
		}
		return false, fmt.Sprintf("only %.0f%% in Z4+Z5, need 70%%+ for %s", z45, category)
	case "MARATHON":
		if z34 >= 80 {
			return true, fmt.Sprintf("80%%+ in Z3+Z4 (%.0f%%)", z34)
		}
		return false, fmt.Sprintf("only %.0f%% in Z3+Z4, need 80%%+ for marathon", z34)
	}
	return false, "unknown distance category: " + category
}

func matchDistanceBand(bands []distanceBand, meters float64) string {
	for _, b := range bands {
		if meters >= b.min && meters <= b.max {
			return b.category
		}
	}
	return ""
}

func isRaceMarked(activity *domain.Activity) bool {
	if activity.WorkoutType == domain.WorkoutTypeRace {
		return true
	}
	name := strings.ToLower(activity.Name)
	for _, kw := range raceNameKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
