package service

import (
	"math"
	"sort"

	"alcyxob/coach-engine/internal/domain"
)

// --- Interval detection tuning ---
const (
	workSpeedFactor     = 1.12 // lap speed above median to count as work
	recoverySpeedFactor = 0.90 // lap speed below median to count as recovery
	lapSplitDistanceTol = 0.10 // distance mismatch marking manual laps
	lapTimeStdFactor    = 0.7  // lap times this much tighter than splits => time-based intervals
)

// IntervalDetection is the laps-derived verdict on whether an activity was
// a structured interval session.
type IntervalDetection struct {
	HasIntervals    bool   `json:"has_intervals"`
	DetectionMethod string `json:"detection_method"`
	WorkCount       int    `json:"work_count,omitempty"`
	RecoveryCount   int    `json:"recovery_count,omitempty"`
	Transitions     int    `json:"transitions,omitempty"`
}

// ActivityAnalysis is the derived view of a completed activity used by the
// detection services and the session matcher.
type ActivityAnalysis struct {
	Activity         *domain.Activity
	TimeInHRZones    domain.ZoneTimes
	TimeInPowerZones domain.ZoneTimes
	IsRace           bool
	RaceTag          string
	Intervals        IntervalDetection
}

// TrainingService analyzes raw activities against an athlete's zones.
type TrainingService interface {
	AnalyzeActivity(activity *domain.Activity, hrZones, powerZones *domain.ZoneSet) *ActivityAnalysis
	CurrentWeek(plan *domain.Plan, today string) *domain.Week
}

type trainingService struct{}

// NewTrainingService creates a new instance of trainingService.
func NewTrainingService() TrainingService {
	return &trainingService{}
}

// AnalyzeActivity computes time-in-zones from the activity streams and
// runs interval detection over its laps. Zones may be nil when the
// athlete's metrics are not yet known; the corresponding times stay zero.
func (s *trainingService) AnalyzeActivity(activity *domain.Activity, hrZones, powerZones *domain.ZoneSet) *ActivityAnalysis {
	analysis := &ActivityAnalysis{
		Activity:         activity,
		TimeInHRZones:    domain.ZoneTimes{},
		TimeInPowerZones: domain.ZoneTimes{},
		IsRace:           activity.WorkoutType == domain.WorkoutTypeRace,
	}
	if analysis.IsRace {
		analysis.RaceTag = RaceTag(activity.Distance)
	}
	analysis.Intervals = s.detectIntervals(activity)

	times := activity.Streams.Time
	if len(times) == 0 {
		return analysis
	}

	if hrZones != nil && len(activity.Streams.HeartRate) > 0 {
		mins := make([]float64, len(hrZones.Zones))
		for i, z := range hrZones.Zones {
			mins[i] = float64(z.Min)
		}
		hr := activity.Streams.HeartRate
		for i := 1; i < len(hr) && i < len(times); i++ {
			duration := times[i] - times[i-1]
			sample := hr[i-1]
			// Rightmost zone whose lower bound the sample reaches.
			zone := sort.Search(len(mins), func(j int) bool { return mins[j] > sample }) - 1
			if zone < 0 {
				zone = 0
			}
			analysis.TimeInHRZones[zone+1] += duration
		}
	}

	if powerZones != nil && len(activity.Streams.Watts) > 0 {
		watts := activity.Streams.Watts
		for i := 1; i < len(watts) && i < len(times); i++ {
			duration := times[i] - times[i-1]
			zone := 0
			for zi, z := range powerZones.Zones {
				if watts[i-1] >= float64(z.Min) {
					zone = zi
				} else {
					break
				}
			}
			analysis.TimeInPowerZones[zone+1] += duration
		}
	}

	return analysis
}

// RaceTag maps a race distance in meters to a standard race name.
func RaceTag(distanceMeters float64) string {
	switch {
	case distanceMeters >= 4875 && distanceMeters <= 5125:
		return "5k Race"
	case distanceMeters >= 9750 && distanceMeters <= 10250:
		return "10k Race"
	case distanceMeters >= 20570 && distanceMeters <= 21625:
		return "Half Marathon Race"
	case distanceMeters >= 41140 && distanceMeters <= 43250:
		return "Marathon Race"
	}
	return "Race (Non-Standard Distance)"
}

// detectIntervals decides whether the activity was a structured interval
// session. Manual laps that diverge from the auto splits are the strongest
// signal; lap-time consistency and a work/recovery speed pattern are the
// fallbacks.
func (s *trainingService) detectIntervals(activity *domain.Activity) IntervalDetection {
	laps := activity.Laps
	splits := activity.Splits

	if len(laps) == 0 {
		return IntervalDetection{DetectionMethod: "none"}
	}

	if len(splits) > 0 {
		if len(laps) != len(splits) {
			return IntervalDetection{HasIntervals: true, DetectionMethod: "laps_vs_splits_count_mismatch"}
		}

		lapTimes := segmentTimes(laps, 10)
		splitTimes := segmentTimes(splits, 10)
		if len(lapTimes) >= 3 && len(splitTimes) >= 3 {
			lapStd := stddev(lapTimes)
			splitStd := stddev(splitTimes)
			if lapStd > 0 && splitStd > 0 && lapStd < splitStd*lapTimeStdFactor {
				return IntervalDetection{HasIntervals: true, DetectionMethod: "laps_vs_splits_time_consistency"}
			}
		}

		limit := len(laps)
		if limit > 10 {
			limit = 10
		}
		for i := 0; i < limit; i++ {
			ld, sd := laps[i].DistanceM, splits[i].DistanceM
			if ld > 0 && sd > 0 && math.Abs(ld-sd)/math.Max(ld, sd) > lapSplitDistanceTol {
				return IntervalDetection{HasIntervals: true, DetectionMethod: "laps_vs_splits_distance_mismatch"}
			}
		}
		return IntervalDetection{DetectionMethod: "laps_match_splits"}
	}

	// Laps only: consistent lap times suggest time-based intervals.
	lapTimes := segmentTimes(laps, len(laps))
	if len(lapTimes) >= 6 {
		sorted := append([]float64(nil), lapTimes...)
		sort.Float64s(sorted)
		median := sorted[len(sorted)/2]
		if median > 0 {
			consistent := 0
			for _, t := range lapTimes {
				if math.Abs(t-median)/median < 0.20 {
					consistent++
				}
			}
			if float64(consistent) >= float64(len(lapTimes))*0.6 {
				return IntervalDetection{HasIntervals: true, DetectionMethod: "laps_time_consistency"}
			}
		}
	}
	return s.detectIntervalPattern(laps)
}

// detectIntervalPattern labels laps work/recovery around the median speed
// and looks for alternation.
func (s *trainingService) detectIntervalPattern(laps []domain.Lap) IntervalDetection {
	out := IntervalDetection{DetectionMethod: "pattern_detection_fallback"}

	var speeds []float64
	for _, lap := range laps {
		if lap.AvgSpeedMPS > 0 {
			speeds = append(speeds, lap.AvgSpeedMPS)
		}
	}
	if len(speeds) < 6 {
		return out
	}

	sorted := append([]float64(nil), speeds...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]
	if median <= 0 {
		return out
	}
	workThreshold := median * workSpeedFactor
	recoveryThreshold := median * recoverySpeedFactor

	var labels []string
	for _, lap := range laps {
		// Provider pace zones beat raw speed thresholds when present.
		if lap.PaceZone >= 4 {
			labels = append(labels, "work")
			continue
		}
		if lap.PaceZone > 0 && lap.PaceZone <= 2 {
			labels = append(labels, "recovery")
			continue
		}
		switch {
		case lap.AvgSpeedMPS <= 0:
		case lap.AvgSpeedMPS >= workThreshold:
			labels = append(labels, "work")
		case lap.AvgSpeedMPS <= recoveryThreshold:
			labels = append(labels, "recovery")
		default:
			labels = append(labels, "steady")
		}
	}

	last := ""
	for _, label := range labels {
		switch label {
		case "work":
			out.WorkCount++
		case "recovery":
			out.RecoveryCount++
		default:
			continue
		}
		if last != "" && label != last {
			out.Transitions++
		}
		last = label
	}

	out.HasIntervals = out.WorkCount >= 3 && out.RecoveryCount >= 2 && out.Transitions >= 3
	return out
}

// CurrentWeek returns the plan week containing today, or failing that the
// closest upcoming week. Nil when the plan is over or has no dated weeks.
func (s *trainingService) CurrentWeek(plan *domain.Plan, today string) *domain.Week {
	if plan == nil {
		return nil
	}
	var upcoming *domain.Week
	for i := range plan.Weeks {
		w := &plan.Weeks[i]
		if w.StartDate == "" || w.EndDate == "" {
			continue
		}
		if w.Contains(today) {
			return w
		}
		if w.StartDate > today && (upcoming == nil || w.StartDate < upcoming.StartDate) {
			upcoming = w
		}
	}
	return upcoming
}

func segmentTimes(segments []domain.Lap, limit int) []float64 {
	var out []float64
	for i, seg := range segments {
		if i >= limit {
			break
		}
		t := seg.ElapsedTimeS
		if t <= 0 {
			t = seg.MovingTimeS
		}
		if t > 0 {
			out = append(out, t)
		}
	}
	return out
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
