package domain

import "strings"

// ActivityType is the telemetry provider's activity classification.
type ActivityType string

const (
	ActivityRun         ActivityType = "Run"
	ActivityVirtualRun  ActivityType = "VirtualRun"
	ActivityRide        ActivityType = "Ride"
	ActivityVirtualRide ActivityType = "VirtualRide"
	ActivitySwim        ActivityType = "Swim"
)

// Workout type codes from the telemetry provider: 1 marks a race.
const WorkoutTypeRace = 1

// Streams are the per-sample series recorded for an activity. Series are
// aligned by index; Time holds elapsed seconds.
type Streams struct {
	Time      []float64 `json:"time,omitempty"`
	HeartRate []float64 `json:"heartrate,omitempty"`
	Watts     []float64 `json:"watts,omitempty"`
}

// Lap is one split or manual lap reported with an activity.
type Lap struct {
	Index        int     `json:"index"`
	DistanceM    float64 `json:"distance_m,omitempty"`
	ElapsedTimeS float64 `json:"elapsed_time_s,omitempty"`
	MovingTimeS  float64 `json:"moving_time_s,omitempty"`
	AvgSpeedMPS  float64 `json:"average_speed_mps,omitempty"`
	AvgHeartRate float64 `json:"average_heartrate,omitempty"`
	PaceZone     int     `json:"pace_zone,omitempty"`
}

// Activity is the completed-activity record handed in by the telemetry
// collaborator. Only a subset is required per detection service.
type Activity struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	PrivateNote  string       `json:"private_note,omitempty"`
	Type         ActivityType `json:"type"`
	StartDate    string       `json:"start_date"` // RFC3339 local time
	Distance     float64      `json:"distance"`   // meters
	MovingTime   float64      `json:"moving_time"`
	ElapsedTime  float64      `json:"elapsed_time"`
	WorkoutType  int          `json:"workout_type,omitempty"`
	AverageWatts float64      `json:"average_watts,omitempty"`
	MaxHeartRate float64      `json:"max_heartrate,omitempty"`
	Streams      Streams      `json:"streams,omitempty"`
	Laps         []Lap        `json:"laps,omitempty"`
	Splits       []Lap        `json:"splits,omitempty"`
}

// Date returns the activity's calendar date (YYYY-MM-DD).
func (a *Activity) Date() string {
	if len(a.StartDate) >= 10 {
		return a.StartDate[:10]
	}
	return a.StartDate
}

// IsRide reports whether the activity is a cycling activity.
func (a *Activity) IsRide() bool {
	return a.Type == ActivityRide || a.Type == ActivityVirtualRide
}

// SessionTypeForActivity maps a telemetry activity type onto the plan's
// session type. Unknown types map to OTHER.
func SessionTypeForActivity(t ActivityType) SessionType {
	switch t {
	case ActivityRun, ActivityVirtualRun:
		return SessionRun
	case ActivityRide, ActivityVirtualRide:
		return SessionBike
	case ActivitySwim:
		return SessionSwim
	default:
		return SessionOther
	}
}

// ZoneTimes maps 1-based zone number to seconds spent in that zone.
type ZoneTimes map[int]float64

// Total is the summed time across all zones.
func (z ZoneTimes) Total() float64 {
	var total float64
	for _, s := range z {
		total += s
	}
	return total
}

// Share is the fraction of total in the given zones, in the range 0-1.
// total of zero yields zero.
func (z ZoneTimes) Share(total float64, zones ...int) float64 {
	if total <= 0 {
		return 0
	}
	var sum float64
	for _, n := range zones {
		sum += z[n]
	}
	return sum / total
}

// MentionsAny reports whether any keyword appears in the activity's name,
// description or private note (case-insensitive).
func (a *Activity) MentionsAny(keywords ...string) bool {
	text := strings.ToLower(a.Name + " " + a.Description + " " + a.PrivateNote)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
