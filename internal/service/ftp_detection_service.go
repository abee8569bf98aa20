package service

import (
	"fmt"
	"log"
	"math"
	"strings"

	"alcyxob/coach-engine/internal/domain"
)

// FTP test duration buckets in seconds, with tolerance.
var ftpTestDurations = []struct {
	category string
	min, max float64
}{
	{"20MIN", 1140, 1260},
	{"8MIN", 420, 540},
	{"5MIN", 270, 330},
	{"RAMP", 300, 1200},
}

// Conversion from test average power (or peak 1-minute power for ramps) to
// FTP.
var ftpConversionFactors = map[string]float64{
	"20MIN": 0.95,
	"8MIN":  0.90,
	"5MIN":  0.85,
	"RAMP":  0.75,
}

const (
	// Ramp pattern: power split into thirds must rise by these factors.
	rampLastThirdFactor   = 1.10
	rampMiddleThirdFactor = 1.05
	// Unmarked ramp patterns need this duration and Z4+ share, otherwise
	// they are warmups.
	rampMinDuration = 600
	rampMinZ4Share  = 0.30
	// HR validation: FTP detection wants this much time in HR Z4+.
	ftpMinHRZ4Minutes = 30
)

var ftpTestKeywords = []string{
	"ftp test", "ftp", "functional threshold", "20 min test",
	"20min test", "8 min test", "8min test", "5 min test", "5min test",
	"threshold test", "power test", "ramp test", "ramp", "incremental test",
}

// FTPResult is a qualified FTP candidate computed from a ride.
type FTPResult struct {
	FTP          int     `json:"ftp"`
	TestDuration string  `json:"test_duration"`
	AveragePower float64 `json:"average_power"`
	ActivityID   int64   `json:"activity_id"`
	ActivityName string  `json:"activity_name"`
	IsFTPTest    bool    `json:"is_ftp_test"`
	Reason       string  `json:"reason"`
}

// FTPDetectionService decides when a ride qualifies for an FTP update and
// computes the value, from marked tests, ramp patterns, or sustained hard
// efforts.
type FTPDetectionService interface {
	// FromActivity returns an FTP candidate, or nil plus a human-readable
	// reason when the ride does not qualify.
	FromActivity(analysis *ActivityAnalysis) (*FTPResult, string)
}

type ftpDetectionService struct{}

// NewFTPDetectionService creates a new instance of ftpDetectionService.
func NewFTPDetectionService() FTPDetectionService {
	return &ftpDetectionService{}
}

func (s *ftpDetectionService) FromActivity(analysis *ActivityAnalysis) (*FTPResult, string) {
	activity := analysis.Activity

	ok, reason, duration, ftp := s.shouldCalculate(analysis)
	if !ok {
		log.Printf("INFO: ftp-detect: activity %d not used: %s", activity.ID, reason)
		return nil, reason
	}

	result := &FTPResult{
		FTP:          ftp,
		TestDuration: duration,
		AveragePower: activity.AverageWatts,
		ActivityID:   activity.ID,
		ActivityName: activity.Name,
		IsFTPTest:    isFTPTestMarked(activity),
		Reason:       reason,
	}
	log.Printf("INFO: ftp-detect: FTP %dW from %s test (%s)", ftp, duration, reason)
	return result, reason
}

func (s *ftpDetectionService) shouldCalculate(analysis *ActivityAnalysis) (bool, string, string, int) {
	activity := analysis.Activity

	if !activity.IsRide() {
		return false, fmt.Sprintf("not a cycling activity (%s)", activity.Type), "", 0
	}
	watts := activity.Streams.Watts
	if len(watts) == 0 {
		return false, "no power data available", "", 0
	}
	movingTime := activity.MovingTime
	if movingTime == 0 {
		return false, "no moving time", "", 0
	}

	isTest := isFTPTestMarked(activity)

	// HR validation: a real threshold effort shows sustained HR Z4+.
	if analysis.TimeInHRZones.Total() > 0 {
		z4Minutes := (analysis.TimeInHRZones[4] + analysis.TimeInHRZones[5]) / 60
		if z4Minutes < ftpMinHRZ4Minutes {
			if !isTest {
				return false, fmt.Sprintf("insufficient HR Zone 4+ time: %.1f min (need >%d min)", z4Minutes, ftpMinHRZ4Minutes), "", 0
			}
			log.Printf("WARN: ftp-detect: marked as FTP test but only %.1f min in HR Z4+", z4Minutes)
		}
	} else if !isTest {
		log.Printf("WARN: ftp-detect: no HR data available for validation")
	}

	qualifies, reason, suggested := powerZoneEffort(analysis.TimeInPowerZones, movingTime)

	name := strings.ToLower(activity.Name)
	isRamp := strings.Contains(name, "ramp") || strings.Contains(name, "incremental")

	var peak1Min float64
	if rampDetected, peak := detectRampPattern(watts); rampDetected {
		z4Plus := analysis.TimeInPowerZones.Share(movingTime, 4, 5, 6, 7)
		if isTest || (movingTime >= rampMinDuration && z4Plus >= rampMinZ4Share) {
			isRamp = true
			peak1Min = peak
			log.Printf("INFO: ftp-detect: ramp test pattern (peak 1-min power %.0fW)", peak)
		} else {
			log.Printf("INFO: ftp-detect: ramp pattern rejected (duration %.0fmin, Z4+ %.0f%%), likely warmup", movingTime/60, z4Plus*100)
		}
	}

	duration := ""
	if isTest || isRamp {
		switch {
		case isRamp:
			duration = "RAMP"
		case strings.Contains(name, "20") || strings.Contains(name, "twenty"):
			duration = "20MIN"
		case strings.Contains(name, "8") || strings.Contains(name, "eight"):
			duration = "8MIN"
		case strings.Contains(name, "5") || strings.Contains(name, "five"):
			duration = "5MIN"
		default:
			duration = durationCategory(movingTime)
		}
	}
	if duration == "" && qualifies {
		duration = suggested
	}
	if duration == "" {
		duration = durationCategory(movingTime)
	}
	if duration == "" && !isTest {
		if reason == "" {
			reason = "does not match FTP test duration or intensity criteria"
		}
		return false, reason, "", 0
	}

	avgPower := activity.AverageWatts
	if avgPower <= 0 {
		avgPower = meanPositive(watts)
		if avgPower <= 0 {
			return false, "no valid power data in streams", "", 0
		}
	}

	if duration == "" {
		duration = "20MIN"
	}
	if duration == "RAMP" && peak1Min == 0 {
		peak1Min = peakRollingMinute(watts)
		if peak1Min > 0 {
			log.Printf("INFO: ftp-detect: computed peak 1-min power %.0fW", peak1Min)
		}
	}

	ftp := ftpFromPower(avgPower, duration, peak1Min)
	if ftp == 0 {
		return false, "failed to calculate FTP from power", "", 0
	}

	switch {
	case isRamp:
		return true, "ramp test detected - " + reason, duration, ftp
	case isTest:
		return true, "marked as FTP test - " + reason, duration, ftp
	case qualifies:
		return true, "hard effort - " + reason, duration, ftp
	}
	return false, reason, "", 0
}

// powerZoneEffort checks the power-zone distribution against the known
// test shapes and the hard-session pattern.
func powerZoneEffort(zones domain.ZoneTimes, totalTime float64) (bool, string, string) {
	if totalTime == 0 {
		return false, "no moving time", ""
	}
	z4Time := zones[4]
	z4Pct := zones.Share(totalTime, 4) * 100
	z5Pct := zones.Share(totalTime, 5) * 100
	z45Pct := zones.Share(totalTime, 4, 5) * 100
	z567Pct := zones.Share(totalTime, 5, 6, 7) * 100

	// 20 min test: near-complete time at threshold.
	if z4Time >= 1140 && z4Pct >= 70 {
		return true, fmt.Sprintf("20+ min sustained in Zone 4 (%.0f%%)", z4Pct), "20MIN"
	}
	if totalTime >= 420 && totalTime <= 540 && z567Pct >= 60 {
		return true, fmt.Sprintf("8 min high-intensity effort (%.0f%% Z5-7)", z567Pct), "8MIN"
	}
	if totalTime >= 270 && totalTime <= 330 && z567Pct >= 70 {
		return true, fmt.Sprintf("5 min all-out effort (%.0f%% Z5-7)", z567Pct), "5MIN"
	}
	// Hard training session or race: use the 20 min conversion.
	if totalTime >= 1200 && z45Pct >= 50 {
		return true, fmt.Sprintf("hard effort: %.0f%% in Zone 4+5 for 20+ min", z45Pct), "20MIN"
	}
	return false, fmt.Sprintf("insufficient intensity (Z4: %.0f%%, Z5: %.0f%%)", z4Pct, z5Pct), ""
}

// detectRampPattern reports whether power rises the way a ramp test does:
// thirds with last ≥ 1.10× first and middle ≥ 1.05× first. Returns the
// best rolling 60 s power when the pattern holds.
func detectRampPattern(watts []float64) (bool, float64) {
	var valid []float64
	for _, w := range watts {
		if w > 0 {
			valid = append(valid, w)
		}
	}
	if len(valid) < 60 {
		return false, 0
	}
	third := len(valid) / 3
	if third < 20 {
		return false, 0
	}

	first := mean(valid[:third])
	middle := mean(valid[third : 2*third])
	last := mean(valid[2*third:])

	if first <= 0 || last < first*rampLastThirdFactor || middle < first*rampMiddleThirdFactor {
		return false, 0
	}

	peak := peakRollingMinute(valid)
	if peak <= 0 {
		return false, 0
	}
	return true, peak
}

// peakRollingMinute is the best 60-sample rolling power average.
func peakRollingMinute(watts []float64) float64 {
	var valid []float64
	for _, w := range watts {
		if w > 0 {
			valid = append(valid, w)
		}
	}
	window := 60
	if len(valid) < window {
		window = len(valid)
	}
	if window == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += valid[i]
	}
	peak := sum / float64(window)
	for i := window; i < len(valid); i++ {
		sum += valid[i] - valid[i-window]
		if avg := sum / float64(window); avg > peak {
			peak = avg
		}
	}
	return peak
}

// ftpFromPower applies the test-duration conversion factor. Ramp tests use
// peak 1-minute power when available.
func ftpFromPower(avgPower float64, duration string, peak1Min float64) int {
	factor, ok := ftpConversionFactors[duration]
	if !ok || avgPower <= 0 {
		return 0
	}
	base := avgPower
	if duration == "RAMP" && peak1Min > 0 {
		base = peak1Min
	}
	return int(math.Round(base * factor))
}

func durationCategory(seconds float64) string {
	for _, d := range ftpTestDurations {
		if seconds >= d.min && seconds <= d.max {
			return d.category
		}
	}
	return ""
}

func isFTPTestMarked(activity *domain.Activity) bool {
	text := strings.ToLower(activity.Name + " " + activity.Description)
	for _, kw := range ftpTestKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanPositive(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
