package vdot

import (
	"fmt"
	"log"
	"math"
	"strings"
)

// Meters for the distances the formula path understands; anything else is
// treated as a 5k.
var formulaDistances = map[string]float64{
	"5K":       5000,
	"10K":      10000,
	"HM":       21097.5,
	"MARATHON": 42195,
}

// Formula approximates VDOT from a race performance using Jack Daniels'
// published regression. Less accurate than the table and used only when no
// table is available.
//
//	VO2     = -4.60 + 0.182258·v + 0.000104·v²    (v in m/min)
//	percent = 0.8 + 0.1894393·e^(-0.012778·t) + 0.2989558·e^(-0.1932605·t)   (t in min)
//	VDOT    = VO2 / percent
func Formula(distance string, timeSeconds int) float64 {
	meters, ok := formulaDistances[strings.ToUpper(distance)]
	if !ok {
		meters = 5000
	}

	minutes := float64(timeSeconds) / 60.0
	velocity := meters / minutes

	vo2 := -4.60 + 0.182258*velocity + 0.000104*velocity*velocity
	percent := 0.8 + 0.1894393*math.Exp(-0.012778*minutes) + 0.2989558*math.Exp(-0.1932605*minutes)

	v := vo2 / percent
	log.Printf("INFO: vdot: formula estimate for %s in %ds: %.1f", distance, timeSeconds, v)
	return math.Round(v*10) / 10
}

// formulaPaces derives the five Daniels training paces from VDOT alone,
// as fixed fractions of VO2max.
func formulaPaces(v float64) map[string]string {
	fractions := map[string]float64{
		"E": 0.59,
		"M": 0.84,
		"T": 0.88,
		"I": 0.95,
		"R": 1.0,
	}

	out := make(map[string]string, len(fractions))
	for zone, fraction := range fractions {
		vo2 := v * fraction
		velocity := (vo2 + 4.60) / 0.182258 // m/min
		secsPerKM := 1000 / (velocity / 60)
		out[zone] = fmt.Sprintf("%d:%02d/km", int(secsPerKM)/60, int(secsPerKM)%60)
	}
	return out
}
