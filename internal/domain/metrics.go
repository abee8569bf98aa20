package domain

import (
	"time"
)

// MetricSource records where a metric value came from.
type MetricSource struct {
	ActivityID      int64  `bson:"activity_id,omitempty" json:"activity_id,omitempty"`
	ActivityName    string `bson:"activity_name,omitempty" json:"activity_name,omitempty"`
	DetectionMethod string `bson:"detection_method" json:"detection_method"`
	Notes           string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// DetectionMethodLab marks values entered from a lab test. Lab values are
// pre-confirmed and are not overwritten by automatic detection.
const DetectionMethodLab = "lab_measured"

// MetricSnapshot is one prior value kept in a metric's history.
type MetricSnapshot struct {
	Value  float64 `bson:"value" json:"value"`
	Date   string  `bson:"date" json:"date"` // YYYY-MM-DD
	Source string  `bson:"source" json:"source"`
}

// MetricValue is a single athlete metric (LTHR, FTP, VDOT) with provenance
// and an append-only history of prior values.
type MetricValue struct {
	Value         float64          `bson:"value" json:"value"`
	DetectedAt    string           `bson:"detected_at" json:"detected_at"` // RFC3339
	DetectedFrom  *MetricSource    `bson:"detected_from,omitempty" json:"detected_from,omitempty"`
	UserConfirmed bool             `bson:"user_confirmed" json:"user_confirmed"`
	UserModified  bool             `bson:"user_modified" json:"user_modified"`
	History       []MetricSnapshot `bson:"history,omitempty" json:"history,omitempty"`
}

// NewMetricValue creates a freshly detected, unconfirmed metric.
func NewMetricValue(value float64, source MetricSource) *MetricValue {
	return &MetricValue{
		Value:        value,
		DetectedAt:   time.Now().UTC().Format(time.RFC3339),
		DetectedFrom: &source,
	}
}

// Update appends the current value to history, then replaces it. Any prior
// user confirmation is reset; the new value needs confirming again.
func (m *MetricValue) Update(newValue float64, source MetricSource, userModified bool) {
	prevSource := "unknown"
	if m.DetectedFrom != nil && m.DetectedFrom.DetectionMethod != "" {
		prevSource = m.DetectedFrom.DetectionMethod
	}
	date := m.DetectedAt
	if len(date) >= 10 {
		date = date[:10]
	}
	m.History = append(m.History, MetricSnapshot{Value: m.Value, Date: date, Source: prevSource})

	m.Value = newValue
	m.DetectedAt = time.Now().UTC().Format(time.RFC3339)
	m.DetectedFrom = &source
	m.UserConfirmed = false
	m.UserModified = userModified
}

// Confirm records the user's acceptance of the current value.
func (m *MetricValue) Confirm() {
	m.UserConfirmed = true
}

// IsLabMeasured reports whether the current value came from a lab test.
func (m *MetricValue) IsLabMeasured() bool {
	return m.DetectedFrom != nil && m.DetectedFrom.DetectionMethod == DetectionMethodLab
}

// MetricsSchemaVersion is the persisted TrainingMetrics schema.
const MetricsSchemaVersion = 1

// ZonesCache holds the derived zone sets, recomputed whenever the metric
// they derive from changes.
type ZonesCache struct {
	HeartRate *ZoneSet `bson:"hr,omitempty" json:"hr,omitempty"`
	Power     *ZoneSet `bson:"power,omitempty" json:"power,omitempty"`
}

// TrainingMetrics holds an athlete's threshold metrics and cached zones.
type TrainingMetrics struct {
	Version int          `bson:"version" json:"version"`
	LTHR    *MetricValue `bson:"lthr,omitempty" json:"lthr,omitempty"`
	FTP     *MetricValue `bson:"ftp,omitempty" json:"ftp,omitempty"`
	VDOT    *MetricValue `bson:"vdot,omitempty" json:"vdot,omitempty"`
	Zones   ZonesCache   `bson:"zones,omitempty" json:"zones,omitempty"`
}

// NewTrainingMetrics returns empty metrics at the current schema version.
func NewTrainingMetrics() *TrainingMetrics {
	return &TrainingMetrics{Version: MetricsSchemaVersion}
}

// UpdateLTHR records a detected LTHR and recomputes HR zones. A
// lab-measured LTHR is never overwritten by automatic detection.
func (t *TrainingMetrics) UpdateLTHR(value int, source MetricSource) bool {
	if !t.applyUpdate(&t.LTHR, float64(value), source, false) {
		return false
	}
	t.RecalculateZones()
	return true
}

// UpdateFTP records a detected FTP and recomputes power zones.
func (t *TrainingMetrics) UpdateFTP(value int, source MetricSource) bool {
	if !t.applyUpdate(&t.FTP, float64(value), source, false) {
		return false
	}
	t.RecalculateZones()
	return true
}

// UpdateVDOT records a detected VDOT.
func (t *TrainingMetrics) UpdateVDOT(value float64, source MetricSource) bool {
	return t.applyUpdate(&t.VDOT, value, source, false)
}

func (t *TrainingMetrics) applyUpdate(slot **MetricValue, value float64, source MetricSource, userModified bool) bool {
	if *slot == nil {
		mv := NewMetricValue(value, source)
		mv.UserModified = userModified
		*slot = mv
		return true
	}
	if (*slot).IsLabMeasured() && source.DetectionMethod != DetectionMethodLab && !userModified {
		return false
	}
	(*slot).Update(value, source, userModified)
	return true
}

// SetLTHRFromLab records a lab-tested LTHR. Lab values arrive confirmed.
func (t *TrainingMetrics) SetLTHRFromLab(value int, testDate, notes string) {
	t.setLab(&t.LTHR, float64(value), testDate, notes)
	t.RecalculateZones()
}

// SetFTPFromLab records a lab-tested FTP. Lab values arrive confirmed.
func (t *TrainingMetrics) SetFTPFromLab(value int, testDate, notes string) {
	t.setLab(&t.FTP, float64(value), testDate, notes)
	t.RecalculateZones()
}

func (t *TrainingMetrics) setLab(slot **MetricValue, value float64, testDate, notes string) {
	source := MetricSource{
		ActivityName:    "Lab test - " + testDate,
		DetectionMethod: DetectionMethodLab,
		Notes:           notes,
	}
	if *slot == nil {
		*slot = &MetricValue{
			Value:         value,
			DetectedAt:    testDate + "T00:00:00Z",
			DetectedFrom:  &source,
			UserConfirmed: true,
			UserModified:  true,
		}
		return
	}
	(*slot).Update(value, source, true)
	(*slot).Confirm()
}

// RecalculateZones rebuilds the cached zone sets from current LTHR/FTP.
func (t *TrainingMetrics) RecalculateZones() {
	if t.LTHR != nil && t.LTHR.Value > 0 {
		zs := FrielHRZones(int(t.LTHR.Value))
		t.Zones.HeartRate = &zs
	}
	if t.FTP != nil && t.FTP.Value > 0 {
		zs := FrielPowerZones(int(t.FTP.Value))
		t.Zones.Power = &zs
	}
}
