package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLTHRRecalculatesZones(t *testing.T) {
	m := NewTrainingMetrics()

	ok := m.UpdateLTHR(160, MetricSource{DetectionMethod: "race_result"})

	require.True(t, ok)
	require.NotNil(t, m.LTHR)
	assert.Equal(t, 160.0, m.LTHR.Value)
	assert.False(t, m.LTHR.UserConfirmed)
	require.NotNil(t, m.Zones.HeartRate)
	assert.Len(t, m.Zones.HeartRate.Zones, 5)
	assert.Equal(t, 152, m.Zones.HeartRate.Zones[3].Min)
	assert.Equal(t, UnboundedZoneMax, m.Zones.HeartRate.Zones[4].Max)
}

func TestUpdateFTPRecalculatesZones(t *testing.T) {
	m := NewTrainingMetrics()

	require.True(t, m.UpdateFTP(200, MetricSource{DetectionMethod: "20MIN_test"}))
	require.NotNil(t, m.Zones.Power)
	assert.Len(t, m.Zones.Power.Zones, 7)
	assert.Equal(t, 110, m.Zones.Power.Zones[1].Min)
	assert.Equal(t, UnboundedZoneMax, m.Zones.Power.Zones[6].Max)
}

func TestLabValueBlocksAutomaticDetection(t *testing.T) {
	m := NewTrainingMetrics()
	m.SetFTPFromLab(250, "2026-05-01", "ramp protocol")

	require.NotNil(t, m.FTP)
	assert.True(t, m.FTP.UserConfirmed)
	assert.True(t, m.FTP.IsLabMeasured())

	// A detected value never displaces a lab measurement.
	assert.False(t, m.UpdateFTP(230, MetricSource{DetectionMethod: "20MIN_test"}))
	assert.Equal(t, 250.0, m.FTP.Value)

	// A newer lab test does.
	m.SetFTPFromLab(260, "2026-06-01", "")
	assert.Equal(t, 260.0, m.FTP.Value)
	assert.True(t, m.FTP.UserConfirmed)
}

func TestMetricUpdateKeepsHistory(t *testing.T) {
	m := NewTrainingMetrics()
	require.True(t, m.UpdateVDOT(48.5, MetricSource{DetectionMethod: "race_result"}))
	m.VDOT.Confirm()
	require.True(t, m.UpdateVDOT(49.2, MetricSource{DetectionMethod: "race_result"}))

	require.Len(t, m.VDOT.History, 1)
	assert.Equal(t, 48.5, m.VDOT.History[0].Value)
	assert.Equal(t, "race_result", m.VDOT.History[0].Source)
	// Confirmation never survives a value change.
	assert.False(t, m.VDOT.UserConfirmed)
}
