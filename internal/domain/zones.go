package domain

import "fmt"

// ZoneRange is a single training zone. Max == UnboundedZoneMax means the
// zone has no upper limit (the top zone).
type ZoneRange struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// UnboundedZoneMax is the sentinel used for the top zone's Max.
const UnboundedZoneMax = -1

// ZoneSet is a derived set of zones plus a note about how it was computed.
type ZoneSet struct {
	Zones             []ZoneRange `bson:"zones" json:"zones"`
	CalculationMethod string      `bson:"calculation_method" json:"calculation_method"`
}

// FrielHRZones derives the five heart-rate zones from LTHR using Joe
// Friel's percentages. The boundaries are fixed domain constants; they are
// never re-derived from athlete history.
func FrielHRZones(lthr int) ZoneSet {
	return ZoneSet{
		Zones: []ZoneRange{
			{Min: 0, Max: int(float64(lthr) * 0.85)},
			{Min: int(float64(lthr) * 0.85), Max: int(float64(lthr) * 0.89)},
			{Min: int(float64(lthr) * 0.90), Max: int(float64(lthr) * 0.94)},
			{Min: int(float64(lthr) * 0.95), Max: lthr},
			{Min: lthr, Max: UnboundedZoneMax},
		},
		CalculationMethod: fmt.Sprintf("Joe Friel (LTHR: %d bpm)", lthr),
	}
}

// FrielPowerZones derives the seven power zones from FTP using Joe Friel's
// percentages.
func FrielPowerZones(ftp int) ZoneSet {
	return ZoneSet{
		Zones: []ZoneRange{
			{Min: 0, Max: int(float64(ftp) * 0.55)},
			{Min: int(float64(ftp) * 0.55), Max: int(float64(ftp) * 0.74)},
			{Min: int(float64(ftp) * 0.75), Max: int(float64(ftp) * 0.89)},
			{Min: int(float64(ftp) * 0.90), Max: int(float64(ftp) * 1.04)},
			{Min: int(float64(ftp) * 1.05), Max: int(float64(ftp) * 1.20)},
			{Min: int(float64(ftp) * 1.20), Max: int(float64(ftp) * 1.50)},
			{Min: int(float64(ftp) * 1.50), Max: UnboundedZoneMax},
		},
		CalculationMethod: fmt.Sprintf("Joe Friel (Estimated FTP: %d W)", ftp),
	}
}

// HeartRateTarget is a target heart-rate band for a session. Either a zone
// label ("2" or "3-4") or an explicit bpm range may be present.
type HeartRateTarget struct {
	ZoneLabel string `bson:"zone_label,omitempty" json:"zone_label,omitempty"`
	MinBPM    int    `bson:"min_bpm,omitempty" json:"min_bpm,omitempty"`
	MaxBPM    int    `bson:"max_bpm,omitempty" json:"max_bpm,omitempty"`
}

// PaceTarget is a target pace, kept as display text (e.g. "5:30/km").
type PaceTarget struct {
	Text string `bson:"text" json:"text"`
}

// PowerTarget is a target power in watts.
type PowerTarget struct {
	Watts int `bson:"watts" json:"watts"`
}

// ZoneTarget is the structured session target. Each member is optional; a
// session may prescribe heart rate, pace, power, any combination, or none.
type ZoneTarget struct {
	HeartRate *HeartRateTarget `bson:"heart_rate,omitempty" json:"heart_rate,omitempty"`
	Pace      *PaceTarget      `bson:"pace,omitempty" json:"pace,omitempty"`
	Power     *PowerTarget     `bson:"power,omitempty" json:"power,omitempty"`
	Notes     string           `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IsZero reports whether no target of any kind is set.
func (z ZoneTarget) IsZero() bool {
	return z.HeartRate == nil && z.Pace == nil && z.Power == nil && z.Notes == ""
}

// clone returns a deep copy so plans never alias caller-owned targets.
func (z ZoneTarget) clone() ZoneTarget {
	out := ZoneTarget{Notes: z.Notes}
	if z.HeartRate != nil {
		hr := *z.HeartRate
		out.HeartRate = &hr
	}
	if z.Pace != nil {
		p := *z.Pace
		out.Pace = &p
	}
	if z.Power != nil {
		p := *z.Power
		out.Power = &p
	}
	return out
}
