// Package vdot provides VDOT lookups based on Jack Daniels' Running
// Formula tables. The CSV table is the source of truth; an analytic
// formula approximation covers the case where no table is available.
package vdot

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
)

// distanceColumns maps the distance labels accepted from callers to the
// race columns of the table.
var distanceColumns = map[string]string{
	"1500M":         "Race_1.5km",
	"1.5K":          "Race_1.5km",
	"1.5KM":         "Race_1.5km",
	"MILE":          "Race_Mile",
	"1MILE":         "Race_Mile",
	"3K":            "Race_3km",
	"3000M":         "Race_3km",
	"3KM":           "Race_3km",
	"2MILE":         "Race_2_mile",
	"2MILES":        "Race_2_mile",
	"5K":            "Race_5k",
	"5000M":         "Race_5k",
	"5KM":           "Race_5k",
	"10K":           "Race_10k",
	"10000M":        "Race_10k",
	"10KM":          "Race_10k",
	"15K":           "Race_15km",
	"15000M":        "Race_15km",
	"15KM":          "Race_15km",
	"HM":            "Race_Half_Marathon",
	"HALF":          "Race_Half_Marathon",
	"HALF_MARATHON": "Race_Half_Marathon",
	"HALFMARATHON":  "Race_Half_Marathon",
	"21K":           "Race_Half_Marathon",
	"MARATHON":      "Race_Marathon",
	"42K":           "Race_Marathon",
	"42.2K":         "Race_Marathon",
	"FULL":          "Race_Marathon",
}

// paceColumns are the training-pace columns surfaced by TrainingPaces, in
// table order. Both the legacy mislabelled interval header and the
// corrected one are accepted.
var paceColumns = []string{
	"Easy_Long_Pace_per_Mile",
	"Easy_Long_Pace_per_km",
	"Marathon_Pace_per_Mile",
	"Marathon_Pace_per_km",
	"Threshold_Pace_400m",
	"Threshold_Pace_per_Mile",
	"Threshold_Pace_per_km",
	"Interval_Pace_400m",
	"Interval_Pace_1.2km",
	"Interval_Pace_per_Mile",
	"Interval_Pace_per_km",
	"Repetition_Pace_200m",
	"Repetition_Pace_400m",
	"Repetition_Pace_per_Mile",
}

type tableRow struct {
	vdot float64
	cols map[string]string
}

// Table is a loaded VDOT lookup table. A nil or empty Table is usable:
// every lookup falls back to the analytic formula and pace methods return
// nothing.
type Table struct {
	rows []tableRow
}

// Load reads a VDOT table from CSV. A leading description row (anything
// before a header row starting with "VDOT") is skipped; rows whose VDOT
// column does not parse are dropped.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var header []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("vdot: no header row found")
		}
		if err != nil {
			return nil, fmt.Errorf("vdot: read header: %w", err)
		}
		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "VDOT") {
			header = record
			break
		}
		// Description row, skip it.
	}

	t := &Table{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vdot: read row: %w", err)
		}
		cols := make(map[string]string, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(record) {
				continue
			}
			cols[name] = strings.TrimSpace(record[i])
		}
		v, err := strconv.ParseFloat(cols["VDOT"], 64)
		if err != nil {
			continue // footer or malformed row
		}
		t.rows = append(t.rows, tableRow{vdot: v, cols: cols})
	}

	if len(t.rows) == 0 {
		return nil, fmt.Errorf("vdot: no valid rows (expected a VDOT column)")
	}
	sort.Slice(t.rows, func(i, j int) bool { return t.rows[i].vdot < t.rows[j].vdot })
	return t, nil
}

// Len reports the number of table rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// FromRace converts a race performance into a VDOT value. The table is a
// set of thresholds: the athlete earns the highest VDOT whose standard
// their time meets or beats, never an interpolated value. When the table
// is unavailable or the distance unknown, the analytic formula is used.
func (t *Table) FromRace(distance string, timeSeconds int) float64 {
	if t.Len() == 0 {
		return Formula(distance, timeSeconds)
	}

	column, ok := distanceColumns[strings.ToUpper(strings.ReplaceAll(distance, " ", ""))]
	if !ok {
		log.Printf("WARN: vdot: unknown race distance %q, using formula", distance)
		return Formula(distance, timeSeconds)
	}

	best := math.NaN()
	for _, row := range t.rows {
		tableTime, ok := parseTableTime(row.cols[column])
		if !ok {
			continue
		}
		if timeSeconds <= tableTime && (math.IsNaN(best) || row.vdot > best) {
			best = row.vdot
		}
	}
	if math.IsNaN(best) {
		log.Printf("WARN: vdot: %s in %ds slower than lowest table standard, using formula", distance, timeSeconds)
		return Formula(distance, timeSeconds)
	}
	return best
}

// closest returns the row whose VDOT is nearest to v.
func (t *Table) closest(v float64) *tableRow {
	if t.Len() == 0 {
		return nil
	}
	best := &t.rows[0]
	for i := range t.rows {
		if math.Abs(t.rows[i].vdot-v) < math.Abs(best.vdot-v) {
			best = &t.rows[i]
		}
	}
	return best
}

// EquivalentTimes returns the race times of the nearest table row, keyed
// by display distance ("5k", "Half Marathon").
func (t *Table) EquivalentTimes(v float64) map[string]string {
	row := t.closest(v)
	if row == nil {
		return map[string]string{}
	}
	out := make(map[string]string)
	for key, value := range row.cols {
		if strings.HasPrefix(key, "Race_") && value != "" {
			name := strings.ReplaceAll(strings.TrimPrefix(key, "Race_"), "_", " ")
			out[name] = value
		}
	}
	return out
}

// TrainingPaces returns the training paces of the nearest table row in the
// format they appear in the table, keyed by display name.
func (t *Table) TrainingPaces(v float64) map[string]string {
	row := t.closest(v)
	if row == nil {
		return map[string]string{}
	}
	out := make(map[string]string)
	for _, col := range paceColumns {
		if value := row.cols[col]; value != "" {
			name := strings.ReplaceAll(col, "_", " ")
			name = strings.ReplaceAll(name, "Pace ", "")
			out[name] = value
		}
	}
	return out
}

// SuggestPaces reduces the table paces to the five Daniels zones as
// "/km" strings (E, M, T, I, R). Repetition pace is derived from the 400m
// column. Without a table the paces are computed from the formula.
func (t *Table) SuggestPaces(v float64) map[string]string {
	if t.Len() == 0 {
		return formulaPaces(v)
	}

	paces := t.TrainingPaces(v)
	out := make(map[string]string)
	for key, value := range paces {
		if !strings.Contains(strings.ToLower(key), "per km") {
			continue
		}
		switch {
		case strings.Contains(key, "Easy"):
			out["E"] = value + "/km"
		case strings.Contains(key, "Marathon"):
			out["M"] = value + "/km"
		case strings.Contains(key, "Threshold"):
			out["T"] = value + "/km"
		case strings.Contains(key, "Interval"):
			out["I"] = value + "/km"
		}
	}
	if rep, ok := paces["Repetition 400m"]; ok {
		if secs, valid := parseTableTime(rep); valid {
			perKM := int(float64(secs) * 2.5)
			out["R"] = fmt.Sprintf("%d:%02d/km", perKM/60, perKM%60)
		}
	}
	return out
}

// parseTableTime converts a table time string to seconds. Formats are
// M:SS, MM:SS and HH:MM:SS; three-part times whose first group exceeds 59
// are the tables' MM:SS:hundredths form, with the hundredths dropped.
func parseTableTime(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, false
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1], true
	case 3:
		if nums[0] > 59 {
			return nums[0]*60 + nums[1], true
		}
		return nums[0]*3600 + nums[1]*60 + nums[2], true
	}
	return 0, false
}
