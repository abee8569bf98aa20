package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/coach-engine/internal/domain"
)

func TestParseSingleWeekTypeColon(t *testing.T) {
	markdown := "Week 1: Jan 1 - Jan 7\n**Run: Easy** [KEY]\nDuration: 30 mins"

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-01"}, nil)

	require.Len(t, plan.Weeks, 1)
	week := plan.Weeks[0]
	assert.Equal(t, 1, week.WeekNumber)
	assert.Equal(t, "2026-01-01", week.StartDate)
	assert.Equal(t, "2026-01-07", week.EndDate)

	require.Len(t, week.Sessions, 1)
	s := week.Sessions[0]
	assert.Equal(t, "w1-s1", s.ID)
	assert.Equal(t, domain.SessionRun, s.Type)
	assert.Equal(t, domain.PriorityKey, s.Priority)
	assert.Equal(t, 30, s.DurationMinutes)
}

func TestParseWeekCountMatchesHeaders(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "### Week %d:\n", i)
		fmt.Fprintf(&b, "* **Run %d [KEY]: Easy run, 40 mins**\n", i)
	}

	plan := Parse(b.String(), nil, "athlete-1", UserInputs{PlanStartDate: "2026-03-02"}, nil)

	require.Len(t, plan.Weeks, 5)
	for i, w := range plan.Weeks {
		assert.Equal(t, i+1, w.WeekNumber)
		require.Len(t, w.Sessions, 1)
	}
	// No header dates and no hint: deterministic offsets from plan start.
	assert.Equal(t, "2026-03-02", plan.Weeks[0].StartDate)
	assert.Equal(t, "2026-03-08", plan.Weeks[0].EndDate)
	assert.Equal(t, "2026-03-09", plan.Weeks[1].StartDate)
	assert.Equal(t, "2026-03-30", plan.Weeks[4].StartDate)
}

func TestParseNoHeadersYieldsEmptyPlan(t *testing.T) {
	plan := Parse("Just some notes about training.\nNothing structured here.", nil, "athlete-1", UserInputs{}, nil)

	require.NotNil(t, plan)
	assert.Empty(t, plan.Weeks)
}

func TestParseHintDatesWin(t *testing.T) {
	hint := &StructureHint{Weeks: []WeekHint{
		{WeekNumber: 1, StartDate: "2026-05-04", EndDate: "2026-05-10"},
	}}
	// Header carries a conflicting range; the hint is authoritative.
	markdown := "Week 1: Jan 1 - Jan 7\n**Run: Steady** 45 mins"

	plan := Parse(markdown, hint, "athlete-1", UserInputs{PlanStartDate: "2026-01-01"}, nil)

	require.Len(t, plan.Weeks, 1)
	assert.Equal(t, "2026-05-04", plan.Weeks[0].StartDate)
	assert.Equal(t, "2026-05-10", plan.Weeks[0].EndDate)
}

func TestParseNestedBulletFormat(t *testing.T) {
	markdown := strings.Join([]string{
		"## Week 2: Jan 8 - Jan 14",
		"* Monday: Easy Run [IMPORTANT]",
		"    * Duration: 45 mins",
		"    * Description: Steady Zone 2, conversational.",
		"* Wednesday: Turbo Session [KEY]",
		"    * Duration: 60 mins",
		"    * Description: 3x10 min at 250 W.",
	}, "\n")

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-01"}, nil)

	require.Len(t, plan.Weeks, 1)
	week := plan.Weeks[0]
	require.Len(t, week.Sessions, 2)

	run := week.Sessions[0]
	assert.Equal(t, "w2-s1", run.ID)
	assert.Equal(t, domain.SessionRun, run.Type)
	assert.Equal(t, domain.PriorityImportant, run.Priority)
	assert.Equal(t, 45, run.DurationMinutes)
	require.NotNil(t, run.Zones.HeartRate)
	assert.Equal(t, "2", run.Zones.HeartRate.ZoneLabel)

	bike := week.Sessions[1]
	assert.Equal(t, domain.SessionBike, bike.Type)
	require.NotNil(t, bike.Zones.Power)
	assert.Equal(t, 250, bike.Zones.Power.Watts)
}

func TestParseLegacyNumberedFormat(t *testing.T) {
	markdown := strings.Join([]string{
		"### Week 3: Feb 2nd - Feb 8th",
		"**Context:** Build week, watch fatigue.",
		"*   **Run 1 [KEY]: Long run, 90 mins Zone 2**",
		"*   **S&C 2 [IMPORTANT]: Core Focus, 30 mins**",
	}, "\n")

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-26"}, nil)

	require.Len(t, plan.Weeks, 1)
	week := plan.Weeks[0]
	assert.Equal(t, "2026-02-02", week.StartDate)
	assert.Equal(t, "Build week, watch fatigue.", week.Description)

	require.Len(t, week.Sessions, 2)
	assert.Equal(t, "w3-s1", week.Sessions[0].ID)
	assert.Equal(t, domain.SessionRun, week.Sessions[0].Type)
	assert.Equal(t, 90, week.Sessions[0].DurationMinutes)
	assert.Equal(t, "2026-02-02", week.Sessions[0].Date)

	sc := week.Sessions[1]
	assert.Equal(t, "w3-s2", sc.ID)
	assert.Equal(t, domain.SessionStrength, sc.Type)
	assert.Equal(t, "routine_1_core", sc.Routine)
	assert.Equal(t, 30, sc.DurationMinutes)
	assert.Equal(t, "2026-02-03", sc.Date)
}

func TestParseNumberedFormatRepeatedNumbersKeepUniqueIDs(t *testing.T) {
	// Some documents number each session type independently, so "Run 1"
	// and "S&C 1" land in the same week with the same number.
	markdown := strings.Join([]string{
		"### Week 1: Jan 5th - Jan 11th",
		"*   **Run 1 [KEY]: Long run, 90 mins Zone 2**",
		"*   **Bike 2 [IMPORTANT]: Endurance ride, 60 mins**",
		"*   **S&C 1 [IMPORTANT]: Core Focus, 30 mins**",
	}, "\n")

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-05"}, nil)

	require.Len(t, plan.Weeks, 1)
	sessions := plan.Weeks[0].Sessions
	require.Len(t, sessions, 3)

	assert.Equal(t, "w1-s1", sessions[0].ID)
	assert.Equal(t, domain.SessionRun, sessions[0].Type)
	assert.Equal(t, "w1-s2", sessions[1].ID)
	// The repeated number falls back to the running position.
	assert.Equal(t, "w1-s3", sessions[2].ID)
	assert.Equal(t, domain.SessionStrength, sessions[2].Type)

	seen := make(map[string]bool)
	for _, s := range sessions {
		assert.False(t, seen[s.ID], "duplicate session id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestParseLegacyBracketFirstFormat(t *testing.T) {
	markdown := strings.Join([]string{
		"### Week 1: Mar 2 - Mar 8",
		"*   **[KEY] Sun: Rivenhall XC (8km)**",
		"*   **[STRETCH] Tue: Recovery spin, 30 mins**",
	}, "\n")

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-03-02"}, nil)

	require.Len(t, plan.Weeks, 1)
	require.Len(t, plan.Weeks[0].Sessions, 2)

	race := plan.Weeks[0].Sessions[0]
	assert.Equal(t, domain.SessionRun, race.Type)
	assert.Equal(t, domain.PriorityKey, race.Priority)
	assert.Equal(t, "Sun", race.Day)
	assert.Equal(t, "2026-03-08", race.Date)

	spin := plan.Weeks[0].Sessions[1]
	assert.Equal(t, domain.SessionBike, spin.Type)
	assert.Equal(t, "2026-03-03", spin.Date)
}

func TestParseStrategiesNeverMixWithinAWeek(t *testing.T) {
	// Nested bullets and a bare type-colon line in the same week: the
	// nested strategy wins and the stray line is ignored.
	markdown := strings.Join([]string{
		"Week 1: Jan 1 - Jan 7",
		"* Monday: Easy Run",
		"    * Duration: 40 mins",
		"Swim: 20 lengths easy",
	}, "\n")

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-01"}, nil)

	require.Len(t, plan.Weeks, 1)
	require.Len(t, plan.Weeks[0].Sessions, 1)
	assert.Equal(t, domain.SessionRun, plan.Weeks[0].Sessions[0].Type)
}

func TestParseSessionIDsAreUnique(t *testing.T) {
	markdown := strings.Join([]string{
		"Week 1: Jan 1 - Jan 7",
		"Run: easy 30 mins",
		"Bike: turbo 45 mins",
		"Week 2: Jan 8 - Jan 14",
		"Run: tempo 40 mins",
	}, "\n")

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-01"}, nil)

	seen := map[string]bool{}
	for _, w := range plan.Weeks {
		for _, s := range w.Sessions {
			assert.False(t, seen[s.ID], "duplicate session id %s", s.ID)
			seen[s.ID] = true
		}
	}
	assert.Len(t, seen, 3)
}

func TestParseAnnotatesZoneLabels(t *testing.T) {
	zones := domain.FrielHRZones(160)
	markdown := "Week 1: Jan 1 - Jan 7\nRun: steady Zone 2, 40 mins"

	plan := Parse(markdown, nil, "athlete-1", UserInputs{PlanStartDate: "2026-01-01"}, &zones)

	require.Len(t, plan.Weeks, 1)
	require.Len(t, plan.Weeks[0].Sessions, 1)
	hr := plan.Weeks[0].Sessions[0].Zones.HeartRate
	require.NotNil(t, hr)
	assert.Equal(t, "2", hr.ZoneLabel)
	assert.Equal(t, zones.Zones[1].Min, hr.MinBPM)
	assert.Equal(t, zones.Zones[1].Max, hr.MaxBPM)
}

func TestDetectSessionType(t *testing.T) {
	tests := []struct {
		text string
		want domain.SessionType
	}{
		{"Easy run around the park", domain.SessionRun},
		{"Parkrun 5k effort", domain.SessionRun},
		{"Turbo trainer intervals", domain.SessionBike},
		{"Open water lake session", domain.SessionSwim},
		{"S&C: Foundation routine", domain.SessionStrength},
		{"Elliptical 30 mins", domain.SessionCrossTrain},
		{"Rest day, feet up", domain.SessionRest},
		{"Something vague", domain.SessionOther},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, detectSessionType(tt.text))
		})
	}
}

func TestExtractDuration(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"an easy 30 mins", 30},
		{"60 minutes steady", 60},
		{"1 hour endurance", 60},
		{"2h15 long ride", 135},
		{"no duration here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDuration(tt.text))
		})
	}
}

func TestExtractZones(t *testing.T) {
	z := extractZones("Steady Zone 3-4, hold 5:30/km, cap at 210 W")
	require.NotNil(t, z.HeartRate)
	assert.Equal(t, "3-4", z.HeartRate.ZoneLabel)
	require.NotNil(t, z.Pace)
	assert.Equal(t, "5:30/km", z.Pace.Text)
	require.NotNil(t, z.Power)
	assert.Equal(t, 210, z.Power.Watts)

	bpm := extractZones("keep it 141-148 bpm")
	require.NotNil(t, bpm.HeartRate)
	assert.Equal(t, 141, bpm.HeartRate.MinBPM)
	assert.Equal(t, 148, bpm.HeartRate.MaxBPM)

	none := extractZones("just go by feel")
	assert.True(t, none.IsZero())
}

func TestParseHeaderDates(t *testing.T) {
	tests := []struct {
		rest      string
		wantStart string
		wantEnd   string
		ok        bool
	}{
		{"Jan 1 - Jan 7", "2026-01-01", "2026-01-07", true},
		{"January 1st - January 7th", "2026-01-01", "2026-01-07", true},
		{"Dec 29 - Jan 4", "2026-12-29", "2027-01-04", true},
		{"Recovery focus", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.rest, func(t *testing.T) {
			start, end, ok := parseHeaderDates(tt.rest, 2026)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestSplitStructuredBlock(t *testing.T) {
	response := "### Week 1: plan body\n\n```json\n{\"weeks\": [{\"week_number\": 1, \"start_date\": \"2026-01-01\", \"end_date\": \"2026-01-07\"}]}\n```"

	markdown, hint := SplitStructuredBlock(response)

	assert.Equal(t, "### Week 1: plan body", markdown)
	require.NotNil(t, hint)
	require.Len(t, hint.Weeks, 1)
	assert.Equal(t, "2026-01-01", hint.Weeks[0].StartDate)
}

func TestSplitStructuredBlockMalformedJSON(t *testing.T) {
	response := "plan body\n```json\n{not json}\n```"

	markdown, hint := SplitStructuredBlock(response)

	assert.Equal(t, "plan body", markdown)
	assert.Nil(t, hint)
}
