// Package parser converts coach-generated markdown training plans into the
// structured domain.Plan model.
//
// The generating model does not produce a stable format, so the parser
// works on stripped content rather than exact markdown, locates "Week N:"
// boundaries, and then tries an ordered cascade of session-line strategies
// against each week span. The first strategy that yields at least one
// session wins the week; strategies are never mixed within a week.
// Malformed input never produces an error: unmatched weeks are kept empty
// with a warning, and markdown with no week headers at all yields an empty
// Plan so the caller can fall back to an unstructured representation.
package parser

import (
	"log"
	"regexp"
	"strconv"
	"time"

	"alcyxob/coach-engine/internal/domain"
)

// UserInputs carries the athlete-supplied plan parameters that the markdown
// itself does not contain.
type UserInputs struct {
	Goal          string
	GoalDate      string
	GoalDistance  string
	PlanStartDate string
}

// WeekHint is one entry of the structured date hint that may accompany the
// markdown.
type WeekHint struct {
	WeekNumber int    `json:"week_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// StructureHint is the optional JSON block emitted alongside a generated
// plan, carrying authoritative week dates.
type StructureHint struct {
	Weeks []WeekHint `json:"weeks"`
}

func (h *StructureHint) dates() map[int][2]string {
	out := make(map[int][2]string)
	if h == nil {
		return out
	}
	for _, w := range h.Weeks {
		if w.StartDate != "" && w.EndDate != "" {
			out[w.WeekNumber] = [2]string{w.StartDate, w.EndDate}
		}
	}
	return out
}

var reContext = regexp.MustCompile(`(?i)Context:\s*(.+)$`)

// Parse converts plan markdown into a structured Plan. hint may be nil;
// hrZones, when non-nil, is used to resolve zone labels in session targets
// to concrete bpm ranges. Parse never fails: markdown with no recognizable
// week headers yields a Plan with zero weeks.
func Parse(markdown string, hint *StructureHint, athleteID string, inputs UserInputs, hrZones *domain.ZoneSet) *domain.Plan {
	plan := domain.NewPlan(athleteID)
	plan.AthleteGoal = inputs.Goal
	plan.GoalDate = inputs.GoalDate
	plan.GoalDistance = inputs.GoalDistance
	plan.PlanStartDate = inputs.PlanStartDate

	lines := splitLines(markdown)

	var headers []weekHeader
	for i, line := range lines {
		if n, rest, ok := matchWeekHeader(line); ok {
			headers = append(headers, weekHeader{lineIdx: i, weekNumber: n, rest: rest})
		}
	}
	if len(headers) == 0 {
		log.Printf("WARN: parser: no week headers found in plan markdown")
		return plan
	}

	hintDates := hint.dates()
	refYear := referenceYear(inputs.PlanStartDate)

	for idx, h := range headers {
		spanEnd := len(lines)
		if idx+1 < len(headers) {
			spanEnd = headers[idx+1].lineIdx
		}
		weekLines := lines[h.lineIdx+1 : spanEnd]

		startDate, endDate := resolveWeekDates(h, hintDates, inputs.PlanStartDate, refYear)

		week := domain.Week{
			WeekNumber: h.weekNumber,
			StartDate:  startDate,
			EndDate:    endDate,
		}
		for _, line := range weekLines {
			if m := reContext.FindStringSubmatch(stripMarkdown(line)); m != nil {
				week.Description = normalizeText(m[1])
				break
			}
		}

		drafts, strategyName := matchSessions(weekLines)
		if len(drafts) == 0 {
			log.Printf("WARN: parser: week %d matched no session format, keeping empty", h.weekNumber)
		}

		counter := 0
		used := make(map[int]bool, len(drafts))
		for _, d := range drafts {
			counter++
			num := d.Num
			// Source numbering can restart per session type ("Run 1",
			// "S&C 1"); ids must stay unique within the plan.
			if num == 0 || used[num] {
				num = counter
			}
			for used[num] {
				num++
			}
			used[num] = true
			session := domain.Session{
				ID:              "w" + strconv.Itoa(h.weekNumber) + "-s" + strconv.Itoa(num),
				Day:             d.Day,
				Type:            d.Type,
				Date:            sessionDate(startDate, d.DayOffset),
				Priority:        d.Priority,
				DurationMinutes: d.DurationMinutes,
				Description:     d.Description,
				Zones:           d.Zones,
			}
			if session.Day == "" {
				session.Day = "Anytime"
			}
			if session.Type == domain.SessionStrength {
				session.Routine = resolveRoutine(session.Description)
			}
			annotateHeartRate(&session.Zones, hrZones)
			week.Sessions = append(week.Sessions, session)
		}

		if len(drafts) > 0 {
			log.Printf("INFO: parser: week %d: %d sessions via %s strategy", h.weekNumber, len(drafts), strategyName)
		}
		plan.Weeks = append(plan.Weeks, week)
	}

	return plan
}

// matchSessions runs the strategy cascade over a week span and returns the
// drafts of the first strategy that produced any, with its name.
func matchSessions(weekLines []string) ([]sessionDraft, string) {
	for _, s := range strategies {
		if drafts := s.match(weekLines); len(drafts) > 0 {
			return drafts, s.name()
		}
	}
	return nil, ""
}

// resolveWeekDates picks the week's date range: the hint map is
// authoritative, a trailing range in the header text is next, and a
// deterministic offset from the plan start is the documented fallback.
func resolveWeekDates(h weekHeader, hintDates map[int][2]string, planStart string, refYear int) (string, string) {
	if d, ok := hintDates[h.weekNumber]; ok {
		return d[0], d[1]
	}
	if start, end, ok := parseHeaderDates(h.rest, refYear); ok {
		return start, end
	}
	start, err := time.Parse(domain.DateLayout, planStart)
	if err != nil {
		log.Printf("WARN: parser: week %d has no resolvable dates", h.weekNumber)
		return "", ""
	}
	log.Printf("INFO: parser: week %d dates computed from plan start", h.weekNumber)
	ws := start.AddDate(0, 0, 7*(h.weekNumber-1))
	return ws.Format(domain.DateLayout), ws.AddDate(0, 0, 6).Format(domain.DateLayout)
}

// sessionDate places a session within its week. Formats that carry no day
// information pin the session to the week start.
func sessionDate(weekStart string, dayOffset int) string {
	if weekStart == "" {
		return ""
	}
	if dayOffset <= 0 {
		return weekStart
	}
	t, err := time.Parse(domain.DateLayout, weekStart)
	if err != nil {
		return weekStart
	}
	return t.AddDate(0, 0, dayOffset).Format(domain.DateLayout)
}

// annotateHeartRate resolves a zone label like "2" or "3-4" into a bpm
// range using the athlete's current zones.
func annotateHeartRate(target *domain.ZoneTarget, hrZones *domain.ZoneSet) {
	if hrZones == nil || target.HeartRate == nil || target.HeartRate.ZoneLabel == "" {
		return
	}
	lo, hi, ok := zoneLabelBounds(target.HeartRate.ZoneLabel)
	if !ok || lo < 1 || hi > len(hrZones.Zones) {
		return
	}
	target.HeartRate.MinBPM = hrZones.Zones[lo-1].Min
	target.HeartRate.MaxBPM = hrZones.Zones[hi-1].Max
}

var reZoneBounds = regexp.MustCompile(`^(\d)(?:-(\d))?$`)

func zoneLabelBounds(label string) (int, int, bool) {
	m := reZoneBounds.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, false
	}
	lo, _ := strconv.Atoi(m[1])
	hi := lo
	if m[2] != "" {
		hi, _ = strconv.Atoi(m[2])
	}
	return lo, hi, true
}

func referenceYear(planStart string) int {
	if t, err := time.Parse(domain.DateLayout, planStart); err == nil {
		return t.Year()
	}
	return time.Now().Year()
}
