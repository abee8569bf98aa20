package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"alcyxob/coach-engine/internal/domain"
)

// Ordered keyword groups for session-type classification. The first group
// with a hit wins; anything unmatched is OTHER.
var typeKeywordGroups = []struct {
	sessionType domain.SessionType
	keywords    []string
}{
	{domain.SessionRun, []string{"run", "jog", "parkrun", "xc", "cross country", "track", "trail"}},
	{domain.SessionBike, []string{"bike", "cycling", "cycle", "ride", "turbo", "spin", "trainer"}},
	{domain.SessionSwim, []string{"swim", "pool", "lake", "dip"}},
	{domain.SessionStrength, []string{"s&c", "strength", "routine", "gym", "mobility"}},
	{domain.SessionCrossTrain, []string{"cross-training", "cross training", "elliptical", "rowing", "aqua jog"}},
	{domain.SessionRest, []string{"rest", "recovery day", "off day"}},
}

// detectSessionType classifies free text into a session type by keyword
// search over the ordered groups.
func detectSessionType(text string) domain.SessionType {
	lower := strings.ToLower(text)
	for _, group := range typeKeywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.sessionType
			}
		}
	}
	return domain.SessionOther
}

var rePriorityMarker = regexp.MustCompile(`(?i)\[(KEY|IMPORTANT|STRETCH)\]`)

// extractPriority pulls a [KEY|IMPORTANT|STRETCH] marker out of text.
// Returns "" when no marker is present.
func extractPriority(text string) domain.Priority {
	m := rePriorityMarker.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return domain.Priority(strings.ToUpper(m[1]))
}

var (
	reMinutes   = regexp.MustCompile(`(?i)(\d+)\s*(?:min|mins|minutes)`)
	reHours     = regexp.MustCompile(`(?i)(\d+)\s*h(?:our|ours)?\b`)
	reHoursMins = regexp.MustCompile(`(?i)(\d+)h\s*(\d+)`)
)

// extractDuration reads a duration in minutes from free text. Handles
// "60 mins", "1 hour", "2h15". Returns 0 when nothing matches.
func extractDuration(text string) int {
	if m := reMinutes.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := reHoursMins.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return h*60 + mins
	}
	if m := reHours.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h * 60
	}
	return 0
}

var (
	reZoneLabel = regexp.MustCompile(`(?i)\bzone\s*(\d)(?:\s*[/-]\s*(\d))?|\bZ(\d)\b`)
	reBPMRange  = regexp.MustCompile(`(?i)(\d+)\s*-\s*(\d+)\s*bpm`)
	rePaceKM    = regexp.MustCompile(`(\d+):(\d{2})\s*/\s*km`)
	rePaceMile  = regexp.MustCompile(`(?i)(\d+):(\d{2})\s*(?:-|to)\s*(\d+):(\d{2})\s*min/mile`)
	rePower     = regexp.MustCompile(`(?i)(\d+)\s*W\b`)
)

// extractZones reads structured zone targets out of a session description.
func extractZones(text string) domain.ZoneTarget {
	var target domain.ZoneTarget

	if m := reZoneLabel.FindStringSubmatch(text); m != nil {
		label := m[1]
		if label == "" {
			label = m[3] // the Z<n> short form
		}
		if m[2] != "" {
			label = label + "-" + m[2]
		}
		target.HeartRate = &domain.HeartRateTarget{ZoneLabel: label}
	} else if m := reBPMRange.FindStringSubmatch(text); m != nil {
		min, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		target.HeartRate = &domain.HeartRateTarget{MinBPM: min, MaxBPM: max}
	}

	if m := rePaceKM.FindStringSubmatch(text); m != nil {
		target.Pace = &domain.PaceTarget{Text: m[1] + ":" + m[2] + "/km"}
	} else if m := rePaceMile.FindStringSubmatch(text); m != nil {
		target.Pace = &domain.PaceTarget{Text: m[1] + ":" + m[2] + "-" + m[3] + ":" + m[4] + "/mile"}
	}

	if m := rePower.FindStringSubmatch(text); m != nil {
		watts, _ := strconv.Atoi(m[1])
		target.Power = &domain.PowerTarget{Watts: watts}
	}

	return target
}

// weekHeader is a located "Week N:" boundary in the markdown.
type weekHeader struct {
	lineIdx    int
	weekNumber int
	rest       string // header text after "Week N:", may carry a date range
}

var reWeekHeader = regexp.MustCompile(`(?i)\bweek\s+(\d+)\s*:\s*(.*)$`)

// matchWeekHeader recognizes the "Week N:" content pattern on a
// decoration-stripped line.
func matchWeekHeader(line string) (int, string, bool) {
	m := reWeekHeader.FindStringSubmatch(stripMarkdown(line))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(m[2]), true
}

var (
	reOrdinal   = regexp.MustCompile(`(\d+)(?:st|nd|rd|th)`)
	reDateRange = regexp.MustCompile(`(.+?)\s*-\s*(.+?)(?:\s*\(|$)`)
)

// headerDateFormats are tried in order against "<month> <day> <year>" and
// "<day> <month> <year>" renderings of the header text.
var headerDateFormats = []string{"January 2 2006", "Jan 2 2006", "2 January 2006", "2 Jan 2006"}

// parseHeaderDates attempts to read a "Jan 1 - Jan 7" style range from the
// trailing header text. The year is inferred from refYear, rolling the end
// date into the next year when the range crosses a year boundary.
func parseHeaderDates(rest string, refYear int) (string, string, bool) {
	m := reDateRange.FindStringSubmatch(rest)
	if m == nil {
		return "", "", false
	}
	startRaw := reOrdinal.ReplaceAllString(strings.TrimSpace(m[1]), "$1")
	endRaw := reOrdinal.ReplaceAllString(strings.TrimSpace(m[2]), "$1")

	for _, layout := range headerDateFormats {
		start, err1 := time.Parse(layout, startRaw+" "+strconv.Itoa(refYear))
		end, err2 := time.Parse(layout, endRaw+" "+strconv.Itoa(refYear))
		if err1 != nil || err2 != nil {
			continue
		}
		if end.Before(start) {
			end = end.AddDate(1, 0, 0)
		}
		return start.Format(domain.DateLayout), end.Format(domain.DateLayout), true
	}
	return "", "", false
}
