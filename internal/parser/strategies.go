package parser

import (
	"regexp"
	"strconv"
	"strings"

	"alcyxob/coach-engine/internal/domain"
)

// sessionDraft is a session extracted from a week span before ids and dates
// are assigned.
type sessionDraft struct {
	Day             string
	Type            domain.SessionType
	Priority        domain.Priority
	DurationMinutes int
	Description     string
	Zones           domain.ZoneTarget
	// DayOffset is days past the week start, or -1 when the format carries
	// no day information.
	DayOffset int
	// Num is an explicit session number from the source line, or 0 to use
	// the per-week counter.
	Num int
}

// sessionStrategy recognizes one session line format within a week span.
// Strategies are tried in fixed order; the first one producing at least one
// draft wins the whole week, and formats are never mixed within a week.
type sessionStrategy interface {
	name() string
	match(weekLines []string) []sessionDraft
}

var strategies = []sessionStrategy{
	nestedBulletStrategy{},
	numberedStrategy{},
	bracketFirstStrategy{},
	typeColonStrategy{},
}

var dayOffsets = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// nestedBulletStrategy handles the multi-line bulleted format where each
// top-level bullet names a session and nested sub-bullets carry its
// attributes:
//
//	* Monday: Easy Run [KEY]
//	    * Duration: 45 mins
//	    * Description: Steady Zone 2, conversational.
//
// A top-level bullet only counts as a session when at least one sub-bullet
// follows it, which keeps this strategy from swallowing the single-line
// bullet formats.
type nestedBulletStrategy struct{}

func (nestedBulletStrategy) name() string { return "nested-bullet" }

func (nestedBulletStrategy) match(weekLines []string) []sessionDraft {
	var drafts []sessionDraft

	i := 0
	for i < len(weekLines) {
		line := weekLines[i]
		if !isBullet(line) {
			i++
			continue
		}
		topIndent := bulletIndent(line)
		title := stripMarkdown(line)

		// Gather sub-bullets nested under this one.
		var attrs []string
		j := i + 1
		for j < len(weekLines) {
			next := weekLines[j]
			if !isBullet(next) || bulletIndent(next) <= topIndent {
				break
			}
			attrs = append(attrs, stripMarkdown(next))
			j++
		}
		i = j

		if len(attrs) == 0 {
			continue
		}

		full := title + " " + strings.Join(attrs, " ")
		draft := sessionDraft{
			Type:            detectSessionType(full),
			Priority:        extractPriority(full),
			DurationMinutes: extractDuration(full),
			Description:     full,
			Zones:           extractZones(full),
			DayOffset:       -1,
		}
		if day, off, ok := leadingDay(title); ok {
			draft.Day = day
			draft.DayOffset = off
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

var reLeadingDay = regexp.MustCompile(`(?i)^(Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*\b`)

// leadingDay reads a weekday name off the front of a stripped session line.
func leadingDay(text string) (string, int, bool) {
	m := reLeadingDay.FindString(text)
	if m == "" {
		return "", 0, false
	}
	key := strings.ToLower(m)[:3]
	off, ok := dayOffsets[key]
	if !ok {
		return "", 0, false
	}
	return m, off, true
}

// numberedStrategy handles the legacy numbered format:
//
//	*   **Run 1 [KEY]: Long run, 90 mins Zone 2**
//
// The number, when present, becomes both the day offset and the session id
// suffix.
type numberedStrategy struct{}

func (numberedStrategy) name() string { return "numbered" }

var reNumbered = regexp.MustCompile(`^\s*[*\-]\s+\*\*([A-Za-z&\s]+?)\s*(\d+)?\s*\[([^\]]+)\]:\s*([^*\n]+)`)

func (numberedStrategy) match(weekLines []string) []sessionDraft {
	var drafts []sessionDraft
	counter := 0

	for _, line := range weekLines {
		m := reNumbered.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counter++
		prefix := strings.TrimSpace(m[1])
		num := counter
		if m[2] != "" {
			num, _ = strconv.Atoi(m[2])
		}
		priority := normalizePriority(m[3])
		title := normalizeText(m[4])
		full := prefix + ": " + title

		drafts = append(drafts, sessionDraft{
			Day:             "Day " + strconv.Itoa(num),
			Type:            detectSessionType(prefix + " " + title),
			Priority:        priority,
			DurationMinutes: extractDuration(title),
			Description:     full,
			Zones:           extractZones(title),
			DayOffset:       minInt(num-1, 6),
			Num:             num,
		})
	}
	return drafts
}

// bracketFirstStrategy handles the legacy priority-first format:
//
//	*   **[KEY] Sun: Rivenhall XC (8km)**
//
// The weekday after the marker fixes the session date within the week.
type bracketFirstStrategy struct{}

func (bracketFirstStrategy) name() string { return "bracket-first" }

var reBracketFirst = regexp.MustCompile(`^\s*[*\-]\s+\*\*\[([^\]]+)\]\s+([A-Za-z]+):\s*([^*\n]+)`)

func (bracketFirstStrategy) match(weekLines []string) []sessionDraft {
	var drafts []sessionDraft
	counter := 0

	for _, line := range weekLines {
		m := reBracketFirst.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counter++
		priority := normalizePriority(m[1])
		day := strings.TrimSpace(m[2])
		title := normalizeText(m[3])
		full := day + ": " + title

		offset := counter - 1
		if _, off, ok := leadingDay(day); ok {
			offset = off
		}

		drafts = append(drafts, sessionDraft{
			Day:             day,
			Type:            detectSessionType(title),
			Priority:        priority,
			DurationMinutes: extractDuration(title),
			Description:     full,
			Zones:           extractZones(title),
			DayOffset:       offset,
		})
	}
	return drafts
}

// typeColonStrategy is the format-agnostic fallback. It matches any line
// whose stripped content carries a type word followed by a colon, gathering
// subsequent non-session lines as continuation of the description:
//
//	**Run: Easy** [KEY]
//	Duration: 30 mins
type typeColonStrategy struct{}

func (typeColonStrategy) name() string { return "type-colon" }

var reTypeColon = regexp.MustCompile(`(?i)(Run|Ride|Bike|S&C|Strength|Swim|Cycle|Rest|Recovery)[:\-]\s*(.+?)(?:\s*\[(KEY|IMPORTANT|STRETCH)\])?$`)

func (typeColonStrategy) match(weekLines []string) []sessionDraft {
	var drafts []sessionDraft

	for i := 0; i < len(weekLines); i++ {
		stripped := stripMarkdown(weekLines[i])
		m := reTypeColon.FindStringSubmatch(stripped)
		if m == nil {
			continue
		}
		typeRaw := m[1]
		full := strings.TrimSpace(m[2])
		priorityRaw := m[3]

		// Continuation lines extend the description until the next session
		// line or week header.
		for j := i + 1; j < len(weekLines); j++ {
			next := stripMarkdown(weekLines[j])
			if reTypeColon.MatchString(next) {
				break
			}
			if _, _, ok := matchWeekHeader(weekLines[j]); ok {
				break
			}
			if next != "" && !strings.HasPrefix(strings.ToLower(next), "week") {
				full += " " + next
			}
		}

		priority := domain.Priority(strings.ToUpper(priorityRaw))
		if priority == "" {
			priority = extractPriority(full)
		}

		draft := sessionDraft{
			Day:             "Anytime",
			Type:            detectSessionType(typeRaw + " " + full),
			Priority:        priority,
			DurationMinutes: extractDuration(full),
			Description:     full,
			Zones:           extractZones(full),
			DayOffset:       -1,
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// normalizePriority folds a raw bracket payload like "KEY session" down to
// its first word, uppercased.
func normalizePriority(raw string) domain.Priority {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return ""
	}
	return domain.Priority(strings.ToUpper(fields[0]))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
