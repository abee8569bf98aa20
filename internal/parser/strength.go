package parser

import (
	"regexp"
	"strings"
)

// Strength sessions are prescribed by focus area ("Core Focus", "Lower
// Body") rather than by routine id; the library routines they resolve to
// are fixed.

var focusToRoutine = map[string]string{
	"core":              "routine_1_core",
	"core focus":        "routine_1_core",
	"lower body":        "routine_2_lower_body",
	"lower body focus":  "routine_2_lower_body",
	"leg":               "routine_2_lower_body",
	"legs":              "routine_2_lower_body",
	"upper body":        "routine_3_upper_body",
	"upper body & back": "routine_3_upper_body",
	"upper body focus":  "routine_3_upper_body",
	"back":              "routine_3_upper_body",
	"full body":         "routine_4_circuit",
	"full body circuit": "routine_4_circuit",
	"circuit":           "routine_4_circuit",
}

var (
	// The routine-letter form is tried first: "S&C Routine A (Core)" would
	// otherwise be swallowed by the broader s&c pattern.
	reFocusPatterns = []*regexp.Regexp{
		regexp.MustCompile(`routine\s+[a-z]\s*\(([^)]+)\)`),
		regexp.MustCompile(`s&c[:\s]+([^,.]+)`),
		regexp.MustCompile(`strength[:\s]+([^,.]+)`),
	}
	reFocusDuration = regexp.MustCompile(`\d+\s*min.*`)
)

// resolveRoutine maps a strength-session description to a library routine
// id, or "" when no focus area is recognized.
func resolveRoutine(description string) string {
	focus := extractFocus(description)
	if focus == "" {
		return ""
	}
	return focusToRoutine[focus]
}

func extractFocus(description string) string {
	lower := strings.ToLower(description)
	if !strings.Contains(lower, "s&c") && !strings.Contains(lower, "strength") {
		return ""
	}

	for _, re := range reFocusPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			focus := strings.TrimSpace(m[1])
			focus = strings.TrimSpace(reFocusDuration.ReplaceAllString(focus, ""))
			return focus
		}
	}

	switch {
	case strings.Contains(lower, "core"):
		return "core"
	case strings.Contains(lower, "lower body"), strings.Contains(lower, "leg"):
		return "lower body"
	case strings.Contains(lower, "upper body"), strings.Contains(lower, "back"):
		return "upper body"
	case strings.Contains(lower, "full body"), strings.Contains(lower, "circuit"):
		return "full body"
	}
	return ""
}
