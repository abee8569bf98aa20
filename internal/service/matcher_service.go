package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"alcyxob/coach-engine/internal/domain"
)

// Confidence thresholds for accepting a scored match.
const (
	matchThresholdMulti         = 5.0
	matchThresholdUnique        = 2.0
	matchThresholdStretchMulti  = 3.0
	matchThresholdStretchUnique = 1.5
	uniqueBoostMinScore         = 1.0
	strongSimilarity            = 0.5
	moderateSimilarity          = 0.3
	weakSimilarity              = 0.1
)

// Keyword groups checked pairwise: the activity text must hit the first
// list and the session description the second.
type keywordPair struct {
	activity []string
	session  []string
}

var runTypePairs = []keywordPair{
	{[]string{"race", "league", "championship", "park run", "5 mile", "5 miles"}, []string{"race", "5 mile", "10k", "key effort"}},
	{[]string{"club", "social", "group"}, []string{"club", "social", "group"}},
	{[]string{"long run", "long"}, []string{"long run", "long"}},
	{[]string{"tempo", "threshold"}, []string{"tempo", "threshold"}},
	{[]string{"interval", "repeats"}, []string{"interval", "repeats"}},
	{[]string{"easy", "recovery"}, []string{"easy", "recovery"}},
	{[]string{"fartlek"}, []string{"fartlek"}},
	{[]string{"hill"}, []string{"hill"}},
}

var bikeTypePairs = []keywordPair{
	{[]string{"ftp", "functional threshold", "threshold test"}, []string{"ftp", "threshold", "functional threshold"}},
	{[]string{"ramp", "ramp test", "incremental"}, []string{"ramp", "incremental"}},
	{[]string{"time trial", "tt"}, []string{"time trial", "tt"}},
	{[]string{"sweet spot"}, []string{"sweet spot"}},
	{[]string{"vo2", "vo2max"}, []string{"vo2", "vo2max"}},
	{[]string{"endurance", "base"}, []string{"endurance", "base"}},
}

var intensityGroups = []struct {
	name     string
	keywords []string
}{
	{"easy", []string{"easy", "recovery", "z1", "z2", "zone 1", "zone 2", "conversational", "social"}},
	{"tempo", []string{"tempo", "threshold", "z3", "z4", "zone 3", "zone 4"}},
	{"hard", []string{"interval", "vo2", "z5", "zone 5", "hard", "effort", "fast"}},
}

var sessionIntervalKeywords = []string{"interval", "repeats", "vo2", "track", " i ", " i-pace", "rep"}
var activityIntervalKeywords = []string{"interval", "repeats", "vo2", "track"}

// MatchResult pairs an activity with the session it completed.
type MatchResult struct {
	Session  *domain.Session
	Analysis *ActivityAnalysis
	Score    float64
	Reason   string
}

// MatcherService links completed activities back to planned sessions.
// Athletes who schedule strictly are matched by date; everyone else is
// matched by week plus scored characteristics.
type MatcherService interface {
	Match(plan *domain.Plan, analysis *ActivityAnalysis, style domain.SchedulingStyle) *MatchResult
	MatchBatch(plan *domain.Plan, analyses []*ActivityAnalysis, style domain.SchedulingStyle) []*MatchResult
}

type matcherService struct{}

// NewMatcherService creates a new instance of matcherService.
func NewMatcherService() MatcherService {
	return &matcherService{}
}

func (m *matcherService) Match(plan *domain.Plan, analysis *ActivityAnalysis, style domain.SchedulingStyle) *MatchResult {
	activity := analysis.Activity
	activityDate := activity.Date()
	sessionType := domain.SessionTypeForActivity(activity.Type)

	// Strict schedulers pin sessions to dates, so date wins when types agree.
	if style == domain.StyleDisciplinarian {
		if session := sessionByDate(plan, activityDate); session != nil {
			if session.Type == "" || session.Type == domain.SessionRest {
				return &MatchResult{Session: session, Analysis: analysis, Score: matchThresholdUnique, Reason: "date match"}
			}
			if session.Type == sessionType {
				return &MatchResult{Session: session, Analysis: analysis, Score: matchThresholdUnique, Reason: "date match"}
			}
			log.Printf("WARN: matcher: date matched but type mismatch: session=%s activity=%s", session.Type, sessionType)
		}
	}

	week := plan.WeekByDate(activityDate)
	if week == nil {
		log.Printf("WARN: matcher: activity %s does not fall within any plan week", activityDate)
		return nil
	}

	var candidates []*domain.Session
	for i := range week.Sessions {
		s := &week.Sessions[i]
		if !s.Completed && s.Type == sessionType && s.Type != domain.SessionRest {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		log.Printf("INFO: matcher: no incomplete %s sessions in week %d", sessionType, week.WeekNumber)
		return nil
	}

	best := candidates[0]
	bestScore, bestReason := scoreCandidate(best, analysis, sessionType)
	for _, s := range candidates[1:] {
		if score, reason := scoreCandidate(s, analysis, sessionType); score > bestScore {
			best, bestScore, bestReason = s, score, reason
		}
	}

	isUnique := len(candidates) == 1
	threshold := matchThresholdMulti
	if isUnique {
		threshold = matchThresholdUnique
		// A lone candidate with any signal beyond the base score is very
		// likely the one the athlete did.
		if bestScore < threshold && bestScore >= uniqueBoostMinScore {
			bestScore = threshold
			bestReason += " + unique match boost"
		}
	}
	// Optional sessions done at all were probably done on purpose.
	if best.Priority == domain.PriorityStretch {
		if isUnique {
			threshold = matchThresholdStretchUnique
		} else {
			threshold = matchThresholdStretchMulti
		}
	}

	if bestScore < threshold {
		log.Printf("INFO: matcher: no confident match for activity %d (best %.2f, need %.1f)", activity.ID, bestScore, threshold)
		return nil
	}
	log.Printf("INFO: matcher: activity %d -> session %s (score %.2f: %s)", activity.ID, best.ID, bestScore, bestReason)
	return &MatchResult{Session: best, Analysis: analysis, Score: bestScore, Reason: bestReason}
}

// MatchBatch matches a set of activities, marking each matched session
// complete immediately so two activities can never claim the same session.
func (m *matcherService) MatchBatch(plan *domain.Plan, analyses []*ActivityAnalysis, style domain.SchedulingStyle) []*MatchResult {
	var matches []*MatchResult
	for _, analysis := range analyses {
		result := m.Match(plan, analysis, style)
		if result == nil {
			continue
		}
		result.Session.MarkComplete(analysis.Activity.ID, analysis.Activity.StartDate)
		matches = append(matches, result)
	}
	return matches
}

func sessionByDate(plan *domain.Plan, date string) *domain.Session {
	for i := range plan.Weeks {
		if s := plan.Weeks[i].SessionByDate(date); s != nil {
			return s
		}
	}
	return nil
}

func scoreCandidate(session *domain.Session, analysis *ActivityAnalysis, sessionType domain.SessionType) (float64, string) {
	activity := analysis.Activity
	score := 1.0
	reasons := []string{"type + week match"}

	activityName := strings.ToLower(activity.Name)
	sessionDesc := strings.ToLower(session.Description)
	matchText := strings.TrimSpace(activityName + " " + strings.ToLower(activity.PrivateNote))

	sim := similarityRatio(matchText, sessionDesc)
	switch {
	case sim > strongSimilarity:
		score += 10.0
		reasons = append(reasons, fmt.Sprintf("strong description match (%.0f%%)", sim*100))
	case sim > moderateSimilarity:
		score += 5.0
		reasons = append(reasons, fmt.Sprintf("description match (%.0f%%)", sim*100))
	case sim > weakSimilarity:
		score += 2.0
		reasons = append(reasons, fmt.Sprintf("weak description match (%.0f%%)", sim*100))
	}

	if sessionType == domain.SessionBike {
		for _, pair := range bikeTypePairs {
			if containsAny(matchText, pair.activity) && containsAny(sessionDesc, pair.session) {
				score += 10.0
				reasons = append(reasons, "cycling type match: "+pair.activity[0])
				break
			}
		}
	}
	for _, pair := range runTypePairs {
		if containsAny(matchText, pair.activity) && containsAny(sessionDesc, pair.session) {
			score += 8.0
			reasons = append(reasons, "specific type match: "+pair.activity[0])
			break
		}
	}

	// Lap-derived interval structure helps when the activity title is
	// generic and HR does not line up with prescribed zones.
	if analysis.Intervals.HasIntervals {
		if containsAny(sessionDesc, sessionIntervalKeywords) {
			score += 4.0
			reasons = append(reasons, "interval structure match (laps)")
		} else if containsAny(activityName, activityIntervalKeywords) {
			score += 2.0
			reasons = append(reasons, "interval structure match (laps, name)")
		}
	}

	for _, group := range intensityGroups {
		if containsAny(sessionDesc, group.keywords) && containsAny(activityName, group.keywords) {
			score += 3.0
			reasons = append(reasons, group.name+" intensity match")
			break
		}
	}

	if analysis.IsRace && strings.Contains(sessionDesc, "race") {
		score += 8.0
		reasons = append(reasons, "race flag + session is race")
	}

	if sessionType == domain.SessionRun && activity.Distance > 0 {
		if target := targetDistanceMeters(sessionDesc); target > 0 {
			ratio := ratioOf(activity.Distance, target)
			switch {
			case ratio > 0.9:
				score += 6.0
				reasons = append(reasons, fmt.Sprintf("distance match (%.0f%%)", ratio*100))
			case ratio > 0.85:
				score += 4.0
				reasons = append(reasons, fmt.Sprintf("distance match (%.0f%%)", ratio*100))
			case ratio > 0.75:
				score += 2.0
				reasons = append(reasons, fmt.Sprintf("distance match (%.0f%%)", ratio*100))
			}
		}
	}

	// Duration is a weak signal and misleading for distance-based sessions
	// like "5 mile race".
	if session.DurationMinutes > 0 && activity.MovingTime > 0 && targetDistanceMeters(sessionDesc) == 0 {
		ratio := ratioOf(activity.MovingTime/60, float64(session.DurationMinutes))
		if ratio > 0.8 {
			score += 2.0
			reasons = append(reasons, fmt.Sprintf("duration match (%.0f%%)", ratio*100))
		} else if ratio > 0.5 {
			score += 1.0
		}
	}

	switch session.Priority {
	case domain.PriorityKey:
		score += 2.0
		reasons = append(reasons, "KEY session")
	case domain.PriorityImportant:
		score += 0.3
		reasons = append(reasons, "IMPORTANT session")
	case domain.PriorityStretch:
		score += 0.1
		reasons = append(reasons, "STRETCH session")
	}

	return score, strings.Join(reasons, " + ")
}

var (
	reFiveMiles = regexp.MustCompile(`5\s*miles?|5\s*mi\b`)
	reFiveK     = regexp.MustCompile(`5\s*k\b|5k\b`)
	reTenK      = regexp.MustCompile(`10\s*k\b|10k\b`)
)

// targetDistanceMeters extracts a target distance from a session
// description like "5 mile race" or "10k time trial". Returns 0 when the
// session is time-based.
func targetDistanceMeters(desc string) float64 {
	if desc == "" {
		return 0
	}
	switch {
	case reFiveMiles.MatchString(desc):
		return 8047
	case reFiveK.MatchString(desc):
		return 5000
	case reTenK.MatchString(desc):
		return 10000
	case strings.Contains(desc, "half marathon") || strings.Contains(desc, " hm ") || strings.Contains(desc, "21.1"):
		return 21100
	case strings.Contains(desc, "marathon") || strings.Contains(desc, "42.2") || strings.Contains(desc, "26.2"):
		return 42195
	}
	return 0
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func ratioOf(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return a / b
}

// similarityRatio is a Ratcliff-Obershelp similarity between two strings:
// twice the total length of matching blocks over the combined length.
func similarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	total := matchingChars(a, b)
	return 2 * float64(total) / float64(len(a)+len(b))
}

func matchingChars(a, b string) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

func longestCommonBlock(a, b string) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}
