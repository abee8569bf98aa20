package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionType classifies a planned training unit.
type SessionType string

const (
	SessionRun        SessionType = "RUN"
	SessionBike       SessionType = "BIKE"
	SessionSwim       SessionType = "SWIM"
	SessionStrength   SessionType = "STRENGTH"
	SessionCrossTrain SessionType = "CROSS_TRAIN"
	SessionRest       SessionType = "REST"
	SessionOther      SessionType = "OTHER"
)

// Priority marks how important a session is to the plan.
type Priority string

const (
	PriorityKey       Priority = "KEY"
	PriorityImportant Priority = "IMPORTANT"
	PriorityStretch   Priority = "STRETCH"
)

// DateLayout is the calendar-date form used throughout the plan contract.
// Dates are kept as strings because ISO dates compare lexicographically,
// which the week/date lookups rely on.
const DateLayout = "2006-01-02"

// PlanSchemaVersion is the current persisted plan schema.
const PlanSchemaVersion = 2

// Session is one planned unit of training within a week.
type Session struct {
	ID              string      `bson:"id" json:"id"`
	Day             string      `bson:"day" json:"day"` // "Monday", "Anytime", ...
	Type            SessionType `bson:"type" json:"type"`
	Date            string      `bson:"date,omitempty" json:"date,omitempty"` // empty for flexible sessions
	Priority        Priority    `bson:"priority,omitempty" json:"priority,omitempty"`
	DurationMinutes int         `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	Description     string      `bson:"description" json:"description"`
	Zones           ZoneTarget  `bson:"zones,omitempty" json:"zones,omitempty"`
	Routine         string      `bson:"routine,omitempty" json:"routine,omitempty"` // strength library reference
	Scheduled       bool        `bson:"scheduled" json:"scheduled"`
	Completed       bool        `bson:"completed" json:"completed"`
	ActivityID      int64       `bson:"strava_activity_id,omitempty" json:"strava_activity_id,omitempty"`
	CompletedAt     string      `bson:"completed_at,omitempty" json:"completed_at,omitempty"` // RFC3339
}

// MarkComplete links the session to a completed activity. completedAt may
// be empty, in which case the current time is recorded.
func (s *Session) MarkComplete(activityID int64, completedAt string) {
	s.Completed = true
	s.ActivityID = activityID
	if completedAt == "" {
		completedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.CompletedAt = completedAt
}

// MarkIncomplete clears completion state.
func (s *Session) MarkIncomplete() {
	s.Completed = false
	s.ActivityID = 0
	s.CompletedAt = ""
}

func (s Session) clone() Session {
	out := s
	out.Zones = s.Zones.clone()
	return out
}

// Markdown renders the session for display surfaces.
func (s Session) Markdown() string {
	var b strings.Builder
	prefix := ""
	if s.Priority != "" {
		prefix = fmt.Sprintf("[%s] ", s.Priority)
	}
	if s.Scheduled && s.Date != "" {
		fmt.Fprintf(&b, "### %s%s (%s)\n", prefix, s.Day, s.Date)
	} else {
		fmt.Fprintf(&b, "### %s%s\n", prefix, s.Day)
	}
	if s.Type == SessionRest {
		b.WriteString("**REST**\n")
	} else if s.DurationMinutes > 0 {
		fmt.Fprintf(&b, "**%s** - %d min\n", s.Type, s.DurationMinutes)
	} else {
		fmt.Fprintf(&b, "**%s**\n", s.Type)
	}
	if s.Description != "" {
		b.WriteString(s.Description + "\n")
	}
	if !s.Zones.IsZero() {
		var parts []string
		if s.Zones.HeartRate != nil {
			if s.Zones.HeartRate.ZoneLabel != "" {
				parts = append(parts, "HR: Zone "+s.Zones.HeartRate.ZoneLabel)
			} else {
				parts = append(parts, fmt.Sprintf("HR: %d-%d bpm", s.Zones.HeartRate.MinBPM, s.Zones.HeartRate.MaxBPM))
			}
		}
		if s.Zones.Pace != nil {
			parts = append(parts, "Pace: "+s.Zones.Pace.Text)
		}
		if s.Zones.Power != nil {
			parts = append(parts, fmt.Sprintf("Power: %d W", s.Zones.Power.Watts))
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, "*Zones: %s*\n", strings.Join(parts, " | "))
		}
		if s.Zones.Notes != "" {
			fmt.Fprintf(&b, "*%s*\n", s.Zones.Notes)
		}
	}
	if s.Completed {
		when := "unknown"
		if len(s.CompletedAt) >= 10 {
			when = s.CompletedAt[:10]
		}
		fmt.Fprintf(&b, "Completed on %s\n", when)
	}
	return b.String()
}

// Week groups the sessions for one 7-day span of the plan.
type Week struct {
	WeekNumber  int       `bson:"week_number" json:"week_number"`
	StartDate   string    `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate     string    `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Sessions    []Session `bson:"sessions" json:"sessions"`
}

// SessionByID returns the session with the given id, or nil.
func (w *Week) SessionByID(id string) *Session {
	for i := range w.Sessions {
		if w.Sessions[i].ID == id {
			return &w.Sessions[i]
		}
	}
	return nil
}

// SessionByDate returns the first session locked to the given date, or nil.
// Unscheduled sessions never match.
func (w *Week) SessionByDate(date string) *Session {
	for i := range w.Sessions {
		if w.Sessions[i].Date != "" && w.Sessions[i].Date == date {
			return &w.Sessions[i]
		}
	}
	return nil
}

// Contains reports whether the date falls inside the week's span. Weeks
// without dates contain nothing.
func (w *Week) Contains(date string) bool {
	return w.StartDate != "" && w.EndDate != "" && w.StartDate <= date && date <= w.EndDate
}

// CompletionPercentage is the share of non-REST sessions completed.
func (w *Week) CompletionPercentage() float64 {
	total, done := 0, 0
	for _, s := range w.Sessions {
		if s.Type == SessionRest {
			continue
		}
		total++
		if s.Completed {
			done++
		}
	}
	if total == 0 {
		return 100.0
	}
	return float64(done) / float64(total) * 100
}

func (w Week) clone() Week {
	out := w
	out.Sessions = make([]Session, len(w.Sessions))
	for i, s := range w.Sessions {
		out.Sessions[i] = s.clone()
	}
	return out
}

// Markdown renders the week and its sessions.
func (w Week) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Week %d: %s to %s\n", w.WeekNumber, w.StartDate, w.EndDate)
	if w.Description != "" {
		fmt.Fprintf(&b, "*%s*\n", w.Description)
	}
	b.WriteString("\n")
	for _, s := range w.Sessions {
		b.WriteString(s.Markdown())
		b.WriteString("\n")
	}
	return b.String()
}

// Plan is a complete structured training plan. This struct (via JSON) is
// the persisted contract other subsystems read; field names must not drift.
type Plan struct {
	Version       int               `bson:"version" json:"version"`
	CreatedAt     string            `bson:"created_at" json:"created_at"` // RFC3339
	AthleteID     string            `bson:"athlete_id" json:"athlete_id"`
	AthleteGoal   string            `bson:"athlete_goal" json:"athlete_goal"`
	GoalDate      string            `bson:"goal_date,omitempty" json:"goal_date,omitempty"`
	GoalDistance  string            `bson:"goal_distance,omitempty" json:"goal_distance,omitempty"`
	PlanStartDate string            `bson:"plan_start_date,omitempty" json:"plan_start_date,omitempty"`
	Weeks         []Week            `bson:"weeks" json:"weeks"`
	Libraries     map[string]string `bson:"libraries,omitempty" json:"libraries,omitempty"`
}

// NewPlan builds an empty plan for an athlete with the current schema
// version and creation timestamp.
func NewPlan(athleteID string) *Plan {
	return &Plan{
		Version:   PlanSchemaVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		AthleteID: athleteID,
	}
}

// WeekByNumber returns the week with the given number, or nil.
func (p *Plan) WeekByNumber(n int) *Week {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber == n {
			return &p.Weeks[i]
		}
	}
	return nil
}

// WeekByDate returns the week whose span contains the date, or nil.
func (p *Plan) WeekByDate(date string) *Week {
	for i := range p.Weeks {
		if p.Weeks[i].Contains(date) {
			return &p.Weeks[i]
		}
	}
	return nil
}

// SessionByID searches every week for the session id.
func (p *Plan) SessionByID(id string) *Session {
	for i := range p.Weeks {
		if s := p.Weeks[i].SessionByID(id); s != nil {
			return s
		}
	}
	return nil
}

// SessionByActivity returns the session linked to an activity, or nil.
func (p *Plan) SessionByActivity(activityID int64) *Session {
	for i := range p.Weeks {
		for j := range p.Weeks[i].Sessions {
			if p.Weeks[i].Sessions[j].ActivityID == activityID {
				return &p.Weeks[i].Sessions[j]
			}
		}
	}
	return nil
}

// MarkSessionComplete marks the identified session complete. Returns false
// if no session has that id.
func (p *Plan) MarkSessionComplete(sessionID string, activityID int64, completedAt string) bool {
	s := p.SessionByID(sessionID)
	if s == nil {
		return false
	}
	s.MarkComplete(activityID, completedAt)
	return true
}

// CompletionPercentage is the share of all non-REST sessions completed.
func (p *Plan) CompletionPercentage() float64 {
	total, done := 0, 0
	for _, w := range p.Weeks {
		for _, s := range w.Sessions {
			if s.Type == SessionRest {
				continue
			}
			total++
			if s.Completed {
				done++
			}
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(done) / float64(total) * 100
}

// LastEndDate returns the latest week end date, or "" when no week has one.
func (p *Plan) LastEndDate() string {
	last := ""
	for _, w := range p.Weeks {
		if w.EndDate > last {
			last = w.EndDate
		}
	}
	return last
}

// IsFinished reports whether today is past every week's end date.
func (p *Plan) IsFinished(today string) bool {
	last := p.LastEndDate()
	return last != "" && today > last
}

// Clone returns a deep copy sharing no memory with the receiver.
func (p *Plan) Clone() *Plan {
	out := *p
	out.Weeks = make([]Week, len(p.Weeks))
	for i, w := range p.Weeks {
		out.Weeks[i] = w.clone()
	}
	if p.Libraries != nil {
		out.Libraries = make(map[string]string, len(p.Libraries))
		for k, v := range p.Libraries {
			out.Libraries[k] = v
		}
	}
	return &out
}

// ToJSON serializes the plan in the persisted contract shape.
func (p *Plan) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// PlanFromJSON decodes a plan from its serialized form. The input bytes
// are never retained; the returned plan owns all of its memory.
func PlanFromJSON(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// Markdown renders the whole plan.
func (p *Plan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Training Plan: %s\n", p.AthleteGoal)
	if p.GoalDate != "" {
		fmt.Fprintf(&b, "**Goal Date:** %s\n", p.GoalDate)
	}
	if p.GoalDistance != "" {
		fmt.Fprintf(&b, "**Goal Distance:** %s\n", p.GoalDistance)
	}
	if len(p.CreatedAt) >= 10 {
		fmt.Fprintf(&b, "**Created:** %s\n", p.CreatedAt[:10])
	}
	b.WriteString("\n")
	for _, w := range p.Weeks {
		b.WriteString(w.Markdown())
	}
	return b.String()
}

// Validate returns structural issues: non-contiguous week numbers, spans
// that are not 7 days, weeks without sessions. Issues are informational;
// an imperfect plan is still usable.
func (p *Plan) Validate() []string {
	var issues []string
	if len(p.Weeks) == 0 {
		return []string{"plan has no weeks"}
	}
	for i, w := range p.Weeks {
		if w.WeekNumber != i+1 {
			issues = append(issues, fmt.Sprintf("week numbers not contiguous from 1: position %d has week_number %d", i, w.WeekNumber))
			break
		}
	}
	for _, w := range p.Weeks {
		if len(w.Sessions) == 0 {
			issues = append(issues, fmt.Sprintf("week %d has no sessions", w.WeekNumber))
		}
		if (w.StartDate == "") != (w.EndDate == "") {
			issues = append(issues, fmt.Sprintf("week %d has only one of start/end date", w.WeekNumber))
			continue
		}
		if w.StartDate == "" {
			continue
		}
		start, err1 := time.Parse(DateLayout, w.StartDate)
		end, err2 := time.Parse(DateLayout, w.EndDate)
		if err1 != nil || err2 != nil {
			issues = append(issues, fmt.Sprintf("week %d has invalid dates", w.WeekNumber))
			continue
		}
		if end.Sub(start) != 6*24*time.Hour {
			issues = append(issues, fmt.Sprintf("week %d is not a 7-day span (%s to %s)", w.WeekNumber, w.StartDate, w.EndDate))
		}
	}
	return issues
}
