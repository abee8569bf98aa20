package service

import (
	"log"
	"sort"
	"time"

	"alcyxob/coach-engine/internal/domain"
)

// EvolutionService merges a regenerated plan with the plan it replaces so
// that training history is never lost: past weeks are kept as they were
// and completed sessions stay completed.
type EvolutionService interface {
	// MergePastWeeks carries weeks that already finished from the current
	// plan into the new one, renumbering the new weeks to follow them.
	MergePastWeeks(current, next *domain.Plan, today string) *domain.Plan
	// CarryCompletion re-applies completion state from the old plan onto
	// sessions in the new plan with the same id. Returns the number of
	// sessions restored.
	CarryCompletion(old, next *domain.Plan) int
	// PastWeeks returns the weeks of a plan whose end date is before today.
	PastWeeks(plan *domain.Plan, today string) []domain.Week
}

type evolutionService struct{}

// NewEvolutionService creates a new instance of evolutionService.
func NewEvolutionService() EvolutionService {
	return &evolutionService{}
}

func (s *evolutionService) PastWeeks(plan *domain.Plan, today string) []domain.Week {
	if plan == nil {
		return nil
	}
	copied := plan.Clone()
	var past []domain.Week
	for _, week := range copied.Weeks {
		if week.EndDate == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, week.EndDate); err != nil {
			continue
		}
		if week.EndDate < today {
			past = append(past, week)
			log.Printf("INFO: evolution: archived past week %d (ended %s)", week.WeekNumber, week.EndDate)
		}
	}
	return past
}

func (s *evolutionService) MergePastWeeks(current, next *domain.Plan, today string) *domain.Plan {
	if next == nil || len(next.Weeks) == 0 {
		return next
	}
	past := s.PastWeeks(current, today)
	if len(past) == 0 {
		return next
	}

	sort.Slice(past, func(i, j int) bool { return past[i].WeekNumber < past[j].WeekNumber })
	maxPast := past[len(past)-1].WeekNumber

	newWeeks := next.Weeks
	minNew := newWeeks[0].WeekNumber
	for _, w := range newWeeks[1:] {
		if w.WeekNumber < minNew {
			minNew = w.WeekNumber
		}
	}

	// A regenerated plan that restarts at week 1 covers the same period as
	// the archived weeks, so the overlapping new weeks are dropped and the
	// remainder renumbered to follow the history.
	if minNew == 1 {
		drop := len(past)
		log.Printf("INFO: evolution: new plan restarts at week 1 with %d past week(s) kept, dropping first %d new week(s)", len(past), drop)
		if drop >= len(newWeeks) {
			log.Printf("WARN: evolution: new plan had only past weeks, keeping archived weeks only")
			newWeeks = nil
		} else {
			newWeeks = newWeeks[drop:]
			for i := range newWeeks {
				newWeeks[i].WeekNumber = maxPast + 1 + i
			}
		}
	}

	// The new plan's version of a week number wins over the archive.
	existing := make(map[int]bool, len(newWeeks))
	for _, w := range newWeeks {
		existing[w.WeekNumber] = true
	}
	var kept []domain.Week
	for _, w := range past {
		if existing[w.WeekNumber] {
			log.Printf("WARN: evolution: skipping archived week %d, new plan already has it", w.WeekNumber)
			continue
		}
		kept = append(kept, w)
	}

	next.Weeks = append(kept, newWeeks...)
	for i := range next.Weeks {
		next.Weeks[i].WeekNumber = 1 + i
	}
	log.Printf("INFO: evolution: merged %d archived week(s), final plan has %d weeks", len(kept), len(next.Weeks))
	return next
}

func (s *evolutionService) CarryCompletion(old, next *domain.Plan) int {
	if old == nil || next == nil {
		return 0
	}
	type done struct {
		activityID  int64
		completedAt string
	}
	completed := make(map[string]done)
	for i := range old.Weeks {
		for j := range old.Weeks[i].Sessions {
			sess := &old.Weeks[i].Sessions[j]
			if sess.Completed {
				completed[sess.ID] = done{sess.ActivityID, sess.CompletedAt}
			}
		}
	}
	if len(completed) == 0 {
		return 0
	}

	restored := 0
	for i := range next.Weeks {
		for j := range next.Weeks[i].Sessions {
			sess := &next.Weeks[i].Sessions[j]
			prev, ok := completed[sess.ID]
			if !ok {
				continue
			}
			sess.Completed = true
			if prev.activityID != 0 {
				sess.ActivityID = prev.activityID
			}
			if prev.completedAt != "" {
				sess.CompletedAt = prev.completedAt
			}
			restored++
		}
	}
	if restored > 0 {
		log.Printf("INFO: evolution: restored %d completed session(s)", restored)
	}
	return restored
}
