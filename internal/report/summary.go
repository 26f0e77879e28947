package report

import (
	"time"

	"github.com/faizmokh/knos/internal/schedule"
)

// Summary is the dashboard view of the schedule.
type Summary struct {
	Total          int
	Failed         int
	Overdue        int
	DueNow         int
	Upcoming       int
	NeverPracticed int
	// Due counts entries a drill would offer now, plus unregistered blocks.
	Due           int
	Boxes         [schedule.MaxBox + 1]int
	LastPracticed time.Time
}

// Summarize counts entries by status. known lists the identifiers found in
// the cards directory; those missing from entries count as never practiced.
// A nil known skips that check.
func Summarize(entries map[string]schedule.Entry, known []string, now time.Time) Summary {
	var s Summary
	for _, e := range entries {
		s.Total++
		if e.Box >= 0 && e.Box <= schedule.MaxBox {
			s.Boxes[e.Box]++
		}
		switch StatusOf(e, now) {
		case StatusNew:
			s.NeverPracticed++
		case StatusFailed:
			s.Failed++
		case StatusOverdue:
			s.Overdue++
		case StatusDue:
			s.DueNow++
		default:
			s.Upcoming++
		}
		if !e.NextDue.After(now) {
			s.Due++
		}
		if e.LastReviewed.After(s.LastPracticed) {
			s.LastPracticed = e.LastReviewed
		}
	}
	for _, id := range known {
		if _, ok := entries[id]; !ok {
			s.Total++
			s.NeverPracticed++
			s.Due++
		}
	}
	return s
}
