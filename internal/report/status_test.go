package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faizmokh/knos/internal/schedule"
)

var t0 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Hour, "now"},
		{30 * time.Second, "now"},
		{45 * time.Minute, "45m"},
		{5 * time.Hour, "5h"},
		{4*time.Hour + 10*time.Minute, "4h 10m"},
		{48 * time.Hour, "2d"},
		{51*time.Hour + 20*time.Minute, "2d 3h"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatDelta(tc.in), "FormatDelta(%s)", tc.in)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name  string
		entry schedule.Entry
		want  Status
	}{
		{"new", schedule.Entry{Box: 0, NextDue: t0}, StatusNew},
		{"failed", schedule.Entry{Box: 0, NextDue: t0.Add(30 * time.Minute), LastReviewed: t0.Add(-30 * time.Minute)}, StatusFailed},
		{"due within the hour", schedule.Entry{Box: 2, NextDue: t0.Add(-59 * time.Minute), LastReviewed: t0.Add(-48 * time.Hour)}, StatusDue},
		{"overdue", schedule.Entry{Box: 2, NextDue: t0.Add(-2 * time.Hour), LastReviewed: t0.Add(-48 * time.Hour)}, StatusOverdue},
		{"upcoming", schedule.Entry{Box: 4, NextDue: t0.Add(time.Hour), LastReviewed: t0}, StatusUpcoming},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusOf(tc.entry, t0))
		})
	}
}

func TestDueInfo(t *testing.T) {
	assert.Equal(t, "never practiced", DueInfo(schedule.Entry{NextDue: t0}, t0))
	assert.Equal(t, "failed 3h ago", DueInfo(schedule.Entry{Box: 0, NextDue: t0, LastReviewed: t0.Add(-3 * time.Hour)}, t0))
	assert.Equal(t, "overdue 2d 3h", DueInfo(schedule.Entry{Box: 3, NextDue: t0.Add(-51 * time.Hour), LastReviewed: t0.Add(-100 * time.Hour)}, t0))
	assert.Equal(t, "in 4h", DueInfo(schedule.Entry{Box: 1, NextDue: t0.Add(4 * time.Hour), LastReviewed: t0}, t0))
}

func TestSummarize(t *testing.T) {
	entries := map[string]schedule.Entry{
		"new":      {Box: 0, NextDue: t0.Add(-time.Minute)},
		"failed":   {Box: 0, NextDue: t0.Add(30 * time.Minute), LastReviewed: t0.Add(-30 * time.Minute)},
		"overdue":  {Box: 3, NextDue: t0.Add(-5 * time.Hour), LastReviewed: t0.Add(-80 * time.Hour)},
		"due":      {Box: 1, NextDue: t0.Add(-10 * time.Minute), LastReviewed: t0.Add(-250 * time.Minute)},
		"upcoming": {Box: 7, NextDue: t0.Add(24 * time.Hour), LastReviewed: t0.Add(-time.Minute)},
	}
	s := Summarize(entries, []string{"new", "failed", "unregistered"}, t0)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 1, s.DueNow)
	assert.Equal(t, 1, s.Upcoming)
	assert.Equal(t, 2, s.NeverPracticed)
	assert.Equal(t, 4, s.Due)
	assert.Equal(t, 2, s.Boxes[0])
	assert.Equal(t, 1, s.Boxes[7])
	assert.True(t, s.LastPracticed.Equal(t0.Add(-time.Minute)))
}
