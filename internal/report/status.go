package report

import (
	"fmt"
	"time"

	"github.com/faizmokh/knos/internal/schedule"
)

// Status classifies an entry relative to now.
type Status string

const (
	StatusNew      Status = "new"
	StatusFailed   Status = "failed"
	StatusOverdue  Status = "overdue"
	StatusDue      Status = "due"
	StatusUpcoming Status = "upcoming"
)

// OverdueAfter is how long past its due time an entry must be to count as overdue.
const OverdueAfter = time.Hour

// StatusOf classifies e at now.
func StatusOf(e schedule.Entry, now time.Time) Status {
	switch {
	case e.Box == 0 && !e.Reviewed():
		return StatusNew
	case e.Box == 0:
		return StatusFailed
	case e.NextDue.After(now):
		return StatusUpcoming
	case now.Sub(e.NextDue) > OverdueAfter:
		return StatusOverdue
	default:
		return StatusDue
	}
}

// DueInfo describes e for listings: "never practiced", "failed 3h ago",
// "overdue 2d 3h", "due now" or "in 45m".
func DueInfo(e schedule.Entry, now time.Time) string {
	switch StatusOf(e, now) {
	case StatusNew:
		return "never practiced"
	case StatusFailed:
		return "failed " + FormatDelta(now.Sub(e.LastReviewed)) + " ago"
	case StatusOverdue:
		return "overdue " + FormatDelta(now.Sub(e.NextDue))
	case StatusDue:
		return "due now"
	default:
		return "in " + FormatDelta(e.NextDue.Sub(now))
	}
}

// FormatDelta renders d compactly with at most two units: "2d 3h", "5h",
// "4h 10m", "45m". Anything under a minute, or negative, is "now".
func FormatDelta(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	total := int(d / time.Minute)
	days := total / (24 * 60)
	hours := (total % (24 * 60)) / 60
	minutes := total % 60

	switch {
	case days > 0 && hours == 0:
		return fmt.Sprintf("%dd", days)
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0 && minutes == 0:
		return fmt.Sprintf("%dh", hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
