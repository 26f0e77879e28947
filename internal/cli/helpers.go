package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/report"
	"github.com/faizmokh/knos/internal/schedule"
	"github.com/faizmokh/knos/internal/session"
)

func printWarnings(cmd *cobra.Command, warnings []card.Warning) {
	out := cmd.ErrOrStderr()
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score)
}

func formatEntry(id string, e schedule.Entry, now time.Time) string {
	builder := strings.Builder{}
	builder.Grow(48 + len(id))

	builder.WriteString("[box ")
	builder.WriteString(fmt.Sprint(e.Box))
	builder.WriteString("] ")
	builder.WriteString(id)
	builder.WriteString(" (")
	if e.Reviewed() {
		builder.WriteString("last: ")
		builder.WriteString(formatScore(e.LastScore))
		builder.WriteString(", ")
	}
	builder.WriteString(report.DueInfo(e, now))
	builder.WriteString(")")

	return builder.String()
}

func formatResult(r session.Result, now time.Time) string {
	verdict := "reset"
	if r.Passed() {
		verdict = "advanced"
	}
	return fmt.Sprintf("%s: %s (%d/%d) %s, box %d -> %d, next due in %s",
		r.ID, formatScore(r.Score), r.Correct, r.Total, verdict,
		r.BoxBefore, r.BoxAfter, report.FormatDelta(r.NextDue.Sub(now)))
}

func formatSummary(w io.Writer, s session.Summary) {
	switch {
	case s.Attempted == 0:
		fmt.Fprintln(w, "No blocks drilled.")
	case s.Aborted:
		fmt.Fprintf(w, "Session aborted: %d of %d block%s committed, %d passed.\n",
			s.Committed, s.Attempted, plural(s.Attempted), s.Passed)
	default:
		fmt.Fprintf(w, "Session complete: %d block%s, %d passed.\n",
			s.Committed, plural(s.Committed), s.Passed)
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
