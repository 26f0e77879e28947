package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/history"
	"github.com/faizmokh/knos/internal/queue"
	"github.com/faizmokh/knos/internal/schedule"
	"github.com/faizmokh/knos/internal/session"
)

var t0 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, text string) (Model, *schedule.Store, *history.Log) {
	t.Helper()
	dir := t.TempDir()
	clock := func() time.Time { return t0 }
	store, err := schedule.Open(filepath.Join(dir, "schedule.json"), schedule.WithClock(clock))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	hist := history.NewLog(filepath.Join(dir, "history.jsonl"))

	c, err := card.NewParser(card.DefaultOptions()).Parse("deck.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var items []queue.Item
	for _, b := range c.Drillable() {
		items = append(items, queue.Item{Block: b})
	}
	sess := session.New(store, hist, session.WithID("ui-test"))
	return NewModel(context.Background(), sess, items, clock), store, hist
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want ui.Model", next)
	}
	return model, cmd
}

func TestModelDrillsAndCommits(t *testing.T) {
	m, store, hist := newTestModel(t, "```\nfirst line\nsecond line\n```\n")

	view := m.View()
	if !strings.Contains(view, "deck.md#0") {
		t.Fatalf("view missing block id: %q", view)
	}
	if strings.Contains(view, "first line") {
		t.Fatalf("hidden line leaked into view: %q", view)
	}

	m, cmd := step(t, m, runes("y"))
	if cmd != nil {
		t.Fatalf("expected no command before the block is finished")
	}
	if !strings.Contains(m.View(), "first line") {
		t.Fatalf("revealed line should be visible")
	}

	m, cmd = step(t, m, runes("n"))
	if cmd == nil {
		t.Fatalf("expected commit command after last line")
	}
	m, _ = step(t, m, cmd())

	if m.phase != phaseResult {
		t.Fatalf("phase = %d, want result", m.phase)
	}
	if !strings.Contains(m.View(), "50%") {
		t.Fatalf("result banner missing score: %q", m.View())
	}

	entry, ok := store.Entry("deck.md#0")
	if !ok || entry.Box != 0 || !entry.Reviewed() {
		t.Fatalf("unexpected entry after commit: %+v", entry)
	}
	records, err := hist.Records(context.Background())
	if err != nil || len(records) != 1 || records[0].SessionID != "ui-test" {
		t.Fatalf("unexpected history: %+v (%v)", records, err)
	}

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.phase != phaseDone {
		t.Fatalf("expected quit after the last block, phase=%d", m.phase)
	}
	if s := m.Summary(); s.Committed != 1 || s.Passed != 0 || s.Aborted {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestModelQuitAbortsCurrentBlock(t *testing.T) {
	m, store, _ := newTestModel(t, "```\na\nb\n```\n```slots\nx :: 1\n```\n")

	m, _ = step(t, m, runes("y"))
	m, cmd := step(t, m, runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if !m.Summary().Aborted {
		t.Fatalf("summary should report abort")
	}
	if store.Len() != 0 {
		t.Fatalf("aborted block must not be recorded")
	}
}

func TestModelRendersSlots(t *testing.T) {
	m, _, _ := newTestModel(t, "```slots\nCapitals\nFrance :: Paris\nJapan :: Tokyo\n```\n")
	view := m.View()
	for _, want := range []string{"Capitals", "France", "Japan"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q: %q", want, view)
		}
	}
	if strings.Contains(view, "Paris") {
		t.Fatalf("answer leaked into view: %q", view)
	}
}

func TestModelWithNothingDue(t *testing.T) {
	m, _, _ := newTestModel(t, "no fences here\n")
	if m.Init() == nil {
		t.Fatalf("expected Init to quit immediately")
	}
	if !strings.Contains(m.View(), "Nothing to drill") {
		t.Fatalf("unexpected view: %q", m.View())
	}
}

func TestHint(t *testing.T) {
	if got := Hint("abc", 10); got != "▓▓▓" {
		t.Fatalf("Hint() = %q", got)
	}
	if got := Hint("", 10); got != "▓ (empty)" {
		t.Fatalf("Hint() = %q", got)
	}
	if got := Hint(strings.Repeat("x", 12), 10); got != strings.Repeat("▓", 10)+"..." {
		t.Fatalf("Hint() = %q", got)
	}
}
