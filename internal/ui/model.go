package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/queue"
	"github.com/faizmokh/knos/internal/report"
	"github.com/faizmokh/knos/internal/session"
)

// Model owns Bubble Tea state for a drill over a due queue.
type Model struct {
	ctx   context.Context
	sess  *session.Session
	items []queue.Item
	now   func() time.Time

	index int
	ctrl  *session.Controller
	phase phase
	last  session.Result

	summary session.Summary
	err     error

	keys     keyMap
	help     help.Model
	progress progress.Model

	statusLine string
	errorLine  string
}

type phase uint8

const (
	phaseDrilling phase = iota
	phaseCommitting
	phaseCommitFailed
	phaseResult
	phaseDone
)

type commitResultMsg struct {
	result session.Result
	err    error
}

// NewModel seeds a Bubble Tea model that drills items in order.
func NewModel(ctx context.Context, sess *session.Session, items []queue.Item, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		ctx:      ctx,
		sess:     sess,
		items:    items,
		now:      now,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		summary:  session.Summary{SessionID: sess.ID()},
		index:    -1,
	}
	return m.advance()
}

// Summary reports what the drill committed.
func (m Model) Summary() session.Summary { return m.summary }

// Err is the error that ended the drill, if any.
func (m Model) Err() error { return m.err }

// Init has nothing to load; the queue is built before the program starts.
func (m Model) Init() tea.Cmd {
	if m.phase == phaseDone {
		return tea.Quit
	}
	return nil
}

// Update wires TUI state transitions from user input and async commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-10, 10), 60)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case commitResultMsg:
		return m.handleCommitResult(msg)
	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	switch m.phase {
	case phaseDrilling:
		switch {
		case key.Matches(msg, m.keys.Knew):
			return m.submit(session.VerdictKnew)
		case key.Matches(msg, m.keys.Missed):
			return m.submit(session.VerdictMissed)
		case key.Matches(msg, m.keys.Skip):
			return m.submit(session.VerdictSkip)
		}
	case phaseCommitFailed:
		if key.Matches(msg, m.keys.Retry) {
			m.phase = phaseCommitting
			m.errorLine = ""
			m.statusLine = "Saving..."
			return m, m.commitCmd()
		}
	case phaseResult:
		if key.Matches(msg, m.keys.Next) {
			m = m.advance()
			if m.phase == phaseDone {
				return m, tea.Quit
			}
			return m, nil
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.phase == phaseCommitting {
		// The save in flight decides the block's fate; wait for it.
		m.statusLine = "Saving, please wait..."
		return m, nil
	}
	if m.ctrl != nil && m.ctrl.State() == session.StateRevealing {
		_ = m.ctrl.Submit(session.VerdictAbort)
		m.summary.Aborted = true
	}
	if m.phase == phaseCommitFailed {
		m.summary.Aborted = true
	}
	m.phase = phaseDone
	return m, tea.Quit
}

func (m Model) submit(v session.Verdict) (tea.Model, tea.Cmd) {
	if err := m.ctrl.Submit(v); err != nil {
		m.errorLine = err.Error()
		return m, nil
	}
	if m.ctrl.State() != session.StateScoring {
		return m, nil
	}
	m.phase = phaseCommitting
	m.keys = m.keys.reviewing()
	m.keys.Next.SetEnabled(false)
	m.statusLine = "Saving..."
	return m, m.commitCmd()
}

func (m Model) commitCmd() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		result, err := ctrl.Commit(ctx)
		return commitResultMsg{result: result, err: err}
	}
}

func (m Model) handleCommitResult(msg commitResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.phase = phaseCommitFailed
		m.keys = m.keys.failed()
		m.errorLine = fmt.Sprintf("Could not save result: %v", msg.err)
		m.statusLine = ""
		return m, nil
	}

	m.last = msg.result
	m.summary.Committed++
	if msg.result.Passed() {
		m.summary.Passed++
	}
	m.summary.Results = append(m.summary.Results, msg.result)
	m.phase = phaseResult
	m.keys = m.keys.reviewing()
	m.errorLine = ""
	m.statusLine = ""
	return m, nil
}

// advance moves to the next drillable item, or to phaseDone.
func (m Model) advance() Model {
	for m.index+1 < len(m.items) {
		m.index++
		ctrl, err := m.sess.Controller(m.items[m.index].Block)
		if err != nil {
			continue
		}
		if err := ctrl.Start(); err != nil {
			continue
		}
		m.ctrl = ctrl
		m.phase = phaseDrilling
		m.keys = m.keys.drilling()
		m.summary.Attempted++
		m.statusLine = ""
		return m
	}
	m.ctrl = nil
	m.phase = phaseDone
	return m
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	curStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	promptStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	bannerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View renders the frame.
func (m Model) View() string {
	var b strings.Builder

	if m.phase == phaseDone || m.ctrl == nil {
		b.WriteString(m.summaryLine())
		b.WriteByte('\n')
		return b.String()
	}

	block := m.ctrl.Block()
	item := m.items[m.index]
	title := fmt.Sprintf("Block %d of %d  %s  (%s, box %d)", m.index+1, len(m.items), block.ID, block.Kind, item.Entry.Box)
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')
	if item.Changed {
		b.WriteString(curStyle.Render("content changed since last review"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if block.Kind == card.KindSlots {
		b.WriteString(m.renderSlots(block))
	} else {
		b.WriteString(m.renderLines(block))
	}

	b.WriteByte('\n')
	b.WriteString(m.progress.ViewAs(float64(m.ctrl.Cursor()) / float64(len(m.ctrl.Items()))))
	b.WriteByte('\n')

	if m.phase == phaseResult {
		b.WriteByte('\n')
		b.WriteString(bannerStyle.Render(m.resultLine()))
		b.WriteByte('\n')
	}

	if m.errorLine != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("! " + m.errorLine))
		b.WriteByte('\n')
	} else if m.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(m.statusLine)
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteByte('\n')

	return b.String()
}

func (m Model) renderLines(block card.Block) string {
	var b strings.Builder
	marks := m.ctrl.Marks()
	cursor := m.ctrl.Cursor()
	revealing := m.ctrl.State() == session.StateRevealing

	for i, line := range block.Lines {
		no := dimStyle.Render(fmt.Sprintf("%3d", i+1))
		switch {
		case i < len(marks) && marks[i] != session.MarkUnseen:
			b.WriteString(fmt.Sprintf("%s %s %s\n", markGlyph(marks[i]), no, line))
		case i == cursor && revealing:
			b.WriteString(fmt.Sprintf("%s %s %s\n", curStyle.Render("?"), no, curStyle.Render(Hint(line, LineHintLimit))))
		default:
			b.WriteString(fmt.Sprintf("  %s %s\n", no, dimStyle.Render(mask(line, LineHintLimit, "░"))))
		}
	}
	return b.String()
}

func (m Model) renderSlots(block card.Block) string {
	var b strings.Builder
	marks := m.ctrl.Marks()
	cursor := m.ctrl.Cursor()
	revealing := m.ctrl.State() == session.StateRevealing

	byLine := make(map[int]int, len(block.Slots))
	for i, s := range block.Slots {
		byLine[s.Line] = i
	}

	for lineNo, line := range block.Lines {
		i, drilled := byLine[lineNo]
		if !drilled {
			if strings.TrimSpace(line) != "" {
				b.WriteString("      " + headerStyle.Render(line) + "\n")
			}
			continue
		}
		slot := block.Slots[i]
		no := dimStyle.Render(fmt.Sprintf("%3d", i+1))
		switch {
		case marks[i] != session.MarkUnseen:
			style := okStyle
			if marks[i] == session.MarkMissed {
				style = badStyle
			}
			b.WriteString(fmt.Sprintf("%s %s %s :: %s\n", markGlyph(marks[i]), no, promptStyle.Render(slot.Prompt), style.Render(slot.Answer)))
		case i == cursor && revealing:
			b.WriteString(fmt.Sprintf("%s %s %s :: %s\n", curStyle.Render("?"), no, curStyle.Bold(true).Render(slot.Prompt), curStyle.Render(Hint(slot.Answer, SlotHintLimit))))
		default:
			b.WriteString(fmt.Sprintf("  %s %s :: %s\n", no, slot.Prompt, dimStyle.Render(mask(slot.Answer, SlotHintLimit, "░"))))
		}
	}
	return b.String()
}

func markGlyph(mark session.Mark) string {
	if mark == session.MarkKnown {
		return okStyle.Render("✓")
	}
	return badStyle.Render("✗")
}

func (m Model) resultLine() string {
	r := m.last
	style := badStyle
	verdict := "back to box 0"
	if r.Passed() {
		style = okStyle
		verdict = fmt.Sprintf("box %d -> %d", r.BoxBefore, r.BoxAfter)
	}
	line := fmt.Sprintf("%.0f%% (%d/%d)  %s  next in %s", r.Score, r.Correct, r.Total, verdict, report.FormatDelta(r.NextDue.Sub(m.now())))
	if m.index == len(m.items)-1 {
		line += "  |  last block"
	}
	return style.Render(line)
}

func (m Model) summaryLine() string {
	s := m.summary
	switch {
	case s.Attempted == 0:
		return "Nothing to drill."
	case s.Aborted:
		return fmt.Sprintf("Aborted: %d of %d block%s committed.", s.Committed, s.Attempted, plural(s.Attempted))
	default:
		return fmt.Sprintf("Done: %d block%s, %d passed.", s.Committed, plural(s.Committed), s.Passed)
	}
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
