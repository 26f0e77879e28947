package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/history"
	"github.com/faizmokh/knos/internal/logger"
	"github.com/faizmokh/knos/internal/schedule"
)

// State is the lifecycle position of a Controller.
type State int

const (
	StatePending State = iota
	StateRevealing
	StateScoring
	StateComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRevealing:
		return "revealing"
	case StateScoring:
		return "scoring"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Verdict is the user's answer for the current item.
type Verdict int

const (
	VerdictKnew Verdict = iota
	VerdictMissed
	// VerdictSkip ends the block; unseen items count as not known.
	VerdictSkip
	// VerdictAbort ends the session without recording the block.
	VerdictAbort
)

func (v Verdict) String() string {
	switch v {
	case VerdictKnew:
		return "knew"
	case VerdictMissed:
		return "missed"
	case VerdictSkip:
		return "skip"
	case VerdictAbort:
		return "abort"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Mark is the judged state of one item.
type Mark int

const (
	MarkUnseen Mark = iota
	MarkKnown
	MarkMissed
)

// Scheduler is the part of schedule.Store a controller needs.
type Scheduler interface {
	Entry(id string) (schedule.Entry, bool)
	ApplyResult(id string, score, threshold float64, opts ...schedule.ApplyOption) (schedule.Entry, error)
	Revert(id string, prev schedule.Entry, existed bool) error
}

// Recorder appends committed attempts.
type Recorder interface {
	Append(ctx context.Context, rec history.Record) error
}

// Result is what a committed block changed.
type Result struct {
	ID        string
	Kind      card.Kind
	Score     float64
	Threshold float64
	Correct   int
	Total     int
	BoxBefore int
	BoxAfter  int
	NextDue   time.Time
	Reviewed  time.Time
}

// Passed reports whether the score met the block's threshold.
func (r Result) Passed() bool { return r.Score >= r.Threshold }

// Controller drives one block through reveal, scoring and commit.
type Controller struct {
	block     card.Block
	store     Scheduler
	history   Recorder
	log       *logger.Logger
	sessionID string

	state  State
	items  []Item
	marks  []Mark
	cursor int
	result Result
}

type controllerConfig struct {
	log       *logger.Logger
	sessionID string
}

type ControllerOption func(*controllerConfig)

// WithLogger sets the controller's logger.
func WithLogger(l *logger.Logger) ControllerOption {
	return func(c *controllerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSessionID tags history records with id.
func WithSessionID(id string) ControllerOption {
	return func(c *controllerConfig) { c.sessionID = id }
}

// NewController prepares block for drilling. It starts in StatePending.
func NewController(block card.Block, store Scheduler, rec Recorder, opts ...ControllerOption) (*Controller, error) {
	if block.Excluded || block.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotDrillable, block.ID)
	}
	items := strategyFor(block.Kind).items(block)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotDrillable, block.ID)
	}

	cfg := controllerConfig{log: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Controller{
		block:     block,
		store:     store,
		history:   rec,
		log:       cfg.log.With("id", block.ID),
		sessionID: cfg.sessionID,
		state:     StatePending,
		items:     items,
		marks:     make([]Mark, len(items)),
	}, nil
}

func (c *Controller) Block() card.Block { return c.block }
func (c *Controller) State() State      { return c.state }
func (c *Controller) Items() []Item     { return c.items }

// Marks returns a copy of the per-item judgements so far.
func (c *Controller) Marks() []Mark {
	return append([]Mark(nil), c.marks...)
}

// Cursor is the index of the item awaiting a verdict.
func (c *Controller) Cursor() int { return c.cursor }

// Start moves from Pending to Revealing.
func (c *Controller) Start() error {
	if c.state != StatePending {
		return fmt.Errorf("%w: start from %s", ErrInvalidState, c.state)
	}
	c.state = StateRevealing
	return nil
}

// Current returns the item awaiting a verdict.
func (c *Controller) Current() (Item, bool) {
	if c.state != StateRevealing || c.cursor >= len(c.items) {
		return Item{}, false
	}
	return c.items[c.cursor], true
}

// Submit applies a verdict to the current item. Abort moves to StateAborted
// and nothing is recorded.
func (c *Controller) Submit(v Verdict) error {
	if c.state != StateRevealing {
		return fmt.Errorf("%w: submit in %s", ErrInvalidState, c.state)
	}

	switch v {
	case VerdictKnew, VerdictMissed:
		mark := MarkKnown
		if v == VerdictMissed {
			mark = MarkMissed
		}
		c.marks[c.cursor] = mark
		c.cursor++
		if c.cursor == len(c.items) {
			c.score()
		}
	case VerdictSkip:
		for i := c.cursor; i < len(c.marks); i++ {
			c.marks[i] = MarkMissed
		}
		c.cursor = len(c.items)
		c.score()
	case VerdictAbort:
		c.state = StateAborted
		c.log.Debug("block aborted", "at", c.cursor)
	default:
		return fmt.Errorf("unknown verdict %d", int(v))
	}
	return nil
}

func (c *Controller) score() {
	known := 0
	for _, m := range c.marks {
		if m == MarkKnown {
			known++
		}
	}
	total := len(c.items)
	c.result = Result{
		ID:        c.block.ID,
		Kind:      c.block.Kind,
		Score:     float64(100*known) / float64(total),
		Threshold: c.block.Kind.Threshold(),
		Correct:   known,
		Total:     total,
	}
	c.state = StateScoring
}

// Score returns the computed score once the block has reached Scoring.
func (c *Controller) Score() (float64, bool) {
	if c.state != StateScoring && c.state != StateComplete {
		return 0, false
	}
	return c.result.Score, true
}

// Commit applies the score to the schedule and appends history. Both happen or
// neither does: if the history append fails the schedule entry is reverted.
// On failure the controller stays in Scoring so Commit can be retried.
func (c *Controller) Commit(ctx context.Context) (Result, error) {
	if c.state != StateScoring {
		return Result{}, fmt.Errorf("%w: commit in %s", ErrInvalidState, c.state)
	}

	prev, existed := c.store.Entry(c.block.ID)
	entry, err := c.store.ApplyResult(c.block.ID, c.result.Score, c.result.Threshold, schedule.WithFingerprint(c.block.Fingerprint))
	if err != nil {
		return Result{}, fmt.Errorf("apply result: %w", err)
	}

	rec := history.Record{
		Timestamp:  entry.LastReviewed,
		Identifier: c.block.ID,
		Score:      c.result.Score,
		BoxBefore:  prev.Box,
		BoxAfter:   entry.Box,
		SessionID:  c.sessionID,
		Kind:       c.block.Kind.String(),
		Correct:    c.result.Correct,
		Total:      c.result.Total,
	}
	if err := c.history.Append(ctx, rec); err != nil {
		if rerr := c.store.Revert(c.block.ID, prev, existed); rerr != nil {
			c.log.Error("revert after history failure", "error", rerr)
			return Result{}, errors.Join(fmt.Errorf("append history: %w", err), fmt.Errorf("revert schedule: %w", rerr))
		}
		return Result{}, fmt.Errorf("append history: %w", err)
	}

	c.result.BoxBefore = prev.Box
	c.result.BoxAfter = entry.Box
	c.result.NextDue = entry.NextDue
	c.result.Reviewed = entry.LastReviewed
	c.state = StateComplete
	c.log.Info("block committed", "score", c.result.Score, "box_before", prev.Box, "box_after", entry.Box)
	return c.result, nil
}
