package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/logger"
)

// VerdictSource supplies the user's verdict for each revealed item. It is the
// only place a drill waits.
type VerdictSource interface {
	Verdict(ctx context.Context, block card.Block, item Item) (Verdict, error)
}

// VerdictFunc adapts a function to VerdictSource.
type VerdictFunc func(ctx context.Context, block card.Block, item Item) (Verdict, error)

func (f VerdictFunc) Verdict(ctx context.Context, block card.Block, item Item) (Verdict, error) {
	return f(ctx, block, item)
}

// Run drills a pending controller to completion, asking src for every verdict.
// It returns ErrAborted when the user aborts.
func Run(ctx context.Context, c *Controller, src VerdictSource) (Result, error) {
	if err := c.Start(); err != nil {
		return Result{}, err
	}
	for c.State() == StateRevealing {
		item, _ := c.Current()
		v, err := src.Verdict(ctx, c.Block(), item)
		if err != nil {
			return Result{}, err
		}
		if err := c.Submit(v); err != nil {
			return Result{}, err
		}
	}
	if c.State() == StateAborted {
		return Result{}, ErrAborted
	}
	return c.Commit(ctx)
}

// Summary totals a multi-block session.
type Summary struct {
	SessionID string
	Attempted int
	Committed int
	Passed    int
	Aborted   bool
	Results   []Result
}

// Session groups drills under one identifier recorded in history.
type Session struct {
	id      string
	store   Scheduler
	history Recorder
	log     *logger.Logger
}

type Option func(*Session)

// WithSessionLogger sets the session's logger.
func WithSessionLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithID overrides the generated session identifier.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New starts a session with a fresh identifier.
func New(store Scheduler, rec Recorder, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		store:   store,
		history: rec,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.id)
	return s
}

func (s *Session) ID() string { return s.id }

// Controller returns a pending controller for block bound to this session.
func (s *Session) Controller(block card.Block) (*Controller, error) {
	return NewController(block, s.store, s.history, WithLogger(s.log), WithSessionID(s.id))
}

// Drill runs blocks in order. Each block is committed as soon as it is scored.
// An abort stops the loop and is reported in the summary, not as an error.
// onResult, when set, is called after every commit.
func (s *Session) Drill(ctx context.Context, blocks []card.Block, src VerdictSource, onResult func(card.Block, Result)) (Summary, error) {
	summary := Summary{SessionID: s.id}
	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		c, err := s.Controller(block)
		if err != nil {
			s.log.Warn("skipping block", "id", block.ID, "error", err)
			continue
		}
		summary.Attempted++

		result, err := Run(ctx, c, src)
		if errors.Is(err, ErrAborted) {
			summary.Aborted = true
			s.log.Info("session aborted", "committed", summary.Committed)
			return summary, nil
		}
		if err != nil {
			return summary, err
		}

		summary.Committed++
		if result.Passed() {
			summary.Passed++
		}
		summary.Results = append(summary.Results, result)
		if onResult != nil {
			onResult(block, result)
		}
	}
	s.log.Info("session finished", "committed", summary.Committed, "passed", summary.Passed)
	return summary, nil
}
