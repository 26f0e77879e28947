package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/faizmokh/knos/internal/files"
	"github.com/faizmokh/knos/internal/logger"
)

// Entry is the review state of one drill block.
type Entry struct {
	Box          int       `json:"box" validate:"min=0,max=7"`
	NextDue      time.Time `json:"next_due"`
	LastScore    float64   `json:"last_score" validate:"min=0,max=100"`
	LastReviewed time.Time `json:"last_reviewed,omitzero"`
	// Fingerprint is the content hash the block had when last reviewed.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Reviewed reports whether the entry has been drilled at least once.
func (e Entry) Reviewed() bool { return !e.LastReviewed.IsZero() }

// Store is the in-memory schedule map backed by a single JSON file.
// It is not safe for concurrent use.
type Store struct {
	path    string
	entries map[string]Entry
	log     *logger.Logger
	now     func() time.Time
	write   func(string, []byte) error
}

type Option func(*Store)

// WithLogger sets the logger used for persistence events.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// withWriter replaces the file writer used by Save.
func withWriter(write func(string, []byte) error) Option {
	return func(s *Store) {
		if write != nil {
			s.write = write
		}
	}
}

func newStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		log:     logger.Nop(),
		now:     time.Now,
		write:   files.WriteFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var validate = validator.New()

// Open loads the schedule at path. A missing or empty file yields an empty
// store. Anything that fails to decode or validate is a *CorruptionError.
func Open(path string, opts ...Option) (*Store, error) {
	s := newStore(path, opts...)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CorruptionError{Path: path, Err: err}
	}
	if entries == nil {
		return nil, &CorruptionError{Path: path, Err: errors.New("schedule is not a JSON object")}
	}
	for id, e := range entries {
		if id == "" {
			return nil, &CorruptionError{Path: path, Err: errors.New("empty identifier")}
		}
		if err := validate.Struct(e); err != nil {
			return nil, &CorruptionError{Path: path, ID: id, Err: err}
		}
		if e.NextDue.IsZero() {
			return nil, &CorruptionError{Path: path, ID: id, Err: errors.New("missing next_due")}
		}
	}
	s.entries = entries
	s.log.Debug("schedule loaded", "path", path, "entries", len(s.entries))
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Entry returns the state for id.
func (s *Store) Entry(id string) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Entries returns a copy of every entry.
func (s *Store) Entries() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

// Register creates box-0 entries, due now, for identifiers the store has not
// seen. Existing entries are untouched. It returns how many were created and
// does not save.
func (s *Store) Register(ids []string) int {
	now := s.now().UTC()
	created := 0
	for _, id := range ids {
		if _, ok := s.entries[id]; ok || id == "" {
			continue
		}
		s.entries[id] = Entry{Box: 0, NextDue: now}
		created++
	}
	return created
}

// GetDue returns identifiers whose next review is at or before now: lower
// boxes first, then the most overdue, then by identifier.
func (s *Store) GetDue(now time.Time) []string {
	var due []string
	for id, e := range s.entries {
		if !e.NextDue.After(now) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := s.entries[due[i]], s.entries[due[j]]
		if a.Box != b.Box {
			return a.Box < b.Box
		}
		if !a.NextDue.Equal(b.NextDue) {
			return a.NextDue.Before(b.NextDue)
		}
		return due[i] < due[j]
	})
	return due
}

type applyConfig struct {
	fingerprint string
}

// ApplyOption adjusts a single ApplyResult call.
type ApplyOption func(*applyConfig)

// WithFingerprint records the content hash the block had when drilled.
func WithFingerprint(fp string) ApplyOption {
	return func(c *applyConfig) { c.fingerprint = fp }
}

// ApplyResult moves id to its next box for score against threshold and
// persists the store. Unknown identifiers start from box 0. On a failed write
// the in-memory entry is restored and a *PersistError is returned.
func (s *Store) ApplyResult(id string, score, threshold float64, opts ...ApplyOption) (Entry, error) {
	if score < 0 || score > 100 {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	cfg := applyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	now := s.now().UTC()
	prev, existed := s.entries[id]

	next := Entry{
		Box:          NextBox(prev.Box, score, threshold),
		LastScore:    score,
		LastReviewed: now,
		Fingerprint:  prev.Fingerprint,
	}
	next.NextDue = now.Add(Interval(next.Box))
	if cfg.fingerprint != "" {
		next.Fingerprint = cfg.fingerprint
	}

	s.entries[id] = next
	if err := s.Save(); err != nil {
		s.restore(id, prev, existed)
		return Entry{}, err
	}
	s.log.Debug("result applied", "id", id, "score", score, "box_before", prev.Box, "box_after", next.Box)
	return next, nil
}

// Revert puts id back to prev (or removes it when it did not exist) and saves.
func (s *Store) Revert(id string, prev Entry, existed bool) error {
	current, had := s.entries[id]
	s.restore(id, prev, existed)
	if err := s.Save(); err != nil {
		s.restore(id, current, had)
		return err
	}
	return nil
}

func (s *Store) restore(id string, prev Entry, existed bool) {
	if existed {
		s.entries[id] = prev
		return
	}
	delete(s.entries, id)
}

// Save writes the whole map atomically, retrying once.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	data = append(data, '\n')

	err = s.write(s.path, data)
	if err == nil {
		return nil
	}
	s.log.Warn("schedule write failed, retrying", "path", s.path, "error", err)
	if err = s.write(s.path, data); err != nil {
		s.log.Error("schedule write failed", "path", s.path, "error", err)
		return &PersistError{Path: s.path, Err: err}
	}
	return nil
}

// Orphans returns, sorted, the identifiers in the store that are absent from known.
func (s *Store) Orphans(known []string) []string {
	set := make(map[string]struct{}, len(known))
	for _, id := range known {
		set[id] = struct{}{}
	}
	var orphans []string
	for id := range s.entries {
		if _, ok := set[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// Remove deletes ids and saves. It returns how many entries were removed.
func (s *Store) Remove(ids []string) (int, error) {
	removed := make(map[string]Entry)
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			removed[id] = e
			delete(s.entries, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := s.Save(); err != nil {
		for id, e := range removed {
			s.entries[id] = e
		}
		return 0, err
	}
	s.log.Info("schedule entries removed", "count", len(removed))
	return len(removed), nil
}
