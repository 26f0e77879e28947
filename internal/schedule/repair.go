package schedule

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/faizmokh/knos/internal/files"
)

// Outcome is one past review as recorded in the history log.
type Outcome struct {
	ID        string
	Timestamp time.Time
	Score     float64
	BoxAfter  int
}

// RepairResult describes what Rebuild did.
type RepairResult struct {
	// Backup is where the previous file was moved. Empty when there was none.
	Backup   string
	Restored int
}

// Rebuild replaces the schedule at path with one reconstructed from history.
// The existing file, if any, is copied to <path>.corrupt-<timestamp> before the
// new map atomically replaces it, so path always holds one or the other. For each identifier the latest outcome wins. ids lists blocks that
// currently exist; those without history are registered as new.
func Rebuild(path string, outcomes []Outcome, ids []string, opts ...Option) (*Store, RepairResult, error) {
	s := newStore(path, opts...)
	var result RepairResult

	if old, err := os.ReadFile(path); err == nil {
		backup := fmt.Sprintf("%s.corrupt-%s", path, s.now().UTC().Format("20060102T150405Z"))
		if err := files.WriteFileAtomic(backup, old); err != nil {
			return nil, result, fmt.Errorf("back up schedule: %w", err)
		}
		result.Backup = backup
		s.log.Warn("schedule backed up", "path", path, "backup", backup)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, result, fmt.Errorf("read schedule: %w", err)
	}

	for _, o := range outcomes {
		if o.ID == "" {
			continue
		}
		box := min(max(o.BoxAfter, 0), MaxBox)
		ts := o.Timestamp.UTC()
		if prev, ok := s.entries[o.ID]; ok && prev.LastReviewed.After(ts) {
			continue
		}
		s.entries[o.ID] = Entry{
			Box:          box,
			NextDue:      ts.Add(Interval(box)),
			LastScore:    min(max(o.Score, 0), 100),
			LastReviewed: ts,
		}
	}
	result.Restored = len(s.entries)
	s.Register(ids)

	if err := s.Save(); err != nil {
		return nil, result, err
	}
	s.log.Info("schedule rebuilt from history", "path", path, "restored", result.Restored, "entries", len(s.entries))
	return s, result, nil
}
