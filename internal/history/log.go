package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/faizmokh/knos/internal/logger"
	"github.com/faizmokh/knos/internal/schedule"
)

const filePermissions = 0o644

// Record is one committed drill attempt. Records are never modified.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Identifier string    `json:"identifier"`
	Score      float64   `json:"score"`
	BoxBefore  int       `json:"box_before"`
	BoxAfter   int       `json:"box_after"`
	SessionID  string    `json:"session_id,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
}

// Passed reports whether the attempt met its threshold. A failed attempt
// always lands in box 0.
func (r Record) Passed() bool { return r.BoxAfter > 0 }

// Outcome converts the record for schedule.Rebuild.
func (r Record) Outcome() schedule.Outcome {
	return schedule.Outcome{ID: r.Identifier, Timestamp: r.Timestamp, Score: r.Score, BoxAfter: r.BoxAfter}
}

// Log is an append-only JSON lines file.
type Log struct {
	path string
	log  *logger.Logger
}

type Option func(*Log)

// WithLogger sets the logger used to report skipped lines.
func WithLogger(l *logger.Logger) Option {
	return func(h *Log) {
		if l != nil {
			h.log = l
		}
	}
}

// NewLog returns a log backed by path. The file is created on first Append.
func NewLog(path string, opts ...Option) *Log {
	h := &Log{path: path, log: logger.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path returns the backing file.
func (h *Log) Path() string { return h.path }

// Append writes rec as a single line at the end of the file.
func (h *Log) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.Timestamp = rec.Timestamp.UTC()
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, filePermissions)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	torn, err := endsMidLine(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("inspect history: %w", err)
	}
	if torn {
		// Terminate the fragment so this record starts on its own line.
		h.log.Warn("terminating torn history line", "path", h.path)
		line = append([]byte{'\n'}, line...)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append history: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync history: %w", err)
	}
	return f.Close()
}

// endsMidLine reports whether f is non-empty and its last byte is not a newline.
func endsMidLine(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// Records returns every complete record in the file.
func (h *Log) Records(ctx context.Context) ([]Record, error) {
	records, _, err := h.Scan(ctx, 0)
	return records, err
}

// Scan reads complete records starting at byte offset and returns them with
// the offset just past the last complete line. A trailing line without a
// newline is left for a later call. Lines that do not decode are skipped.
func (h *Log) Scan(ctx context.Context, offset int64) ([]Record, int64, error) {
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, offset, fmt.Errorf("seek history: %w", err)
		}
	}

	var records []Record
	reader := bufio.NewReader(f)
	for {
		if err := ctx.Err(); err != nil {
			return nil, offset, err
		}
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, offset, fmt.Errorf("read history: %w", err)
		}
		pos := offset
		offset += int64(len(line))

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil || rec.Identifier == "" {
			h.log.Warn("skipping unreadable history line", "path", h.path, "offset", pos)
			continue
		}
		records = append(records, rec)
	}
	return records, offset, nil
}

// Outcomes converts records for schedule.Rebuild.
func Outcomes(records []Record) []schedule.Outcome {
	out := make([]schedule.Outcome, 0, len(records))
	for _, r := range records {
		out = append(out, r.Outcome())
	}
	return out
}
