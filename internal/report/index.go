package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/faizmokh/knos/internal/history"
	"github.com/faizmokh/knos/internal/logger"
)

const dayLayout = "2006-01-02"

// Index is a SQLite copy of the history log for reporting queries. It can be
// deleted at any time and rebuilt by Sync.
type Index struct {
	conn *sql.DB
	loc  *time.Location
	log  *logger.Logger
}

type IndexOption func(*Index)

// WithLocation sets the zone used to bucket attempts into days.
func WithLocation(loc *time.Location) IndexOption {
	return func(ix *Index) {
		if loc != nil {
			ix.loc = loc
		}
	}
}

// WithIndexLogger sets the index logger.
func WithIndexLogger(l *logger.Logger) IndexOption {
	return func(ix *Index) {
		if l != nil {
			ix.log = l
		}
	}
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string, opts ...IndexOption) (*Index, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to index: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	ix := &Index{conn: conn, loc: time.Local, log: logger.Nop()}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.conn.Close()
}

// Sync copies records appended to h since the last call. If the log is now
// shorter than the stored position it was replaced, and the index starts over.
// It returns the number of attempts added.
func (ix *Index) Sync(ctx context.Context, h *history.Log) (int, error) {
	var position int64
	err := ix.conn.QueryRowContext(ctx, `SELECT position FROM sync_state WHERE source = ?`, h.Path()).Scan(&position)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read sync position: %w", err)
	}

	info, err := os.Stat(h.Path())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		info = nil
	case err != nil:
		return 0, fmt.Errorf("failed to stat history: %w", err)
	}
	reset := position > 0 && (info == nil || info.Size() < position)
	if reset {
		ix.log.Warn("history log shrank, rebuilding index", "path", h.Path())
		position = 0
	}

	records, next, err := h.Scan(ctx, position)
	if err != nil {
		return 0, err
	}

	tx, err := ix.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin sync: %w", err)
	}
	defer tx.Rollback()

	if reset {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attempts`); err != nil {
			return 0, fmt.Errorf("failed to clear attempts: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attempts (reviewed_at, day, identifier, score, box_before, box_after, session_id, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		ts := r.Timestamp.UTC()
		if _, err := stmt.ExecContext(ctx,
			ts.Format(time.RFC3339Nano),
			ts.In(ix.loc).Format(dayLayout),
			r.Identifier,
			r.Score,
			r.BoxBefore,
			r.BoxAfter,
			r.SessionID,
			r.Kind,
		); err != nil {
			return 0, fmt.Errorf("failed to insert attempt %s: %w", r.Identifier, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_state (source, position) VALUES (?, ?)
		ON CONFLICT(source) DO UPDATE SET position = excluded.position
	`, h.Path(), next); err != nil {
		return 0, fmt.Errorf("failed to store sync position: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sync: %w", err)
	}
	ix.log.Debug("index synced", "added", len(records), "position", next)
	return len(records), nil
}

// Day aggregates the attempts made on one calendar day.
type Day struct {
	Date     string
	Attempts int
	Passed   int
	AvgScore float64
}

// Daily returns per-day totals for the days ending at now, oldest first.
// Days without attempts are omitted.
func (ix *Index) Daily(ctx context.Context, days int, now time.Time) ([]Day, error) {
	if days < 1 {
		days = 1
	}
	since := now.In(ix.loc).AddDate(0, 0, -(days - 1)).Format(dayLayout)

	rows, err := ix.conn.QueryContext(ctx, `
		SELECT day, COUNT(*), SUM(CASE WHEN box_after > 0 THEN 1 ELSE 0 END), AVG(score)
		FROM attempts
		WHERE day >= ?
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	var out []Day
	for rows.Next() {
		var d Day
		if err := rows.Scan(&d.Date, &d.Attempts, &d.Passed, &d.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan day row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Struggle summarises a block that keeps going back to box 0.
type Struggle struct {
	ID       string
	Attempts int
	Resets   int
	AvgScore float64
}

// Struggling returns up to limit blocks with at least one reset, most resets first.
func (ix *Index) Struggling(ctx context.Context, limit int) ([]Struggle, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := ix.conn.QueryContext(ctx, `
		SELECT identifier, COUNT(*) AS attempts,
		       SUM(CASE WHEN box_after = 0 THEN 1 ELSE 0 END) AS resets,
		       AVG(score) AS avg_score
		FROM attempts
		GROUP BY identifier
		HAVING resets > 0
		ORDER BY resets DESC, avg_score ASC, identifier ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query struggling blocks: %w", err)
	}
	defer rows.Close()

	var out []Struggle
	for rows.Next() {
		var s Struggle
		if err := rows.Scan(&s.ID, &s.Attempts, &s.Resets, &s.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan struggle row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Totals counts everything in the index.
type Totals struct {
	Attempts int
	Blocks   int
	Sessions int
}

// Totals returns overall counts.
func (ix *Index) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := ix.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT identifier), COUNT(DISTINCT NULLIF(session_id, ''))
		FROM attempts
	`).Scan(&t.Attempts, &t.Blocks, &t.Sessions)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to query totals: %w", err)
	}
	return t, nil
}
