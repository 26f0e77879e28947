package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/report"
	"github.com/faizmokh/knos/internal/schedule"
)

// Scanner lists the cards on disk.
type Scanner interface {
	Scan(ctx context.Context) (card.ScanResult, error)
}

// Store is the part of schedule.Store the queue needs.
type Store interface {
	Register(ids []string) int
	Save() error
	GetDue(now time.Time) []string
	Entry(id string) (schedule.Entry, bool)
}

// Item is a due block ready to drill.
type Item struct {
	Block  card.Block
	Entry  schedule.Entry
	Status report.Status
	// Changed is set when the block's content differs from when it was last reviewed.
	Changed bool
}

// Queue is the due list for one moment.
type Queue struct {
	Items []Item
	// Registered counts blocks seen for the first time by this build.
	Registered int
	// Skipped counts due identifiers that no longer resolve to a block.
	Skipped  int
	Warnings []card.Warning
	Scan     card.ScanResult
}

// Blocks returns the blocks of every item in order.
func (q Queue) Blocks() []card.Block {
	out := make([]card.Block, 0, len(q.Items))
	for _, it := range q.Items {
		out = append(out, it.Block)
	}
	return out
}

// Build scans the cards, registers new blocks, and returns the due blocks in
// schedule order, capped at limit when limit > 0. Due identifiers whose card
// is gone or unparsable are skipped with a warning and left in the store.
func Build(ctx context.Context, scanner Scanner, store Store, now time.Time, limit int) (Queue, error) {
	scan, err := scanner.Scan(ctx)
	if err != nil {
		return Queue{}, fmt.Errorf("scan cards: %w", err)
	}

	q := Queue{Scan: scan, Warnings: append([]card.Warning(nil), scan.Warnings...)}
	if q.Registered = store.Register(scan.IDs()); q.Registered > 0 {
		if err := store.Save(); err != nil {
			return Queue{}, err
		}
	}

	failed := make(map[string]bool, len(scan.Failed))
	for _, path := range scan.Failed {
		failed[path] = true
	}
	blocks := scan.Blocks()

	for _, id := range store.GetDue(now) {
		if limit > 0 && len(q.Items) >= limit {
			break
		}
		block, ok := blocks[id]
		if !ok {
			q.Skipped++
			q.Warnings = append(q.Warnings, unresolved(id, failed))
			continue
		}
		entry, _ := store.Entry(id)
		item := Item{
			Block:  block,
			Entry:  entry,
			Status: report.StatusOf(entry, now),
		}
		if entry.Fingerprint != "" && entry.Fingerprint != block.Fingerprint {
			item.Changed = true
			q.Warnings = append(q.Warnings, card.Warning{
				Path:    block.Card,
				Line:    block.StartLine,
				Message: fmt.Sprintf("%s: content changed since last review", id),
			})
		}
		q.Items = append(q.Items, item)
	}
	return q, nil
}

func unresolved(id string, failed map[string]bool) card.Warning {
	path, _, err := card.SplitID(id)
	if err != nil {
		return card.Warning{Path: id, Message: "malformed identifier in schedule"}
	}
	if failed[path] {
		return card.Warning{Path: path, Message: fmt.Sprintf("%s: card could not be parsed, skipped", id)}
	}
	return card.Warning{Path: path, Message: fmt.Sprintf("%s: block no longer exists, skipped", id)}
}
