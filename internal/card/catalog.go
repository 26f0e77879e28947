package card

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/faizmokh/knos/internal/files"
)

// Catalog reads cards from the directory owned by a files.Manager.
// Nothing is cached: every call goes back to disk.
type Catalog struct {
	manager *files.Manager
	parser  *Parser
}

// ScanResult is the outcome of a full pass over the cards directory.
type ScanResult struct {
	Cards    []Card
	Warnings []Warning
	// Failed holds the paths of cards that could not be parsed at all.
	Failed []string
}

// IDs returns every drillable identifier in card path order.
func (r ScanResult) IDs() []string {
	var ids []string
	for _, c := range r.Cards {
		for _, b := range c.Drillable() {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Blocks indexes drillable blocks by identifier.
func (r ScanResult) Blocks() map[string]Block {
	out := make(map[string]Block)
	for _, c := range r.Cards {
		for _, b := range c.Drillable() {
			out[b.ID] = b
		}
	}
	return out
}

// NewCatalog wires a catalog. A nil parser uses DefaultOptions.
func NewCatalog(manager *files.Manager, parser *Parser) *Catalog {
	if parser == nil {
		parser = NewParser(DefaultOptions())
	}
	return &Catalog{manager: manager, parser: parser}
}

// Scan parses every card file. A card that cannot be read or parsed is
// reported as a warning and the scan moves on.
func (c *Catalog) Scan(ctx context.Context) (ScanResult, error) {
	paths, err := c.manager.CardFiles(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	var result ScanResult
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return ScanResult{}, err
		}
		card, err := c.Load(ctx, rel)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ScanResult{}, ctxErr
			}
			result.Failed = append(result.Failed, rel)
			var perr *ParseError
			if errors.As(err, &perr) {
				result.Warnings = append(result.Warnings, Warning{Path: perr.Path, Line: perr.Line, Message: perr.Msg})
			} else {
				result.Warnings = append(result.Warnings, Warning{Path: rel, Message: fmt.Sprintf("unreadable: %v", err)})
			}
			continue
		}
		result.Cards = append(result.Cards, card)
		result.Warnings = append(result.Warnings, card.Warnings...)
	}
	return result, nil
}

// Load parses the card at rel, a path relative to the cards directory.
func (c *Catalog) Load(ctx context.Context, rel string) (Card, error) {
	if err := ctx.Err(); err != nil {
		return Card{}, err
	}
	f, err := os.Open(c.manager.CardPath(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, rel)
		}
		return Card{}, fmt.Errorf("open card: %w", err)
	}
	defer f.Close()

	return c.parser.ParseReader(rel, f)
}

// Resolve re-reads the card an identifier points into and returns its block.
func (c *Catalog) Resolve(ctx context.Context, id string) (Block, error) {
	rel, ordinal, err := SplitID(id)
	if err != nil {
		return Block{}, err
	}
	card, err := c.Load(ctx, rel)
	if err != nil {
		return Block{}, err
	}
	for _, b := range card.Blocks {
		if !b.Excluded && b.Ordinal == ordinal {
			return b, nil
		}
	}
	return Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
}
