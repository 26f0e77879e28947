package card

import (
	"fmt"
	"strings"
)

// Kind tags a drill block with the way it is revealed and scored.
type Kind uint8

const (
	// KindSequential blocks are revealed line by line and require exact reproduction.
	KindSequential Kind = iota
	// KindSlots blocks hold independent prompt :: answer pairs.
	KindSlots
)

// String returns the lowercase name used in output and history records.
func (k Kind) String() string {
	switch k {
	case KindSlots:
		return "slots"
	default:
		return "sequential"
	}
}

// Threshold is the minimum score (0-100) that advances a block of this kind
// to the next Leitner box.
func (k Kind) Threshold() float64 {
	if k == KindSlots {
		return 80
	}
	return 100
}

// Card is one source file and the blocks found in it.
type Card struct {
	Path     string
	Blocks   []Block
	Warnings []Warning
}

// Drillable returns the blocks that carry an identifier, in ordinal order.
func (c Card) Drillable() []Block {
	var out []Block
	for _, b := range c.Blocks {
		if !b.Excluded {
			out = append(out, b)
		}
	}
	return out
}

// Block is a fenced region extracted from a card.
type Block struct {
	// ID is empty for excluded blocks.
	ID       string
	Card     string
	Ordinal  int
	Kind     Kind
	Language string
	// Lines is the fence body with trailing blank lines removed.
	Lines []string
	// Slots indexes the drillable pairs of a slots block into Lines.
	Slots []Slot
	// Excluded blocks are display-only: they follow the exclusion marker or
	// contain nothing to drill.
	Excluded    bool
	StartLine   int
	Fingerprint string
}

// Slot is a prompt/answer pair parsed from one line of a slots block.
type Slot struct {
	Line   int
	Prompt string
	Answer string
}

// Items returns the number of drillable units in the block.
func (b Block) Items() int {
	if b.Kind == KindSlots {
		return len(b.Slots)
	}
	return len(b.Lines)
}

// Headers returns the lines of a slots block that are shown but not drilled.
func (b Block) Headers() []string {
	if b.Kind != KindSlots {
		return nil
	}
	drilled := make(map[int]bool, len(b.Slots))
	for _, s := range b.Slots {
		drilled[s.Line] = true
	}
	var headers []string
	for i, line := range b.Lines {
		if !drilled[i] && strings.TrimSpace(line) != "" {
			headers = append(headers, line)
		}
	}
	return headers
}

// Warning is a non-fatal finding about a card.
type Warning struct {
	Path    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.Path, w.Line, w.Message)
	}
	return w.Path + ": " + w.Message
}
