package card

import (
	"fmt"
	"io"
	"strings"
)

const (
	fenceMarker = "```"

	// DefaultExclusionMarker makes the next fence display-only.
	DefaultExclusionMarker = "<!-- INFO -->"
	// DefaultExclusionWindow is how many characters before a fence are searched for the marker.
	DefaultExclusionWindow = 50
	// DefaultSlotsTag is the fence language that selects KindSlots.
	DefaultSlotsTag = "slots"
	// DefaultSlotDelimiter separates prompt from answer in a slots line.
	DefaultSlotDelimiter = "::"
	// DefaultMaxBlockLines is the size above which a block draws a warning.
	DefaultMaxBlockLines = 20
)

// Options tunes how fences are classified.
type Options struct {
	ExclusionMarker string
	ExclusionWindow int
	SlotsTag        string
	SlotDelimiter   string
	MaxBlockLines   int
}

// DefaultOptions returns the stock card format.
func DefaultOptions() Options {
	return Options{
		ExclusionMarker: DefaultExclusionMarker,
		ExclusionWindow: DefaultExclusionWindow,
		SlotsTag:        DefaultSlotsTag,
		SlotDelimiter:   DefaultSlotDelimiter,
		MaxBlockLines:   DefaultMaxBlockLines,
	}
}

// Parser turns card text into drill blocks. It holds no state between calls
// and performs no I/O of its own.
type Parser struct {
	opts Options
}

// NewParser returns a parser using opts; zero fields fall back to the defaults.
func NewParser(opts Options) *Parser {
	def := DefaultOptions()
	if opts.ExclusionMarker == "" {
		opts.ExclusionMarker = def.ExclusionMarker
	}
	if opts.ExclusionWindow <= 0 {
		opts.ExclusionWindow = def.ExclusionWindow
	}
	if opts.SlotsTag == "" {
		opts.SlotsTag = def.SlotsTag
	}
	if opts.SlotDelimiter == "" {
		opts.SlotDelimiter = def.SlotDelimiter
	}
	if opts.MaxBlockLines <= 0 {
		opts.MaxBlockLines = def.MaxBlockLines
	}
	return &Parser{opts: opts}
}

// ParseReader reads all of r and parses it as the card at path.
func (p *Parser) ParseReader(path string, r io.Reader) (Card, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Card{}, err
	}
	return p.Parse(path, string(data))
}

// Parse extracts every fenced block from text. path is the card's identity and
// becomes part of each block identifier. An unterminated fence fails the whole
// card with a *ParseError.
func (p *Parser) Parse(path, text string) (Card, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	c := Card{Path: path}
	ordinal := 0
	offset := 0
	// prose starts after the previous closing fence; a marker never reaches
	// past another block.
	prose := 0

	for i := 0; i < len(lines); i++ {
		lineStart := offset
		offset += len(lines[i]) + 1

		lang, ok := openingFence(lines[i])
		if !ok {
			continue
		}

		startLine := i + 1
		var body []string
		closed := false
		for i++; i < len(lines); i++ {
			offset += len(lines[i]) + 1
			if closingFence(lines[i]) {
				closed = true
				break
			}
			body = append(body, lines[i])
		}
		if !closed {
			return Card{Path: path}, &ParseError{Path: path, Line: startLine, Msg: "unterminated fence"}
		}

		block := Block{
			Card:      path,
			Ordinal:   -1,
			Language:  lang,
			Kind:      p.kindOf(lang),
			Lines:     trimTrailingBlank(body),
			StartLine: startLine,
			Excluded:  p.excluded(text[prose:lineStart]),
		}
		if block.Kind == KindSlots {
			block.Slots = p.parseSlots(block.Lines)
		}

		if !block.Excluded && block.Items() == 0 {
			block.Excluded = true
			c.Warnings = append(c.Warnings, Warning{Path: path, Line: startLine, Message: "block has nothing to drill; shown only"})
		}
		if !block.Excluded {
			block.Ordinal = ordinal
			block.ID = BlockID(path, ordinal)
			ordinal++
			if n := len(block.Lines); n > p.opts.MaxBlockLines {
				c.Warnings = append(c.Warnings, Warning{
					Path:    path,
					Line:    startLine,
					Message: fmt.Sprintf("block has %d lines (recommended at most %d)", n, p.opts.MaxBlockLines),
				})
			}
		}
		block.Fingerprint = Fingerprint(block)
		c.Blocks = append(c.Blocks, block)
		prose = min(offset, len(text))
	}

	return c, nil
}

func (p *Parser) kindOf(lang string) Kind {
	if strings.EqualFold(lang, p.opts.SlotsTag) {
		return KindSlots
	}
	return KindSequential
}

// excluded reports whether the marker occurs within the window of characters
// immediately preceding a fence.
func (p *Parser) excluded(before string) bool {
	return strings.Contains(tailRunes(before, p.opts.ExclusionWindow), p.opts.ExclusionMarker)
}

func (p *Parser) parseSlots(lines []string) []Slot {
	var slots []Slot
	for i, line := range lines {
		idx := strings.Index(line, p.opts.SlotDelimiter)
		if idx < 0 {
			continue
		}
		slots = append(slots, Slot{
			Line:   i,
			Prompt: strings.TrimSpace(line[:idx]),
			Answer: strings.TrimSpace(line[idx+len(p.opts.SlotDelimiter):]),
		})
	}
	return slots
}

func openingFence(line string) (string, bool) {
	if !strings.HasPrefix(line, fenceMarker) {
		return "", false
	}
	info := strings.TrimSpace(strings.TrimLeft(line, "`"))
	if fields := strings.Fields(info); len(fields) > 0 {
		return fields[0], true
	}
	return "", true
}

func closingFence(line string) bool {
	line = strings.TrimRight(line, " \t")
	return len(line) >= len(fenceMarker) && strings.Trim(line, "`") == ""
}

func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}

func tailRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := len(s); i > 0; {
		// Step back one rune at a time.
		j := i - 1
		for j > 0 && !isRuneStart(s[j]) {
			j--
		}
		count++
		if count == n {
			return s[j:]
		}
		i = j
	}
	return s
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
