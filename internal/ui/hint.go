package ui

import "strings"

const (
	// LineHintLimit caps the length hint for a hidden sequential line.
	LineHintLimit = 60
	// SlotHintLimit caps the length hint for a hidden slot answer.
	SlotHintLimit = 30
)

// Hint masks text with one block per character, capped at limit.
func Hint(text string, limit int) string {
	return mask(text, limit, "▓")
}

func mask(text string, limit int, glyph string) string {
	n := len([]rune(text))
	switch {
	case n == 0:
		return glyph + " (empty)"
	case n > limit:
		return strings.Repeat(glyph, limit) + "..."
	default:
		return strings.Repeat(glyph, n)
	}
}
