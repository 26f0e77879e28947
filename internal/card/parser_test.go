package card

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleCard = "# Go channels\n" +
	"\n" +
	"Send and receive:\n" +
	"\n" +
	"```go\n" +
	"ch := make(chan int)\n" +
	"go func() { ch <- 1 }()\n" +
	"v := <-ch\n" +
	"\n" +
	"```\n" +
	"\n" +
	"<!-- INFO -->\n" +
	"```text\n" +
	"background only\n" +
	"```\n" +
	"\n" +
	"```Slots\n" +
	"Capitals\n" +
	"France :: Paris\n" +
	"Japan :: Tokyo\n" +
	"```\n"

func TestParseExtractsBlocks(t *testing.T) {
	parser := NewParser(DefaultOptions())

	card, err := parser.Parse("lang/go.md", sampleCard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := len(card.Blocks); got != 3 {
		t.Fatalf("expected 3 blocks, got %d", got)
	}

	seq := card.Blocks[0]
	if seq.Kind != KindSequential || seq.Language != "go" {
		t.Fatalf("unexpected first block: kind=%s lang=%q", seq.Kind, seq.Language)
	}
	if seq.ID != "lang/go.md#0" {
		t.Fatalf("first block ID = %q, want %q", seq.ID, "lang/go.md#0")
	}
	if len(seq.Lines) != 3 {
		t.Fatalf("expected trailing blank stripped, got %d lines: %q", len(seq.Lines), seq.Lines)
	}
	if seq.StartLine != 5 {
		t.Fatalf("StartLine = %d, want 5", seq.StartLine)
	}

	info := card.Blocks[1]
	if !info.Excluded || info.ID != "" || info.Ordinal != -1 {
		t.Fatalf("expected excluded block without id, got %+v", info)
	}

	slots := card.Blocks[2]
	if slots.Kind != KindSlots {
		t.Fatalf("expected slots kind, got %s", slots.Kind)
	}
	if slots.ID != "lang/go.md#1" {
		t.Fatalf("slots ID = %q, want %q", slots.ID, "lang/go.md#1")
	}
	wantSlots := []Slot{
		{Line: 1, Prompt: "France", Answer: "Paris"},
		{Line: 2, Prompt: "Japan", Answer: "Tokyo"},
	}
	if !reflect.DeepEqual(slots.Slots, wantSlots) {
		t.Fatalf("slots = %+v, want %+v", slots.Slots, wantSlots)
	}
	if got := slots.Headers(); !reflect.DeepEqual(got, []string{"Capitals"}) {
		t.Fatalf("Headers() = %q", got)
	}
	if slots.Items() != 2 {
		t.Fatalf("Items() = %d, want 2", slots.Items())
	}

	if got := len(card.Drillable()); got != 2 {
		t.Fatalf("expected 2 drillable blocks, got %d", got)
	}
}

func TestParseExclusionMarkerYieldsNoDrillBlocks(t *testing.T) {
	text := "Some notes <!-- INFO -->\n```bash\nls -la\n```\n"
	card, err := NewParser(DefaultOptions()).Parse("notes.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(card.Blocks) != 1 || !card.Blocks[0].Excluded {
		t.Fatalf("expected one excluded block, got %+v", card.Blocks)
	}
	if got := len(card.Drillable()); got != 0 {
		t.Fatalf("expected zero drill blocks, got %d", got)
	}
}

func TestParseExclusionMarkerOutsideWindow(t *testing.T) {
	text := "<!-- INFO -->\n" + strings.Repeat("x", 80) + "\n```bash\nls -la\n```\n"
	card, err := NewParser(DefaultOptions()).Parse("notes.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(card.Drillable()) != 1 {
		t.Fatalf("marker beyond the window should not exclude: %+v", card.Blocks)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	parser := NewParser(DefaultOptions())
	first, err := parser.Parse("a.md", sampleCard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := parser.Parse("a.md", sampleCard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parse results differ:\n%+v\n%+v", first, second)
	}
}

func TestParseIDsStableAcrossLineEndings(t *testing.T) {
	parser := NewParser(DefaultOptions())
	unix, err := parser.Parse("a.md", sampleCard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	windows, err := parser.Parse("a.md", strings.ReplaceAll(sampleCard, "\n", "\r\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := range unix.Blocks {
		if unix.Blocks[i].ID != windows.Blocks[i].ID {
			t.Fatalf("block %d ID = %q vs %q", i, unix.Blocks[i].ID, windows.Blocks[i].ID)
		}
		if unix.Blocks[i].Fingerprint != windows.Blocks[i].Fingerprint {
			t.Fatalf("block %d fingerprint differs", i)
		}
	}
}

func TestParseUnterminatedFence(t *testing.T) {
	text := "intro\n```go\nfmt.Println(1)\n"
	_, err := NewParser(DefaultOptions()).Parse("broken.md", text)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Path != "broken.md" || perr.Line != 2 {
		t.Fatalf("unexpected parse error: %+v", perr)
	}
}

func TestParseOversizedBlockWarns(t *testing.T) {
	body := strings.Repeat("line\n", 25)
	text := "```\n" + body + "```\n"
	card, err := NewParser(DefaultOptions()).Parse("big.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(card.Drillable()) != 1 {
		t.Fatalf("oversized block must still be drillable")
	}
	if len(card.Warnings) != 1 || !strings.Contains(card.Warnings[0].Message, "25 lines") {
		t.Fatalf("unexpected warnings: %+v", card.Warnings)
	}
}

func TestParseEmptyBlockIsExcluded(t *testing.T) {
	text := "```\n\n\n```\n```\nreal\n```\n"
	card, err := NewParser(DefaultOptions()).Parse("e.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	drill := card.Drillable()
	if len(drill) != 1 || drill[0].ID != "e.md#0" {
		t.Fatalf("expected the non-empty block to take ordinal 0, got %+v", drill)
	}
	if len(card.Warnings) != 1 {
		t.Fatalf("expected a warning for the empty block, got %+v", card.Warnings)
	}
}

func TestParseSlotsWithoutPairsIsExcluded(t *testing.T) {
	text := "```slots\njust a header\n```\n"
	card, err := NewParser(DefaultOptions()).Parse("s.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(card.Drillable()) != 0 {
		t.Fatalf("expected no drillable blocks, got %+v", card.Blocks)
	}
}

func TestParseCustomOptions(t *testing.T) {
	parser := NewParser(Options{ExclusionMarker: "%skip", SlotsTag: "qa", SlotDelimiter: "=>"})
	text := "```qa\nkey => value\n```\n%skip\n```\nhidden\n```\n"
	card, err := parser.Parse("c.md", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if card.Blocks[0].Kind != KindSlots || len(card.Blocks[0].Slots) != 1 {
		t.Fatalf("custom slots tag not honoured: %+v", card.Blocks[0])
	}
	if !card.Blocks[1].Excluded {
		t.Fatalf("custom marker not honoured")
	}
}

func TestTailRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "llo"},
		{"héllo wörld", 5, "wörld"},
		{"", 4, ""},
	}
	for _, tc := range tests {
		if got := tailRunes(tc.in, tc.n); got != tc.want {
			t.Fatalf("tailRunes(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
