package session

import "github.com/faizmokh/knos/internal/card"

// Item is one unit revealed and judged during a drill.
type Item struct {
	Index int
	// Line indexes the item's line in the block.
	Line int
	// Prompt is shown before the answer. Sequential items have none.
	Prompt string
	Answer string
}

// Labels names the pass and fail verdicts for a kind.
type Labels struct {
	Pass string
	Fail string
}

type strategy struct {
	items  func(card.Block) []Item
	labels Labels
}

var strategies = map[card.Kind]strategy{
	card.KindSequential: {
		items:  sequentialItems,
		labels: Labels{Pass: "knew it", Fail: "didn't know"},
	},
	card.KindSlots: {
		items:  slotItems,
		labels: Labels{Pass: "correct", Fail: "incorrect"},
	},
}

func strategyFor(k card.Kind) strategy {
	if s, ok := strategies[k]; ok {
		return s
	}
	return strategies[card.KindSequential]
}

// LabelsFor returns the verdict wording for kind.
func LabelsFor(k card.Kind) Labels {
	return strategyFor(k).labels
}

func sequentialItems(b card.Block) []Item {
	items := make([]Item, 0, len(b.Lines))
	for i, line := range b.Lines {
		items = append(items, Item{Index: i, Line: i, Answer: line})
	}
	return items
}

func slotItems(b card.Block) []Item {
	items := make([]Item, 0, len(b.Slots))
	for i, s := range b.Slots {
		items = append(items, Item{Index: i, Line: s.Line, Prompt: s.Prompt, Answer: s.Answer})
	}
	return items
}
