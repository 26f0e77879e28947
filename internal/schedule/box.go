package schedule

import "time"

// MaxBox is the highest Leitner box.
const MaxBox = 7

// Intervals holds the review delay for each box, indexed by box number.
var Intervals = [MaxBox + 1]time.Duration{
	time.Hour,
	4 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
	30 * 24 * time.Hour,
	90 * 24 * time.Hour,
}

// Interval returns the delay for box, clamped to the valid range.
func Interval(box int) time.Duration {
	if box < 0 {
		box = 0
	}
	if box > MaxBox {
		box = MaxBox
	}
	return Intervals[box]
}

// NextBox moves a block up one box when score meets threshold and back to
// box 0 otherwise.
func NextBox(box int, score, threshold float64) int {
	if score >= threshold {
		return min(box+1, MaxBox)
	}
	return 0
}
