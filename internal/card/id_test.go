package card

import (
	"errors"
	"testing"
)

func TestBlockIDRoundTrip(t *testing.T) {
	id := BlockID("dir/with#hash.md", 3)
	path, ordinal, err := SplitID(id)
	if err != nil {
		t.Fatalf("SplitID: %v", err)
	}
	if path != "dir/with#hash.md" || ordinal != 3 {
		t.Fatalf("SplitID(%q) = %q, %d", id, path, ordinal)
	}
}

func TestSplitIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "nohash", "#1", "a.md#", "a.md#x", "a.md#-1"} {
		if _, _, err := SplitID(id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("SplitID(%q) error = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestFingerprintIgnoresTrailingWhitespace(t *testing.T) {
	a := Block{Kind: KindSequential, Lines: []string{"x := 1", "y := 2"}}
	b := Block{Kind: KindSequential, Lines: []string{"x := 1  ", "y := 2\t"}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("fingerprints differ for whitespace-only changes")
	}
	c := Block{Kind: KindSlots, Lines: a.Lines}
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatalf("fingerprint should depend on kind")
	}
}
