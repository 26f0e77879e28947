package card

import (
	"fmt"
	"strconv"
	"strings"
)

const idSeparator = "#"

// BlockID returns the identifier of the block at ordinal within the card at path.
// Ordinals count only blocks that are drilled.
func BlockID(path string, ordinal int) string {
	return path + idSeparator + strconv.Itoa(ordinal)
}

// SplitID is the inverse of BlockID.
func SplitID(id string) (string, int, error) {
	idx := strings.LastIndex(id, idSeparator)
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	ordinal, err := strconv.Atoi(id[idx+1:])
	if err != nil || ordinal < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id[:idx], ordinal, nil
}
