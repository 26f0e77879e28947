package card

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint hashes the drillable content of a block. Whitespace at line ends
// and trailing blank lines do not change the result.
func Fingerprint(b Block) string {
	h := sha256.New()
	h.Write([]byte(b.Kind.String()))
	h.Write([]byte{0})
	for _, line := range b.Lines {
		h.Write([]byte(strings.TrimRight(line, " \t")))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
