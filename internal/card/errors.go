package card

import (
	"errors"
	"fmt"
)

// ErrCardNotFound is returned when an identifier names a card that no longer exists.
var ErrCardNotFound = errors.New("card not found")

// ErrBlockNotFound is returned when a card has fewer drillable blocks than the identifier's ordinal.
var ErrBlockNotFound = errors.New("block not found")

// ErrInvalidID indicates an identifier that is not of the form <path>#<ordinal>.
var ErrInvalidID = errors.New("invalid block identifier")

// ParseError reports a malformed card. It is scoped to one file.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, e.Msg)
}
