package session

import "errors"

// ErrAborted is returned when the user stops a session. Blocks committed
// before the abort stay committed.
var ErrAborted = errors.New("session aborted")

// ErrInvalidState is returned when an operation does not fit the controller's state.
var ErrInvalidState = errors.New("invalid controller state")

// ErrNotDrillable is returned for excluded or empty blocks.
var ErrNotDrillable = errors.New("block is not drillable")
