package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidScore is returned for scores outside 0-100.
var ErrInvalidScore = errors.New("score must be between 0 and 100")

// CorruptionError means the schedule file exists but cannot be trusted. It is
// never recovered from silently.
type CorruptionError struct {
	Path string
	// ID names the offending entry when decoding succeeded but validation did not.
	ID  string
	Err error
}

func (e *CorruptionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("schedule %s is corrupt: entry %q: %v", e.Path, e.ID, e.Err)
	}
	return fmt.Sprintf("schedule %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// PersistError reports a schedule write that failed after retrying. The file
// on disk still holds the previous successful write.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save schedule %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
