package history

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrBadMagic = errors.New("not a pipeswarm history file")
	ErrCorrupt  = errors.New("history file corrupt")
	ErrClosed   = errors.New("history file is closed")
)

// FrameError reports a frame that failed to decode.
type FrameError struct {
	Index  int
	Offset int64
	Cause  error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d at offset %d: %v", e.Index, e.Offset, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *FrameError) Unwrap() error {
	return e.Cause
}

// Is matches ErrCorrupt.
func (e *FrameError) Is(target error) bool {
	return target == ErrCorrupt
}
