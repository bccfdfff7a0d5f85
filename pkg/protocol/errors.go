package protocol

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrProtocolInvariant = errors.New("protocol invariant violated")
	ErrInvalidMeeting    = errors.New("invalid meeting")
)

// InvariantError reports an internal consistency violation found while
// verifying a meeting or the swarm as a whole. It always signals a bug and
// must abort the run.
type InvariantError struct {
	Check  string // "leader", "ports" or "tasks"
	Turn   int
	Agents []int
	Detail string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("turn %d: %s check failed for agents %v: %s: %v",
		e.Turn, e.Check, e.Agents, e.Detail, ErrProtocolInvariant)
}

// Unwrap returns ErrProtocolInvariant.
func (e *InvariantError) Unwrap() error {
	return ErrProtocolInvariant
}
