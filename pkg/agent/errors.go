package agent

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrDeadEnd       = errors.New("dead end")
	ErrUnknownPolicy = errors.New("unknown traversal policy")
)

// DeadEndError is returned by Decide when neither the traversal rule nor
// its fallback can pick a next node. The agent stays idle for the turn.
type DeadEndError struct {
	AgentID int
	Node    string
	Policy  string
}

// Error implements the error interface.
func (e *DeadEndError) Error() string {
	return fmt.Sprintf("agent %d at %s (%s): %v", e.AgentID, e.Node, e.Policy, ErrDeadEnd)
}

// Unwrap returns the ErrDeadEnd sentinel.
func (e *DeadEndError) Unwrap() error {
	return ErrDeadEnd
}
