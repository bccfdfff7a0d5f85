package simulation

import (
	"fmt"

	"github.com/dd0wney/pipeswarm/pkg/agent"
	"github.com/dd0wney/pipeswarm/pkg/protocol"
)

// State is the simulation lifecycle state
type State int

const (
	StateInitialized State = iota
	StateRunning
	// StateCompleted: every node has been visited
	StateCompleted
	// StateTurnLimit: MaxTurns reached with nodes left unvisited
	StateTurnLimit
	// StateStalled: every agent is done but coverage is below 1, which
	// happens on disconnected networks
	StateStalled
	// StateCancelled: the context was cancelled at a turn boundary
	StateCancelled
	// StateFailed: a protocol invariant broke and the run was aborted
	StateFailed
)

// String returns the string representation of a state
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTurnLimit:
		return "turn_limit"
	case StateStalled:
		return "stalled"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText
func (s *State) UnmarshalText(text []byte) error {
	for st := StateInitialized; st <= StateFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown simulation state %q", text)
}

// Terminal reports whether no further turns can run
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// TurnRecord is the observable outcome of one turn. Record 0 holds the start
// positions.
type TurnRecord struct {
	Turn      int                `json:"turn"`
	Positions []string           `json:"positions"` // indexed by agent id
	Idle      []int              `json:"idle,omitempty"`
	Meetings  []protocol.Outcome `json:"meetings,omitempty"`
	Leaders   []int              `json:"leaders,omitempty"`
	Coverage  float64            `json:"coverage"`
}

// Result is returned by Run
type Result struct {
	RunID    string          `json:"run_id"`
	State    State           `json:"state"`
	Turns    int             `json:"turns"`
	Coverage float64         `json:"coverage"`
	History  []TurnRecord    `json:"history"`
	Agents   []agent.Summary `json:"agents"`
}

// Observer receives turn records as they are produced. Calls happen on the
// goroutine driving the simulation and must not block for long.
type Observer interface {
	OnTurn(runID string, rec TurnRecord, state State)
	OnFinish(res *Result)
}
