package protocol

import (
	"fmt"
	"sort"

	"github.com/dd0wney/pipeswarm/pkg/agent"
)

// Meeting is a maximal set of agents in communication range during one turn.
type Meeting struct {
	Turn    int
	Members []*agent.Agent // ascending id
}

// NewMeeting builds a meeting from the present agents. Members are sorted by
// id; fewer than two members or a repeated id is an error.
func NewMeeting(turn int, members []*agent.Agent) (*Meeting, error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: %d members", ErrInvalidMeeting, len(members))
	}
	sorted := append([]*agent.Agent(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID() == sorted[i-1].ID() {
			return nil, fmt.Errorf("%w: agent %d listed twice", ErrInvalidMeeting, sorted[i].ID())
		}
	}
	return &Meeting{Turn: turn, Members: sorted}, nil
}

// IDs returns the member ids in ascending order
func (m *Meeting) IDs() []int {
	ids := make([]int, len(m.Members))
	for i, a := range m.Members {
		ids[i] = a.ID()
	}
	return ids
}

// Nodes returns the distinct member positions, sorted
func (m *Meeting) Nodes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range m.Members {
		if !seen[a.Position()] {
			seen[a.Position()] = true
			out = append(out, a.Position())
		}
	}
	sort.Strings(out)
	return out
}

// byNode groups members by position. Each group keeps ascending id order.
func (m *Meeting) byNode() map[string][]*agent.Agent {
	groups := make(map[string][]*agent.Agent)
	for _, a := range m.Members {
		groups[a.Position()] = append(groups[a.Position()], a)
	}
	return groups
}

// Outcome records what a meeting changed
type Outcome struct {
	Turn        int            `json:"turn"`
	Members     []int          `json:"members"`
	Nodes       []string       `json:"nodes"`
	Leader      int            `json:"leader"`
	Relabeled   []int          `json:"relabeled,omitempty"`
	Assignments map[int]string `json:"assignments,omitempty"` // agent id -> task id
}
