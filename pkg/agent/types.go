package agent

import "fmt"

// Role is an agent's standing in the swarm hierarchy
type Role int

const (
	RoleUnassigned Role = iota
	RoleLeader
	RoleFollower
)

// String returns the string representation of a role
func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleFollower:
		return "follower"
	default:
		return "unassigned"
	}
}

// MarshalText lets roles appear by name in JSON output.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a role name
func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "leader":
		*r = RoleLeader
	case "follower":
		*r = RoleFollower
	case "unassigned", "":
		*r = RoleUnassigned
	default:
		return fmt.Errorf("unknown role %q", text)
	}
	return nil
}

// Status is the per-agent traversal state
type Status int

const (
	// StatusExploring agents decide and move every turn
	StatusExploring Status = iota
	// StatusIdle agents could not pick a move this turn
	StatusIdle
	// StatusDone agents have no frontier and no task left; terminal
	StatusDone
)

// String returns the string representation of a status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusDone:
		return "done"
	default:
		return "exploring"
	}
}

// MarshalText lets statuses appear by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "exploring", "":
		*s = StatusExploring
	case "idle":
		*s = StatusIdle
	case "done":
		*s = StatusDone
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Task is a unit of exploration work anchored at a node. Frontier tasks ask
// an agent to reach a node that is known but not yet explored.
type Task struct {
	ID     string `json:"id"`
	Anchor string `json:"anchor"`
}

// FrontierTask returns the task for exploring anchor
func FrontierTask(anchor string) Task {
	return Task{ID: "explore:" + anchor, Anchor: anchor}
}

// Registry answers proximity queries over the live agent set.
type Registry interface {
	// Near returns the ids, ascending, of all agents within radius of node.
	// Radius 0 means the same node; a negative radius means unlimited.
	Near(node string, radius float64) []int
}

// Summary is a read-only copy of an agent's end state
type Summary struct {
	ID        int      `json:"id"`
	Start     string   `json:"start"`
	Position  string   `json:"position"`
	Role      Role     `json:"role"`
	LeaderID  int      `json:"leader_id"`
	Status    Status   `json:"status"`
	Visited   []string `json:"visited"`
	Path      []string `json:"path"`
	Completed []string `json:"completed_tasks,omitempty"`
	Policy    string   `json:"policy"`
}
