package protocol

import (
	"fmt"
	"sort"

	"github.com/dd0wney/pipeswarm/pkg/agent"
)

// Run executes the meeting protocol: belief exchange, port-label
// synchronization, leader election and task allocation, in that order, then
// verifies the result. Only members are touched. An error is always an
// *InvariantError.
func Run(m *Meeting) (*Outcome, error) {
	ExchangeBeliefs(m)
	relabeled := SyncPorts(m)
	leader := ElectLeader(m)
	assignment := AllocateTasks(m)
	shareInfo(m)

	if err := Verify(m, assignment); err != nil {
		return nil, err
	}

	out := &Outcome{
		Turn:      m.Turn,
		Members:   m.IDs(),
		Nodes:     m.Nodes(),
		Leader:    leader,
		Relabeled: relabeled,
	}
	if len(assignment) > 0 {
		out.Assignments = make(map[int]string, len(assignment))
		for id, t := range assignment {
			out.Assignments[id] = t.ID
		}
	}
	return out, nil
}

// shareInfo records every member's current state in every member's belief
func shareInfo(m *Meeting) {
	infos := make([]agent.AgentInfo, len(m.Members))
	for i, a := range m.Members {
		infos[i] = a.Info(m.Turn)
	}
	for _, a := range m.Members {
		for _, info := range infos {
			a.Belief().Remember(info)
		}
	}
}

// ExchangeBeliefs gives every member the union of all members' beliefs.
// Each member receives its own copy.
func ExchangeBeliefs(m *Meeting) {
	shareInfo(m)
	snapshots := make([]agent.Snapshot, len(m.Members))
	for i, a := range m.Members {
		snapshots[i] = a.Belief().Snapshot()
	}
	for _, a := range m.Members {
		for _, s := range snapshots {
			a.MergeBelief(s)
		}
	}
}

// SyncPorts makes the lowest-id member at each shared node the owner of the
// canonical port numbering there and relabels the others. It returns the ids
// of members whose tables changed, ascending.
func SyncPorts(m *Meeting) []int {
	changed := make(map[int]bool)
	for node, group := range m.byNode() {
		if len(group) < 2 {
			continue
		}
		canonical := group[0].Ports().Labels(node)
		if canonical == nil {
			continue
		}
		for _, a := range group[1:] {
			if a.Ports().Relabel(node, canonical) {
				changed[a.ID()] = true
			}
		}
	}
	if len(changed) == 0 {
		return nil
	}
	ids := make([]int, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ElectLeader folds the members' leader beliefs into one. Every agent starts
// out believing in itself and only ever lowers its belief, so the fold yields
// the lowest id across the members' combined communication history.
func ElectLeader(m *Meeting) int {
	leader := m.Members[0].LeaderID()
	for _, a := range m.Members[1:] {
		leader = min(leader, a.LeaderID())
	}
	for _, a := range m.Members {
		a.AdoptLeader(leader)
	}
	return leader
}

// Authority returns the member that computes the allocation: the leader if
// present, else the lowest-id member.
func Authority(m *Meeting) *agent.Agent {
	for _, a := range m.Members {
		if a.Role() == agent.RoleLeader {
			return a
		}
	}
	return m.Members[0]
}

// PendingTasks lists the frontier tasks the members know of, sorted by id.
// Tasks the merged belief attributes to agents outside the meeting are left
// with their holders; tasks held by members go back into the pool.
func PendingTasks(m *Meeting) []agent.Task {
	present := make(map[int]bool, len(m.Members))
	for _, a := range m.Members {
		present[a.ID()] = true
	}

	// Beliefs are identical after the exchange; the authority's is used.
	b := Authority(m).Belief()
	elsewhere := make(map[string]bool)
	for _, id := range b.KnownAgents() {
		if present[id] {
			continue
		}
		if info, ok := b.Agent(id); ok && info.Task != "" {
			elsewhere[info.Task] = true
		}
	}

	var tasks []agent.Task
	for _, anchor := range b.Frontier() {
		t := agent.FrontierTask(anchor)
		if !elsewhere[t.ID] {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// AllocateTasks lets the authority distribute the pending tasks among all
// members. Members without an assignment have their task cleared.
func AllocateTasks(m *Meeting) agent.Assignment {
	auth := Authority(m)
	assignment := auth.AssignTasks(m.Members, PendingTasks(m))
	for _, a := range m.Members {
		if t, ok := assignment[a.ID()]; ok {
			a.ReceiveTask(&t)
		} else {
			a.ReceiveTask(nil)
		}
	}
	return assignment
}

// Verify checks the post-meeting invariants: one leader id, at most one
// present leader, identical port numbering at shared nodes and no task held
// twice.
func Verify(m *Meeting, assignment agent.Assignment) error {
	ids := m.IDs()

	leaderID := m.Members[0].LeaderID()
	var leaders []int
	for _, a := range m.Members {
		if a.LeaderID() != leaderID {
			return &InvariantError{Check: "leader", Turn: m.Turn, Agents: ids,
				Detail: fmt.Sprintf("agent %d follows %d, agent %d follows %d",
					m.Members[0].ID(), leaderID, a.ID(), a.LeaderID())}
		}
		if a.Role() == agent.RoleLeader {
			leaders = append(leaders, a.ID())
		}
	}
	if len(leaders) > 1 {
		return &InvariantError{Check: "leader", Turn: m.Turn, Agents: leaders,
			Detail: "more than one leader in a meeting"}
	}

	for node, group := range m.byNode() {
		if len(group) < 2 {
			continue
		}
		ref := group[0].Ports().Labels(node)
		for _, a := range group[1:] {
			if !agent.SameLabels(ref, a.Ports().Labels(node)) {
				return &InvariantError{Check: "ports", Turn: m.Turn, Agents: []int{group[0].ID(), a.ID()},
					Detail: fmt.Sprintf("port numbering differs at %s", node)}
			}
		}
	}

	if err := assignment.Validate(); err != nil {
		return &InvariantError{Check: "tasks", Turn: m.Turn, Agents: ids, Detail: err.Error()}
	}
	held := make(map[string]int)
	for _, a := range m.Members {
		t, ok := a.Task()
		if !ok {
			continue
		}
		if other, dup := held[t.ID]; dup {
			return &InvariantError{Check: "tasks", Turn: m.Turn, Agents: []int{other, a.ID()},
				Detail: fmt.Sprintf("task %s held twice", t.ID)}
		}
		held[t.ID] = a.ID()
	}
	return nil
}

// CheckLeaders verifies swarm-wide leader uniqueness: two agents that both
// hold the leader role must not know about each other. Knowledge only flows
// through meetings, so mutual knowledge means the two share a communication
// history. An absent leader keeps its role until a meeting brings it the news.
func CheckLeaders(turn int, agents []*agent.Agent) error {
	var leaders []*agent.Agent
	for _, a := range agents {
		if a.Role() == agent.RoleLeader {
			leaders = append(leaders, a)
		}
	}
	for i := 0; i < len(leaders); i++ {
		for j := i + 1; j < len(leaders); j++ {
			a, b := leaders[i], leaders[j]
			_, aKnowsB := a.Belief().Agent(b.ID())
			_, bKnowsA := b.Belief().Agent(a.ID())
			if aKnowsB && bKnowsA {
				return &InvariantError{Check: "leader", Turn: turn, Agents: []int{a.ID(), b.ID()},
					Detail: "two leaders share a communication history"}
			}
		}
	}
	return nil
}
