package agent

import (
	"math/rand/v2"

	"github.com/dd0wney/pipeswarm/pkg/algorithms"
	"github.com/dd0wney/pipeswarm/pkg/network"
)

// Agent is one explorer. It is exclusively owned by the simulation; other
// agents only ever see copies of its belief.
type Agent struct {
	id       int
	start    string
	current  string
	previous string

	visited    []string // ordered set, first-visit order
	visitedSet map[string]bool
	path       []string // every position, including revisits

	role      Role
	leaderID  int
	task      *Task
	completed []string

	belief *Belief
	ports  *PortTable
	status Status

	policy TraversalPolicy
	rng    *rand.Rand // port numbering
}

// New creates an agent standing on start. The start node counts as visited
// at turn 0.
func New(id int, start string, policy TraversalPolicy, seed int64) *Agent {
	if policy == nil {
		policy = RightHandWall{}
	}
	a := &Agent{
		id:         id,
		start:      start,
		current:    start,
		visitedSet: make(map[string]bool),
		leaderID:   id,
		belief:     newBelief(),
		ports:      newPortTable(),
		policy:     policy,
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(id))),
	}
	a.visit(start, 0)
	return a
}

// ID returns the immutable agent id
func (a *Agent) ID() int { return a.id }

// Start returns the start node
func (a *Agent) Start() string { return a.start }

// Position returns the current node
func (a *Agent) Position() string { return a.current }

// Previous returns the node the agent last came from, or ""
func (a *Agent) Previous() string { return a.previous }

// Role returns the agent's role
func (a *Agent) Role() Role { return a.role }

// LeaderID returns the id the agent believes leads its communication history
func (a *Agent) LeaderID() int { return a.leaderID }

// Status returns the traversal status
func (a *Agent) Status() Status { return a.status }

// Alive reports whether the agent can still act. Done agents are terminated
// but keep their state and still take part in meetings.
func (a *Agent) Alive() bool { return a.status != StatusDone }

// Policy returns the traversal policy name
func (a *Agent) Policy() string { return a.policy.Name() }

// Belief returns the agent's belief. Callers outside a meeting must treat it as read-only.
func (a *Agent) Belief() *Belief { return a.belief }

// Ports returns the agent's port numbering
func (a *Agent) Ports() *PortTable { return a.ports }

// Task returns the task the agent holds
func (a *Agent) Task() (Task, bool) {
	if a.task == nil {
		return Task{}, false
	}
	return *a.task, true
}

// HasVisited reports whether this agent itself has stood on node
func (a *Agent) HasVisited(node string) bool { return a.visitedSet[node] }

// Visited returns the nodes this agent has visited in first-visit order
func (a *Agent) Visited() []string { return append([]string(nil), a.visited...) }

// Path returns every position the agent has occupied
func (a *Agent) Path() []string { return append([]string(nil), a.path...) }

// Completed returns the ids of tasks the agent has fulfilled
func (a *Agent) Completed() []string { return append([]string(nil), a.completed...) }

// Info returns what the agent would tell others about itself at turn
func (a *Agent) Info(turn int) AgentInfo {
	info := AgentInfo{ID: a.id, Node: a.current, Role: a.role, LeaderID: a.leaderID, Turn: turn}
	if a.task != nil {
		info.Task = a.task.ID
	}
	return info
}

func (a *Agent) visit(node string, turn int) {
	if !a.visitedSet[node] {
		a.visitedSet[node] = true
		a.visited = append(a.visited, node)
	}
	a.path = append(a.path, node)
	a.belief.MarkVisited(node, turn)
}

// Observe learns the local topology at the current node: incident links go
// into the known map and ports get this agent's private numbering. A held
// task whose anchor is already explored is dropped.
func (a *Agent) Observe(net *network.Graph) error {
	n, err := net.Node(a.current)
	if err != nil {
		return err
	}
	for _, name := range n.Links {
		l, err := net.LinkByName(name)
		if err != nil {
			return err
		}
		a.belief.Learn(KnownLink{Name: l.Name, From: l.From, To: l.To})
	}
	a.ports.assign(a.current, n.Links, a.rng)
	a.refresh()
	return nil
}

// refresh drops stale tasks and settles the terminal state
func (a *Agent) refresh() {
	if a.task != nil && a.belief.Explored(a.task.Anchor) {
		a.task = nil
	}
	if a.task == nil && len(a.belief.Frontier()) == 0 {
		a.status = StatusDone
	} else if a.status == StatusDone {
		a.status = StatusExploring
	}
}

// View builds the local view at the current node from the agent's own numbering
func (a *Agent) View(net *network.Graph, turn int) (View, error) {
	links := a.ports.Ordered(a.current)
	if len(links) == 0 {
		n, err := net.Node(a.current)
		if err != nil {
			return View{}, err
		}
		links = n.Links
	}

	v := View{AgentID: a.id, Node: a.current, Previous: a.previous, Arrival: -1, Turn: turn}
	for i, link := range links {
		nb, err := net.Across(a.current, link)
		if err != nil {
			return View{}, err
		}
		label, ok := a.ports.Label(a.current, link)
		if !ok {
			label = i
		}
		v.Ports = append(v.Ports, PortView{
			Label:     label,
			Link:      link,
			Neighbor:  nb,
			Explored:  a.belief.Explored(nb),
			LastVisit: a.belief.LastVisit(nb),
		})
		if a.previous != "" && nb == a.previous {
			v.Arrival = i
		}
	}
	return v, nil
}

// Decide picks the next node without mutating the agent, so decisions for
// different agents can run in parallel. A held task routes the agent along
// the shortest known path to the anchor; otherwise the policy decides.
func (a *Agent) Decide(net *network.Graph, turn int) (string, error) {
	if a.task != nil && !a.belief.Explored(a.task.Anchor) {
		if next, ok := a.route(a.task.Anchor); ok {
			return next, nil
		}
	}
	v, err := a.View(net, turn)
	if err != nil {
		return "", err
	}
	return a.policy.Next(v)
}

func (a *Agent) route(anchor string) (string, bool) {
	path := algorithms.ShortestPath[string](a.belief.KnownMap(), a.current, anchor)
	if len(path) < 2 {
		return "", false
	}
	return path[1], true
}

// Move commits a move to next. The caller guarantees next is adjacent.
func (a *Agent) Move(next string, turn int) {
	a.previous = a.current
	a.current = next
	a.visit(next, turn)
	if a.task != nil && a.task.Anchor == next {
		a.completed = append(a.completed, a.task.ID)
		a.task = nil
	}
	a.status = StatusExploring
}

// Stay records a turn without movement
func (a *Agent) Stay() {
	a.path = append(a.path, a.current)
}

// MarkIdle records that the agent could not move this turn
func (a *Agent) MarkIdle() {
	a.status = StatusIdle
}

// Ping returns the ids of other agents within radius
func (a *Agent) Ping(reg Registry, radius float64) []int {
	near := reg.Near(a.current, radius)
	out := make([]int, 0, len(near))
	for _, id := range near {
		if id != a.id {
			out = append(out, id)
		}
	}
	return out
}

// ReceiveTask hands the agent a task; nil clears the current one.
func (a *Agent) ReceiveTask(t *Task) {
	if t == nil {
		a.task = nil
		a.refresh()
		return
	}
	cp := *t
	a.task = &cp
	a.refresh()
}

// AdoptLeader records the elected leader and sets this agent's role
func (a *Agent) AdoptLeader(leaderID int) {
	a.leaderID = leaderID
	if leaderID == a.id {
		a.role = RoleLeader
	} else {
		a.role = RoleFollower
	}
}

// AssignTasks computes an assignment for the candidates using this agent's
// known map to measure each candidate's distance to the task anchors.
func (a *Agent) AssignTasks(candidates []*Agent, tasks []Task) Assignment {
	known := a.belief.KnownMap()
	cs := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		cs = append(cs, Candidate{
			ID:        c.id,
			Distances: algorithms.HopDistances[string](known, c.current),
		})
	}
	return AssignTasks(cs, tasks)
}

// MergeBelief folds a snapshot received from another agent into this one
func (a *Agent) MergeBelief(s Snapshot) {
	a.belief.Merge(s)
	a.refresh()
}

// Summary returns a copy of the agent's state for result output
func (a *Agent) Summary() Summary {
	return Summary{
		ID:        a.id,
		Start:     a.start,
		Position:  a.current,
		Role:      a.role,
		LeaderID:  a.leaderID,
		Status:    a.status,
		Visited:   a.Visited(),
		Path:      a.Path(),
		Completed: a.Completed(),
		Policy:    a.policy.Name(),
	}
}
