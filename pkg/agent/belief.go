package agent

import (
	"sort"

	"github.com/dd0wney/pipeswarm/pkg/algorithms"
)

// KnownLink is a link an agent has observed or been told about
type KnownLink struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// AgentInfo is what one agent believes about another
type AgentInfo struct {
	ID       int    `json:"id"`
	Node     string `json:"node"`
	Role     Role   `json:"role"`
	LeaderID int    `json:"leader_id"`
	Task     string `json:"task,omitempty"`
	Turn     int    `json:"turn"`
}

// Snapshot is a deep copy of a belief, the unit exchanged at meetings.
// Snapshots never alias the belief they came from.
type Snapshot struct {
	Explored map[string]int
	Links    map[string]KnownLink
	Agents   map[int]AgentInfo
}

// Belief is an agent's private model of the network and the swarm.
type Belief struct {
	explored map[string]int // node -> last visit turn
	links    map[string]KnownLink
	agents   map[int]AgentInfo

	known *algorithms.AdjacencyGraph[string] // cached, rebuilt when links change
}

func newBelief() *Belief {
	return &Belief{
		explored: make(map[string]int),
		links:    make(map[string]KnownLink),
		agents:   make(map[int]AgentInfo),
	}
}

// MarkVisited records a visit to node at turn
func (b *Belief) MarkVisited(node string, turn int) {
	if last, ok := b.explored[node]; !ok || turn > last {
		b.explored[node] = turn
	}
}

// Explored reports whether node has been visited by any agent this agent knows of
func (b *Belief) Explored(node string) bool {
	_, ok := b.explored[node]
	return ok
}

// LastVisit returns the most recent known visit turn of node, or -1
func (b *Belief) LastVisit(node string) int {
	if t, ok := b.explored[node]; ok {
		return t
	}
	return -1
}

// ExploredCount returns the number of nodes known to be explored
func (b *Belief) ExploredCount() int {
	return len(b.explored)
}

// Learn adds a link to the known map
func (b *Belief) Learn(l KnownLink) {
	if _, ok := b.links[l.Name]; ok {
		return
	}
	b.links[l.Name] = l
	b.known = nil
}

// KnownLinks returns the known links sorted by name
func (b *Belief) KnownLinks() []KnownLink {
	out := make([]KnownLink, 0, len(b.links))
	for _, l := range b.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Frontier returns known but unexplored nodes, sorted
func (b *Belief) Frontier() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range b.links {
		for _, n := range [2]string{l.From, l.To} {
			if seen[n] || b.Explored(n) {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// KnownMap returns the known part of the network as a graph. Vertex and
// neighbor order follow link names so routing is deterministic.
func (b *Belief) KnownMap() *algorithms.AdjacencyGraph[string] {
	if b.known != nil {
		return b.known
	}
	g := algorithms.NewAdjacencyGraph[string]()
	for _, l := range b.KnownLinks() {
		g.AddEdge(l.From, l.To)
	}
	b.known = g
	return g
}

// Remember stores info about another agent unless a newer entry exists
func (b *Belief) Remember(info AgentInfo) {
	if cur, ok := b.agents[info.ID]; ok && cur.Turn > info.Turn {
		return
	}
	b.agents[info.ID] = info
}

// Agent returns the belief about agent id
func (b *Belief) Agent(id int) (AgentInfo, bool) {
	info, ok := b.agents[id]
	return info, ok
}

// KnownAgents returns the ids of all agents this belief has heard of, ascending
func (b *Belief) KnownAgents() []int {
	ids := make([]int, 0, len(b.agents))
	for id := range b.agents {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Snapshot returns a deep copy suitable for transmission
func (b *Belief) Snapshot() Snapshot {
	s := Snapshot{
		Explored: make(map[string]int, len(b.explored)),
		Links:    make(map[string]KnownLink, len(b.links)),
		Agents:   make(map[int]AgentInfo, len(b.agents)),
	}
	for k, v := range b.explored {
		s.Explored[k] = v
	}
	for k, v := range b.links {
		s.Links[k] = v
	}
	for k, v := range b.agents {
		s.Agents[k] = v
	}
	return s
}

// Merge folds a received snapshot into the belief. Merging is idempotent:
// visits keep the latest turn, links union, and the newest agent entry wins.
func (b *Belief) Merge(s Snapshot) {
	for node, turn := range s.Explored {
		b.MarkVisited(node, turn)
	}
	for _, l := range s.Links {
		b.Learn(l)
	}
	for _, info := range s.Agents {
		b.Remember(info)
	}
}
