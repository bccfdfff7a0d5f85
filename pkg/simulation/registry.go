package simulation

import (
	"sort"

	"github.com/dd0wney/pipeswarm/pkg/agent"
	"github.com/dd0wney/pipeswarm/pkg/network"
)

// positions answers proximity queries over the agents' current nodes. It is
// rebuilt at the start of every meeting phase.
type positions struct {
	net    *network.Graph
	byNode map[string][]int
	nodes  []string // occupied, sorted
	all    []int
}

func newPositions(net *network.Graph, agents []*agent.Agent) *positions {
	p := &positions{net: net, byNode: make(map[string][]int)}
	for _, a := range agents {
		node := a.Position()
		if _, ok := p.byNode[node]; !ok {
			p.nodes = append(p.nodes, node)
		}
		p.byNode[node] = append(p.byNode[node], a.ID())
		p.all = append(p.all, a.ID())
	}
	sort.Strings(p.nodes)
	return p
}

// Near implements agent.Registry
func (p *positions) Near(node string, radius float64) []int {
	switch {
	case radius < 0:
		return append([]int(nil), p.all...)
	case radius == 0:
		return append([]int(nil), p.byNode[node]...)
	}

	var out []int
	for _, other := range p.nodes {
		d, err := p.net.DistanceBetween(node, other)
		if err != nil || d > radius {
			continue
		}
		out = append(out, p.byNode[other]...)
	}
	sort.Ints(out)
	return out
}

var _ agent.Registry = (*positions)(nil)
