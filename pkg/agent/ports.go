package agent

import (
	"math/rand/v2"
	"sort"
)

// PortTable holds an agent's private port numbering: node -> link -> label.
// Labels at a node are always a permutation of 0..degree-1.
type PortTable struct {
	labels map[string]map[string]int
}

func newPortTable() *PortTable {
	return &PortTable{labels: make(map[string]map[string]int)}
}

// Has reports whether the agent has numbered the ports at node
func (p *PortTable) Has(node string) bool {
	_, ok := p.labels[node]
	return ok
}

// assign numbers the incident links of node in an arbitrary order drawn from rng.
// Already numbered nodes keep their labels.
func (p *PortTable) assign(node string, links []string, rng *rand.Rand) {
	if p.Has(node) {
		return
	}
	perm := rng.Perm(len(links))
	m := make(map[string]int, len(links))
	for i, l := range links {
		m[l] = perm[i]
	}
	p.labels[node] = m
}

// Label returns the label of link at node
func (p *PortTable) Label(node, link string) (int, bool) {
	l, ok := p.labels[node][link]
	return l, ok
}

// Labels returns a copy of the numbering at node
func (p *PortTable) Labels(node string) map[string]int {
	src, ok := p.labels[node]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Ordered returns the links at node sorted by label
func (p *PortTable) Ordered(node string) []string {
	m := p.labels[node]
	out := make([]string, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return m[out[i]] < m[out[j]] })
	return out
}

// Relabel replaces the numbering at node with canonical and reports whether
// anything changed.
func (p *PortTable) Relabel(node string, canonical map[string]int) bool {
	cur := p.labels[node]
	if SameLabels(cur, canonical) {
		return false
	}
	m := make(map[string]int, len(canonical))
	for k, v := range canonical {
		m[k] = v
	}
	p.labels[node] = m
	return true
}

// Nodes returns the nodes the agent has numbered, sorted
func (p *PortTable) Nodes() []string {
	out := make([]string, 0, len(p.labels))
	for n := range p.labels {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SameLabels reports whether two numberings are identical
func SameLabels(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
