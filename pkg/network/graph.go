package network

// Graph is the immutable pipe network. All methods are safe for concurrent
// use because nothing mutates the graph after Build. Nodes and links handed
// out by the accessors are copies.
type Graph struct {
	nodes     []*Node
	nodeIndex map[string]*Node
	links     []*Link
	linkIndex map[string]*Link
	pairs     map[[2]string]string
	adjacency map[string][]string
}

func newGraph(nodes []*Node, links []*Link, pairs map[[2]string]string) *Graph {
	g := &Graph{
		nodes:     nodes,
		nodeIndex: make(map[string]*Node, len(nodes)),
		links:     links,
		linkIndex: make(map[string]*Link, len(links)),
		pairs:     pairs,
		adjacency: make(map[string][]string, len(nodes)),
	}
	for _, n := range nodes {
		g.nodeIndex[n.Name] = n
	}
	for _, l := range links {
		g.linkIndex[l.Name] = l
	}

	// Adjacency follows each node's incident link order
	for _, n := range nodes {
		neighbors := make([]string, 0, len(n.Links))
		for _, ln := range n.Links {
			neighbors = append(neighbors, g.linkIndex[ln].Other(n.Name))
		}
		g.adjacency[n.Name] = neighbors
	}
	return g
}

// NumNodes returns the number of nodes
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumLinks returns the number of links
func (g *Graph) NumLinks() int { return len(g.links) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// NodeNames returns node names in insertion order.
func (g *Graph) NodeNames() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Name
	}
	return out
}

// Links returns the links in insertion order.
func (g *Graph) Links() []*Link {
	out := make([]*Link, len(g.links))
	for i, l := range g.links {
		c := *l
		out[i] = &c
	}
	return out
}

// HasNode reports whether name is a node of the graph
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodeIndex[name]
	return ok
}

// Node returns the named node.
func (g *Graph) Node(name string) (*Node, error) {
	n, ok := g.nodeIndex[name]
	if !ok {
		return nil, nodeNotFound(name)
	}
	return n.clone(), nil
}

// Link returns the link joining a and b in either direction.
func (g *Graph) Link(a, b string) (*Link, error) {
	name, ok := g.pairs[pairKey(a, b)]
	if !ok {
		return nil, linkNotFound(a + "-" + b)
	}
	c := *g.linkIndex[name]
	return &c, nil
}

// LinkByName returns the named link.
func (g *Graph) LinkByName(name string) (*Link, error) {
	l, ok := g.linkIndex[name]
	if !ok {
		return nil, linkNotFound(name)
	}
	c := *l
	return &c, nil
}

// Across returns the node reached from node by following link.
func (g *Graph) Across(node, link string) (string, error) {
	l, ok := g.linkIndex[link]
	if !ok {
		return "", linkNotFound(link)
	}
	other := l.Other(node)
	if other == "" {
		return "", linkNotFound(node + "/" + link)
	}
	return other, nil
}

// Neighbors returns the nodes adjacent to name. The order is the node's
// incident link order and never changes for the lifetime of the graph.
func (g *Graph) Neighbors(name string) ([]*Node, error) {
	adj, ok := g.adjacency[name]
	if !ok {
		return nil, nodeNotFound(name)
	}
	out := make([]*Node, len(adj))
	for i, nb := range adj {
		out[i] = g.nodeIndex[nb].clone()
	}
	return out, nil
}

// NeighborNames is Neighbors returning names only.
func (g *Graph) NeighborNames(name string) ([]string, error) {
	adj, ok := g.adjacency[name]
	if !ok {
		return nil, nodeNotFound(name)
	}
	return append([]string(nil), adj...), nil
}

// Degree returns the number of links incident to name, or -1 if absent.
func (g *Graph) Degree(name string) int {
	adj, ok := g.adjacency[name]
	if !ok {
		return -1
	}
	return len(adj)
}

// Adjacency returns a copy of the cached adjacency list.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.adjacency))
	for k, v := range g.adjacency {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Ports returns the canonical ports of a node: label i is the i-th incident link.
func (g *Graph) Ports(name string) ([]Port, error) {
	n, ok := g.nodeIndex[name]
	if !ok {
		return nil, nodeNotFound(name)
	}
	ports := make([]Port, len(n.Links))
	for i, l := range n.Links {
		ports[i] = Port{Node: name, Link: l, Label: i}
	}
	return ports, nil
}

// DistanceBetween returns the Euclidean distance between two nodes.
func (g *Graph) DistanceBetween(a, b string) (float64, error) {
	na, ok := g.nodeIndex[a]
	if !ok {
		return 0, nodeNotFound(a)
	}
	nb, ok := g.nodeIndex[b]
	if !ok {
		return 0, nodeNotFound(b)
	}
	return Distance(na.Coord, nb.Coord), nil
}

// ToUndirected exposes the structure as a plain undirected graph for
// generic traversal algorithms.
func (g *Graph) ToUndirected() *Undirected {
	return &Undirected{order: g.NodeNames(), adj: g.adjacency}
}

// Undirected is a read-only string-keyed adjacency view.
type Undirected struct {
	order []string
	adj   map[string][]string
}

// Vertices returns the vertices in graph insertion order
func (u *Undirected) Vertices() []string { return u.order }

// Neighbors returns the neighbors of v in stable order
func (u *Undirected) Neighbors(v string) []string { return u.adj[v] }

// Degree returns the degree of v
func (u *Undirected) Degree(v string) int { return len(u.adj[v]) }
