package network

// Builder assembles a Graph from an external network description.
// It is not safe for concurrent use.
type Builder struct {
	nodes     []*Node
	nodeIndex map[string]*Node
	links     []*Link
	linkIndex map[string]*Link
	order     map[string][]string
	errs      []error
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		nodeIndex: make(map[string]*Node),
		linkIndex: make(map[string]*Link),
		order:     make(map[string][]string),
	}
}

// AddNode registers a node. Duplicate names are reported by Build.
func (b *Builder) AddNode(name string, kind Kind, coord Coord) *Builder {
	if name == "" {
		b.errs = append(b.errs, &BuildError{Entity: "node", Key: name, Reason: "empty name"})
		return b
	}
	if _, exists := b.nodeIndex[name]; exists {
		b.errs = append(b.errs, &BuildError{Entity: "node", Key: name, Reason: "duplicate name"})
		return b
	}
	n := &Node{Name: name, Kind: kind, Coord: coord}
	b.nodes = append(b.nodes, n)
	b.nodeIndex[name] = n
	return b
}

// AddLink registers an undirected link between two existing nodes.
func (b *Builder) AddLink(name, from, to string) *Builder {
	if _, exists := b.linkIndex[name]; exists {
		b.errs = append(b.errs, &BuildError{Entity: "link", Key: name, Reason: "duplicate name"})
		return b
	}
	l := &Link{Name: name, From: from, To: to}
	b.links = append(b.links, l)
	b.linkIndex[name] = l
	return b
}

// SetLinkOrder overrides the incident link order of a node. The list must be
// a permutation of the links that touch the node.
func (b *Builder) SetLinkOrder(node string, links ...string) *Builder {
	b.order[node] = append([]string(nil), links...)
	return b
}

// Build validates the description and returns the immutable graph.
func (b *Builder) Build() (*Graph, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	// Fresh copies keep the graph independent of the builder and of later
	// Build calls.
	nodes := make([]*Node, len(b.nodes))
	index := make(map[string]*Node, len(b.nodes))
	for i, n := range b.nodes {
		nodes[i] = &Node{Name: n.Name, Kind: n.Kind, Coord: n.Coord}
		index[n.Name] = nodes[i]
	}
	links := make([]*Link, len(b.links))

	pairs := make(map[[2]string]string, len(b.links))
	for i, bl := range b.links {
		l := &Link{Name: bl.Name, From: bl.From, To: bl.To}
		links[i] = l
		from, ok := index[l.From]
		if !ok {
			return nil, &BuildError{Entity: "link", Key: l.Name, Reason: "unknown endpoint " + l.From}
		}
		to, ok := index[l.To]
		if !ok {
			return nil, &BuildError{Entity: "link", Key: l.Name, Reason: "unknown endpoint " + l.To}
		}
		if l.From == l.To {
			return nil, &BuildError{Entity: "link", Key: l.Name, Reason: "self loop"}
		}
		key := pairKey(l.From, l.To)
		if other, dup := pairs[key]; dup {
			return nil, &BuildError{Entity: "link", Key: l.Name, Reason: "parallel to " + other}
		}
		pairs[key] = l.Name

		l.Length = Distance(from.Coord, to.Coord)
		from.Links = append(from.Links, l.Name)
		to.Links = append(to.Links, l.Name)
	}

	for name, order := range b.order {
		n, ok := index[name]
		if !ok {
			return nil, &BuildError{Entity: "node", Key: name, Reason: "link order for unknown node"}
		}
		if !samePermutation(n.Links, order) {
			return nil, &BuildError{Entity: "node", Key: name, Reason: "link order is not a permutation of incident links"}
		}
		n.Links = append([]string(nil), order...)
	}

	return newGraph(nodes, links, pairs), nil
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
		if seen[s] < 0 {
			return false
		}
	}
	return true
}
