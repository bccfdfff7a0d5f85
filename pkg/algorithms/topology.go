package algorithms

// Topology summarises the shape of an undirected graph
type Topology struct {
	Vertices   int `json:"vertices"`
	Edges      int `json:"edges"`
	Components int `json:"components"`
	// CycleRank is the number of independent loops, E - V + C
	CycleRank int `json:"cycle_rank"`
}

// IsTree reports whether the graph is connected and loop free
func (t Topology) IsTree() bool {
	return t.Vertices > 0 && t.Components == 1 && t.CycleRank == 0
}

// AnalyzeTopology counts vertices, edges, components and loops. Neighbors
// must list every undirected edge from both ends.
func AnalyzeTopology[K comparable](g Graph[K]) Topology {
	vertices := g.Vertices()
	degreeSum := 0
	for _, v := range vertices {
		degreeSum += len(g.Neighbors(v))
	}

	t := Topology{
		Vertices:   len(vertices),
		Edges:      degreeSum / 2,
		Components: len(ConnectedComponents(g).Components),
	}
	t.CycleRank = t.Edges - t.Vertices + t.Components
	return t
}

// IsTree reports whether g is connected and loop free
func IsTree[K comparable](g Graph[K]) bool {
	return AnalyzeTopology(g).IsTree()
}
