package algorithms

// Graph is the minimal undirected view the traversal algorithms need.
// Neighbors must return vertices in a stable order; results of every
// algorithm in this package are deterministic for a given order.
type Graph[K comparable] interface {
	Vertices() []K
	Neighbors(v K) []K
}

// Component is one connected component
type Component[K comparable] struct {
	ID       int
	Vertices []K
}

// ComponentResult contains all components and a reverse index
type ComponentResult[K comparable] struct {
	Components []*Component[K]
	Membership map[K]int // Vertex -> component ID
}

// AdjacencyGraph is a Graph backed by an explicit vertex order and adjacency map.
type AdjacencyGraph[K comparable] struct {
	Order []K
	Adj   map[K][]K
}

// NewAdjacencyGraph creates an empty adjacency graph
func NewAdjacencyGraph[K comparable]() *AdjacencyGraph[K] {
	return &AdjacencyGraph[K]{Adj: make(map[K][]K)}
}

// AddVertex adds v if it is not present yet
func (g *AdjacencyGraph[K]) AddVertex(v K) {
	if _, ok := g.Adj[v]; ok {
		return
	}
	g.Order = append(g.Order, v)
	g.Adj[v] = nil
}

// AddEdge adds an undirected edge, creating vertices as needed
func (g *AdjacencyGraph[K]) AddEdge(a, b K) {
	g.AddVertex(a)
	g.AddVertex(b)
	g.Adj[a] = append(g.Adj[a], b)
	g.Adj[b] = append(g.Adj[b], a)
}

// Vertices implements Graph
func (g *AdjacencyGraph[K]) Vertices() []K { return g.Order }

// Neighbors implements Graph
func (g *AdjacencyGraph[K]) Neighbors(v K) []K { return g.Adj[v] }
