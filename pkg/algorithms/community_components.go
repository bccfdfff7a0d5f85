package algorithms

import (
	"container/list"
)

// ConnectedComponents finds all connected components in the graph.
// Components are numbered in order of their first vertex in g.Vertices(),
// and vertices within a component are listed in BFS order.
func ConnectedComponents[K comparable](g Graph[K]) *ComponentResult[K] {
	visited := make(map[K]bool)
	membership := make(map[K]int)
	components := make([]*Component[K], 0)

	// BFS to find each component
	for _, start := range g.Vertices() {
		if visited[start] {
			continue
		}

		// New component found
		component := &Component[K]{ID: len(components)}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			v := queue.Remove(queue.Front()).(K)
			component.Vertices = append(component.Vertices, v)
			membership[v] = component.ID

			for _, nb := range g.Neighbors(v) {
				if !visited[nb] {
					visited[nb] = true
					queue.PushBack(nb)
				}
			}
		}

		components = append(components, component)
	}

	return &ComponentResult[K]{
		Components: components,
		Membership: membership,
	}
}

// IsConnected reports whether g has at most one component
func IsConnected[K comparable](g Graph[K]) bool {
	return len(ConnectedComponents(g).Components) <= 1
}
