package algorithms

import (
	"container/list"
)

// ShortestPath finds a fewest-hops path between two vertices using
// bidirectional BFS. It returns nil when no path exists. The path includes
// both endpoints.
func ShortestPath[K comparable](g Graph[K], start, end K) []K {
	if start == end {
		return []K{start}
	}

	// Forward search from start
	forwardQueue := list.New()
	forwardVisited := map[K]K{start: start} // vertex -> parent
	forwardQueue.PushBack(start)

	// Backward search from end
	backwardQueue := list.New()
	backwardVisited := map[K]K{end: end}
	backwardQueue.PushBack(end)

	for forwardQueue.Len() > 0 && backwardQueue.Len() > 0 {
		if meeting, ok := expandFrontier(g, forwardQueue, forwardVisited, backwardVisited); ok {
			return reconstructPath(meeting, forwardVisited, backwardVisited)
		}
		if meeting, ok := expandFrontier(g, backwardQueue, backwardVisited, forwardVisited); ok {
			return reconstructPath(meeting, forwardVisited, backwardVisited)
		}
	}

	return nil // No path found
}

// expandFrontier expands one level of BFS from the queue
func expandFrontier[K comparable](g Graph[K], queue *list.List, visited, otherVisited map[K]K) (K, bool) {
	levelSize := queue.Len()
	for i := 0; i < levelSize; i++ {
		current := queue.Remove(queue.Front()).(K)

		for _, nb := range g.Neighbors(current) {
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = current
			// Check if we've met the other search
			if _, found := otherVisited[nb]; found {
				return nb, true
			}
			queue.PushBack(nb)
		}
	}

	var zero K
	return zero, false
}

// reconstructPath builds the path from start to end through the meeting vertex
func reconstructPath[K comparable](meeting K, forwardVisited, backwardVisited map[K]K) []K {
	// Build forward path (start -> meeting)
	forwardPath := make([]K, 0)
	v := meeting
	for v != forwardVisited[v] {
		forwardPath = append(forwardPath, v)
		v = forwardVisited[v]
	}
	forwardPath = append(forwardPath, v)

	for i, j := 0, len(forwardPath)-1; i < j; i, j = i+1, j-1 {
		forwardPath[i], forwardPath[j] = forwardPath[j], forwardPath[i]
	}

	// Build backward path (meeting -> end), excluding meeting
	v = backwardVisited[meeting]
	if v == meeting {
		return forwardPath
	}
	for v != backwardVisited[v] {
		forwardPath = append(forwardPath, v)
		v = backwardVisited[v]
	}
	return append(forwardPath, v)
}

// HopDistances returns the BFS hop count from source to every reachable vertex
func HopDistances[K comparable](g Graph[K], source K) map[K]int {
	distances := map[K]int{source: 0}

	queue := list.New()
	queue.PushBack(source)

	for queue.Len() > 0 {
		current := queue.Remove(queue.Front()).(K)
		d := distances[current]

		for _, nb := range g.Neighbors(current) {
			if _, seen := distances[nb]; !seen {
				distances[nb] = d + 1
				queue.PushBack(nb)
			}
		}
	}

	return distances
}
