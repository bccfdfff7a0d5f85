package algorithms

import (
	"container/heap"
	"container/list"
)

// brandes runs a single O(VE) Brandes pass and returns the raw node
// betweenness. Every unordered pair is counted once from each end.
func brandes[K comparable](g Graph[K]) map[K]float64 {
	vertices := g.Vertices()
	betweenness := make(map[K]float64, len(vertices))
	for _, v := range vertices {
		betweenness[v] = 0.0
	}

	for _, source := range vertices {
		stack := make([]K, 0, len(vertices))
		predecessors := make(map[K][]K, len(vertices))
		sigma := map[K]float64{source: 1.0}
		distance := map[K]int{source: 0}

		queue := list.New()
		queue.PushBack(source)

		for queue.Len() > 0 {
			v := queue.Remove(queue.Front()).(K)
			stack = append(stack, v)

			for _, w := range g.Neighbors(v) {
				if _, seen := distance[w]; !seen {
					queue.PushBack(w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation
		delta := make(map[K]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, pred := range predecessors[w] {
				delta[pred] += (sigma[pred] / sigma[w]) * (1.0 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	return betweenness
}

// BetweennessCentrality computes normalised betweenness centrality for all
// vertices: how often a vertex lies on shortest paths between other vertices.
// A pipe junction with a high score is a chokepoint.
func BetweennessCentrality[K comparable](g Graph[K]) map[K]float64 {
	betweenness := brandes(g)

	if n := len(g.Vertices()); n > 2 {
		normFactor := 1.0 / float64((n-1)*(n-2))
		for v := range betweenness {
			betweenness[v] *= normFactor
		}
	}

	return betweenness
}

// Ranked holds a vertex with its score
type Ranked[K comparable] struct {
	Vertex K       `json:"vertex"`
	Score  float64 `json:"score"`
	order  int
}

// rankedHeap is a min-heap by score; among equal scores the later vertex
// sorts lower so that it is evicted first.
type rankedHeap[K comparable] []Ranked[K]

func (h rankedHeap[K]) Len() int { return len(h) }
func (h rankedHeap[K]) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].order > h[j].order
}
func (h rankedHeap[K]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedHeap[K]) Push(x any) {
	*h = append(*h, x.(Ranked[K]))
}

func (h *rankedHeap[K]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopK returns the k highest scoring vertices in descending order. Ties keep
// the order of g.Vertices().
func TopK[K comparable](g Graph[K], scores map[K]float64, k int) []Ranked[K] {
	if k <= 0 {
		return nil
	}
	h := &rankedHeap[K]{}
	for i, v := range g.Vertices() {
		r := Ranked[K]{Vertex: v, Score: scores[v], order: i}
		if h.Len() < k {
			heap.Push(h, r)
			continue
		}
		if top := (*h)[0]; r.Score > top.Score {
			heap.Pop(h)
			heap.Push(h, r)
		}
	}

	out := make([]Ranked[K], h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Ranked[K])
	}
	return out
}
