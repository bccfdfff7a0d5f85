package algorithms

import "math"

// Disperse picks k vertices that are far apart in hops. It starts from first
// and then repeatedly adds the vertex whose nearest chosen vertex is furthest
// away. Unreachable vertices count as infinitely far. Ties keep the order of
// g.Vertices(). Fewer than k vertices are returned only when g is smaller.
func Disperse[K comparable](g Graph[K], first K, k int) []K {
	vertices := g.Vertices()
	if k <= 0 || len(vertices) == 0 {
		return nil
	}

	chosen := []K{first}
	taken := map[K]bool{first: true}
	nearest := make(map[K]int, len(vertices))
	for _, v := range vertices {
		nearest[v] = math.MaxInt
	}
	update := func(src K) {
		dist := HopDistances(g, src)
		for v, d := range dist {
			if d < nearest[v] {
				nearest[v] = d
			}
		}
	}
	update(first)

	for len(chosen) < k && len(chosen) < len(vertices) {
		var best K
		bestDist := -1
		for _, v := range vertices {
			if taken[v] {
				continue
			}
			if nearest[v] > bestDist {
				best, bestDist = v, nearest[v]
			}
		}
		if bestDist < 0 {
			break
		}
		chosen = append(chosen, best)
		taken[best] = true
		update(best)
	}
	return chosen
}
