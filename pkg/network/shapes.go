package network

import (
	"fmt"
	"math"
)

// Cycle builds a ring A-B-...-A with nodes placed on the unit circle.
// Link i joins names[i] and names[i+1].
func Cycle(names ...string) (*Graph, error) {
	if len(names) < 3 {
		return nil, &BuildError{Entity: "graph", Key: "cycle", Reason: "needs at least 3 nodes"}
	}
	b := NewBuilder()
	step := 2 * math.Pi / float64(len(names))
	for i, n := range names {
		angle := float64(i) * step
		b.AddNode(n, KindJunction, Coord{X: math.Cos(angle), Y: math.Sin(angle)})
	}
	for i := range names {
		next := names[(i+1)%len(names)]
		b.AddLink(fmt.Sprintf("P%d", i+1), names[i], next)
	}
	return b.Build()
}

// Line builds a path graph with unit spacing along the x axis. The two ends
// are endpoints, everything else is a junction.
func Line(names ...string) (*Graph, error) {
	if len(names) < 2 {
		return nil, &BuildError{Entity: "graph", Key: "line", Reason: "needs at least 2 nodes"}
	}
	b := NewBuilder()
	for i, n := range names {
		kind := KindJunction
		if i == 0 || i == len(names)-1 {
			kind = KindEndpoint
		}
		b.AddNode(n, kind, Coord{X: float64(i)})
	}
	for i := 0; i < len(names)-1; i++ {
		b.AddLink(fmt.Sprintf("P%d", i+1), names[i], names[i+1])
	}
	return b.Build()
}

// Grid builds a w x h lattice. Nodes are named "r<row>c<col>".
func Grid(w, h int) (*Graph, error) {
	if w < 1 || h < 1 || w*h < 2 {
		return nil, &BuildError{Entity: "graph", Key: "grid", Reason: "needs at least 2 nodes"}
	}
	name := func(r, c int) string { return fmt.Sprintf("r%dc%d", r, c) }
	b := NewBuilder()
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			b.AddNode(name(r, c), KindJunction, Coord{X: float64(c), Y: float64(r)})
		}
	}
	id := 0
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if c+1 < w {
				id++
				b.AddLink(fmt.Sprintf("P%d", id), name(r, c), name(r, c+1))
			}
			if r+1 < h {
				id++
				b.AddLink(fmt.Sprintf("P%d", id), name(r, c), name(r+1, c))
			}
		}
	}
	return b.Build()
}
