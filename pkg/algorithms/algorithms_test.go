package algorithms

import (
	"reflect"
	"testing"

	"github.com/dd0wney/pipeswarm/pkg/network"
)

func TestConnectedComponents_Network(t *testing.T) {
	g, err := network.NewBuilder().
		AddNode("A", network.KindJunction, network.Coord{}).
		AddNode("B", network.KindJunction, network.Coord{X: 1}).
		AddNode("C", network.KindJunction, network.Coord{X: 2}).
		AddNode("X", network.KindJunction, network.Coord{Y: 5}).
		AddNode("Y", network.KindJunction, network.Coord{Y: 6}).
		AddLink("L1", "A", "B").
		AddLink("L2", "B", "C").
		AddLink("L3", "X", "Y").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	result := ConnectedComponents[string](g.ToUndirected())
	if len(result.Components) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(result.Components))
	}
	if !reflect.DeepEqual(result.Components[0].Vertices, []string{"A", "B", "C"}) {
		t.Errorf("first component = %v", result.Components[0].Vertices)
	}
	if result.Membership["Y"] != 1 || result.Membership["A"] != 0 {
		t.Errorf("unexpected membership %v", result.Membership)
	}
	if IsConnected[string](g.ToUndirected()) {
		t.Error("graph should not be connected")
	}
}

func TestConnectedComponents_Isolated(t *testing.T) {
	g := NewAdjacencyGraph[int]()
	g.AddVertex(3)
	g.AddVertex(1)
	g.AddEdge(1, 2)

	result := ConnectedComponents[int](g)
	if len(result.Components) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(result.Components))
	}
	if !reflect.DeepEqual(result.Components[0].Vertices, []int{3}) {
		t.Errorf("components should follow vertex order, got %v", result.Components[0].Vertices)
	}
}

func TestShortestPath(t *testing.T) {
	g, err := network.Grid(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	u := g.ToUndirected()

	path := ShortestPath[string](u, "r0c0", "r2c3")
	if len(path) != 6 {
		t.Fatalf("Expected 6 vertices on path, got %v", path)
	}
	if path[0] != "r0c0" || path[len(path)-1] != "r2c3" {
		t.Errorf("path endpoints wrong: %v", path)
	}
	for i := 1; i < len(path); i++ {
		if _, err := g.Link(path[i-1], path[i]); err != nil {
			t.Errorf("path step %s -> %s is not a link", path[i-1], path[i])
		}
	}

	again := ShortestPath[string](u, "r0c0", "r2c3")
	if !reflect.DeepEqual(path, again) {
		t.Errorf("ShortestPath is not deterministic: %v vs %v", path, again)
	}

	if p := ShortestPath[string](u, "r1c1", "r1c1"); !reflect.DeepEqual(p, []string{"r1c1"}) {
		t.Errorf("trivial path = %v", p)
	}
}

func TestShortestPath_Adjacent(t *testing.T) {
	g := NewAdjacencyGraph[string]()
	g.AddEdge("a", "b")
	if p := ShortestPath[string](g, "a", "b"); !reflect.DeepEqual(p, []string{"a", "b"}) {
		t.Errorf("path = %v", p)
	}
}

func TestShortestPath_NoPath(t *testing.T) {
	g := NewAdjacencyGraph[string]()
	g.AddEdge("a", "b")
	g.AddEdge("c", "d")
	if p := ShortestPath[string](g, "a", "d"); p != nil {
		t.Errorf("expected nil path, got %v", p)
	}
}

func TestHopDistances(t *testing.T) {
	g, err := network.Cycle("A", "B", "C", "D", "E")
	if err != nil {
		t.Fatal(err)
	}
	d := HopDistances[string](g.ToUndirected(), "A")
	want := map[string]int{"A": 0, "B": 1, "E": 1, "C": 2, "D": 2}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("HopDistances = %v, want %v", d, want)
	}
}
