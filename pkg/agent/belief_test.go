package agent

import (
	"reflect"
	"testing"
)

func TestBelief_MergeKeepsLatestVisit(t *testing.T) {
	b := newBelief()
	b.MarkVisited("A", 5)
	b.Merge(Snapshot{Explored: map[string]int{"A": 2, "B": 7}})

	if b.LastVisit("A") != 5 || b.LastVisit("B") != 7 {
		t.Errorf("LastVisit A=%d B=%d", b.LastVisit("A"), b.LastVisit("B"))
	}
	if b.LastVisit("C") != -1 {
		t.Errorf("unvisited node LastVisit = %d", b.LastVisit("C"))
	}
	if b.ExploredCount() != 2 {
		t.Errorf("ExploredCount = %d", b.ExploredCount())
	}
}

func TestBelief_MergeIdempotent(t *testing.T) {
	src := newBelief()
	src.MarkVisited("A", 1)
	src.Learn(KnownLink{Name: "P1", From: "A", To: "B"})
	src.Remember(AgentInfo{ID: 4, Node: "A", LeaderID: 4, Turn: 1})

	dst := newBelief()
	dst.Merge(src.Snapshot())
	once := dst.Snapshot()
	dst.Merge(src.Snapshot())

	if !reflect.DeepEqual(once, dst.Snapshot()) {
		t.Error("merging the same snapshot twice changed the belief")
	}
}

func TestBelief_SnapshotDoesNotAlias(t *testing.T) {
	b := newBelief()
	b.MarkVisited("A", 0)
	s := b.Snapshot()
	s.Explored["Z"] = 9
	s.Links["P9"] = KnownLink{Name: "P9", From: "Z", To: "A"}

	if b.Explored("Z") || len(b.KnownLinks()) != 0 {
		t.Error("mutating a snapshot leaked into the belief")
	}
}

func TestBelief_Frontier(t *testing.T) {
	b := newBelief()
	b.MarkVisited("B", 0)
	b.Learn(KnownLink{Name: "P2", From: "B", To: "C"})
	b.Learn(KnownLink{Name: "P1", From: "A", To: "B"})

	if got := b.Frontier(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("Frontier = %v", got)
	}
	b.MarkVisited("A", 1)
	if got := b.Frontier(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("Frontier = %v", got)
	}
}

func TestBelief_KnownMapInvalidatedOnLearn(t *testing.T) {
	b := newBelief()
	b.Learn(KnownLink{Name: "P1", From: "A", To: "B"})
	first := b.KnownMap()
	if len(first.Vertices()) != 2 {
		t.Fatalf("vertices = %v", first.Vertices())
	}
	b.Learn(KnownLink{Name: "P2", From: "B", To: "C"})
	if got := b.KnownMap().Neighbors("B"); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("Neighbors(B) = %v", got)
	}
}

func TestBelief_RememberNewerWins(t *testing.T) {
	b := newBelief()
	b.Remember(AgentInfo{ID: 1, Node: "C", Turn: 6})
	b.Remember(AgentInfo{ID: 1, Node: "A", Turn: 3})
	info, ok := b.Agent(1)
	if !ok || info.Node != "C" {
		t.Errorf("Agent(1) = %+v", info)
	}
	b.Remember(AgentInfo{ID: 0, Turn: 1})
	if got := b.KnownAgents(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("KnownAgents = %v", got)
	}
}
