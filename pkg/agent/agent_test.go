package agent

import (
	"reflect"
	"sort"
	"testing"

	"github.com/dd0wney/pipeswarm/pkg/network"
)

func mustCycle(t *testing.T) *network.Graph {
	t.Helper()
	g, err := network.Cycle("A", "B", "C", "D", "E")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestAgent_StartCountsAsVisited(t *testing.T) {
	a := New(3, "A", nil, 1)
	if !a.HasVisited("A") || !a.Belief().Explored("A") {
		t.Error("start node should be visited")
	}
	if a.Role() != RoleUnassigned || a.LeaderID() != 3 {
		t.Errorf("fresh agent role=%v leader=%d", a.Role(), a.LeaderID())
	}
	if a.Policy() != PolicyRightHand {
		t.Errorf("default policy = %s", a.Policy())
	}
}

func TestAgent_ObserveAssignsPrivatePorts(t *testing.T) {
	g := mustCycle(t)
	a := New(0, "A", nil, 42)
	if err := a.Observe(g); err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	labels := a.Ports().Labels("A")
	got := []int{labels["P1"], labels["P5"]}
	sort.Ints(got)
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("labels at A = %v, want a permutation of 0..1", labels)
	}
	if !reflect.DeepEqual(a.Belief().Frontier(), []string{"B", "E"}) {
		t.Errorf("frontier = %v", a.Belief().Frontier())
	}

	// Same seed and id give the same numbering
	b := New(0, "A", nil, 42)
	_ = b.Observe(g)
	if !SameLabels(labels, b.Ports().Labels("A")) {
		t.Error("port numbering is not reproducible")
	}
}

func TestAgent_DecideStartsAtLabelZero(t *testing.T) {
	g := mustCycle(t)
	a := New(0, "A", nil, 7)
	_ = a.Observe(g)

	next, err := a.Decide(g, 1)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	want, _ := g.Across("A", a.Ports().Ordered("A")[0])
	if next != want {
		t.Errorf("Decide = %s, want %s", next, want)
	}
}

func TestAgent_WalkLineToDeadEnd(t *testing.T) {
	g, err := network.Line("A", "B", "C")
	if err != nil {
		t.Fatal(err)
	}
	a := New(1, "A", nil, 0)

	for turn := 1; turn <= 2; turn++ {
		if err := a.Observe(g); err != nil {
			t.Fatal(err)
		}
		next, err := a.Decide(g, turn)
		if err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
		a.Move(next, turn)
	}

	if a.Position() != "C" || a.Previous() != "B" {
		t.Fatalf("position = %s (prev %s), want C", a.Position(), a.Previous())
	}
	if !reflect.DeepEqual(a.Visited(), []string{"A", "B", "C"}) {
		t.Errorf("Visited = %v", a.Visited())
	}

	_ = a.Observe(g)
	if a.Status() != StatusDone || a.Alive() {
		t.Errorf("status = %v, want done once nothing is left to explore", a.Status())
	}

	// The rule still reverses out of the dead end
	next, err := a.Decide(g, 3)
	if err != nil || next != "B" {
		t.Errorf("Decide at dead end = %s, %v", next, err)
	}
}

func TestAgent_VisitedIsOrderedSet(t *testing.T) {
	a := New(0, "A", nil, 0)
	a.Move("B", 1)
	a.Move("A", 2)
	a.Move("B", 3)
	if !reflect.DeepEqual(a.Visited(), []string{"A", "B"}) {
		t.Errorf("Visited = %v", a.Visited())
	}
	if !reflect.DeepEqual(a.Path(), []string{"A", "B", "A", "B"}) {
		t.Errorf("Path = %v", a.Path())
	}
	if a.Belief().LastVisit("B") != 3 {
		t.Errorf("LastVisit(B) = %d", a.Belief().LastVisit("B"))
	}
}

func TestAgent_TaskRouting(t *testing.T) {
	g := mustCycle(t)
	a := New(0, "A", nil, 11)
	_ = a.Observe(g)

	// Another agent explored E and D and knows the links towards C
	a.MergeBelief(Snapshot{
		Explored: map[string]int{"E": 1, "D": 2},
		Links: map[string]KnownLink{
			"P4": {Name: "P4", From: "D", To: "E"},
			"P3": {Name: "P3", From: "C", To: "D"},
		},
	})
	task := FrontierTask("C")
	a.ReceiveTask(&task)

	next, err := a.Decide(g, 3)
	if err != nil {
		t.Fatal(err)
	}
	if next != "E" {
		t.Errorf("Decide with task = %s, want E", next)
	}

	a.Move("E", 3)
	a.Move("D", 4)
	a.Move("C", 5)
	if _, held := a.Task(); held {
		t.Error("task should be complete after reaching the anchor")
	}
	if !reflect.DeepEqual(a.Completed(), []string{"explore:C"}) {
		t.Errorf("Completed = %v", a.Completed())
	}
}

func TestAgent_StaleTaskDropped(t *testing.T) {
	g := mustCycle(t)
	a := New(0, "A", nil, 1)
	_ = a.Observe(g)
	task := FrontierTask("B")
	a.ReceiveTask(&task)

	a.MergeBelief(Snapshot{Explored: map[string]int{"B": 4}})
	if _, held := a.Task(); held {
		t.Error("task for an explored anchor should be dropped")
	}
}

type fakeRegistry map[string][]int

func (f fakeRegistry) Near(node string, radius float64) []int { return f[node] }

func TestAgent_Ping(t *testing.T) {
	a := New(2, "A", nil, 0)
	reg := fakeRegistry{"A": {0, 2, 5}}
	if got := a.Ping(reg, 0); !reflect.DeepEqual(got, []int{0, 5}) {
		t.Errorf("Ping = %v, want [0 5]", got)
	}
}

func TestAgent_AdoptLeader(t *testing.T) {
	a := New(2, "A", nil, 0)
	a.AdoptLeader(2)
	if a.Role() != RoleLeader {
		t.Errorf("role = %v", a.Role())
	}
	a.AdoptLeader(0)
	if a.Role() != RoleFollower || a.LeaderID() != 0 {
		t.Errorf("role = %v leader = %d", a.Role(), a.LeaderID())
	}
}
