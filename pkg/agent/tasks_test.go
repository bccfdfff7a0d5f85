package agent

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAssignTasks_ThreeAgentsTwoTasks(t *testing.T) {
	tasks := []Task{FrontierTask("X"), FrontierTask("Y")}
	candidates := []Candidate{
		{ID: 2, Distances: map[string]int{"X": 1, "Y": 3}},
		{ID: 0, Distances: map[string]int{"X": 1, "Y": 3}},
		{ID: 1, Distances: map[string]int{"X": 1, "Y": 3}},
	}

	got := AssignTasks(candidates, tasks)
	want := Assignment{0: FrontierTask("X"), 1: FrontierTask("Y")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignTasks = %v, want %v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Error(err)
	}
	if id, ok := got.Holder("explore:Y"); !ok || id != 1 {
		t.Errorf("Holder(Y) = %d, %v", id, ok)
	}
}

func TestAssignTasks_NearestWins(t *testing.T) {
	tasks := []Task{FrontierTask("X"), FrontierTask("Y")}
	candidates := []Candidate{
		{ID: 0, Distances: map[string]int{"X": 1, "Y": 4}},
		{ID: 2, Distances: map[string]int{"Y": 0}},
	}
	got := AssignTasks(candidates, tasks)
	want := Assignment{0: FrontierTask("X"), 2: FrontierTask("Y")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignTasks = %v, want %v", got, want)
	}
}

func TestAssignTasks_Empty(t *testing.T) {
	if got := AssignTasks(nil, []Task{FrontierTask("X")}); len(got) != 0 {
		t.Errorf("no candidates should give no assignment, got %v", got)
	}
	if got := AssignTasks([]Candidate{{ID: 1}}, nil); len(got) != 0 {
		t.Errorf("no tasks should give no assignment, got %v", got)
	}
}

func TestAssignment_ValidateDuplicate(t *testing.T) {
	a := Assignment{0: FrontierTask("X"), 3: FrontierTask("X")}
	if err := a.Validate(); err == nil {
		t.Error("expected duplicate task error")
	}
}

func TestAssignTasks_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	anchors := []string{"A", "B", "C", "D", "E"}
	build := func(nAgents, nTasks int, dists []int) ([]Candidate, []Task) {
		var cs []Candidate
		for i := 0; i < nAgents; i++ {
			d := make(map[string]int)
			for j, a := range anchors {
				d[a] = dists[(i*len(anchors)+j)%len(dists)]
			}
			cs = append(cs, Candidate{ID: i, Distances: d})
		}
		var ts []Task
		for j := 0; j < nTasks; j++ {
			ts = append(ts, FrontierTask(anchors[j]))
		}
		return cs, ts
	}

	properties.Property("assignment is conflict free and maximal", prop.ForAll(
		func(nAgents, nTasks int, dists []int) bool {
			cs, ts := build(nAgents, nTasks, dists)
			got := AssignTasks(cs, ts)
			if got.Validate() != nil {
				return false
			}
			want := nAgents
			if nTasks < want {
				want = nTasks
			}
			return len(got) == want
		},
		gen.IntRange(0, 6),
		gen.IntRange(0, 5),
		gen.SliceOfN(30, gen.IntRange(0, 10)),
	))

	properties.Property("assignment is independent of input order and repeatable", prop.ForAll(
		func(nAgents, nTasks int, dists []int) bool {
			cs, ts := build(nAgents, nTasks, dists)
			first := AssignTasks(cs, ts)

			rcs := make([]Candidate, len(cs))
			for i := range cs {
				rcs[len(cs)-1-i] = cs[i]
			}
			rts := make([]Task, len(ts))
			for i := range ts {
				rts[len(ts)-1-i] = ts[i]
			}
			return reflect.DeepEqual(first, AssignTasks(rcs, rts)) &&
				reflect.DeepEqual(first, AssignTasks(cs, ts))
		},
		gen.IntRange(0, 6),
		gen.IntRange(0, 5),
		gen.SliceOfN(30, gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}
