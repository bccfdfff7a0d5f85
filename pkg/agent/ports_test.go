package agent

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestPortTable_AssignIsStable(t *testing.T) {
	p := newPortTable()
	rng := rand.New(rand.NewPCG(1, 2))
	p.assign("X", []string{"L1", "L2", "L3"}, rng)
	first := p.Labels("X")
	p.assign("X", []string{"L1", "L2", "L3"}, rng)

	if !SameLabels(first, p.Labels("X")) {
		t.Error("second assign changed existing labels")
	}
	seen := make(map[int]bool)
	for _, l := range first {
		seen[l] = true
	}
	if len(seen) != 3 || !seen[0] || !seen[1] || !seen[2] {
		t.Errorf("labels %v are not a permutation of 0..2", first)
	}
}

func TestPortTable_OrderedAndRelabel(t *testing.T) {
	p := newPortTable()
	p.labels["X"] = map[string]int{"L1": 2, "L2": 0, "L3": 1}
	if got := p.Ordered("X"); !reflect.DeepEqual(got, []string{"L2", "L3", "L1"}) {
		t.Errorf("Ordered = %v", got)
	}

	canonical := map[string]int{"L1": 0, "L2": 1, "L3": 2}
	if !p.Relabel("X", canonical) {
		t.Error("Relabel should report a change")
	}
	if p.Relabel("X", canonical) {
		t.Error("second Relabel should be a no-op")
	}
	canonical["L1"] = 9
	if l, _ := p.Label("X", "L1"); l != 0 {
		t.Error("Relabel must copy the canonical map")
	}
	if got := p.Nodes(); !reflect.DeepEqual(got, []string{"X"}) {
		t.Errorf("Nodes = %v", got)
	}
}

func TestSameLabels(t *testing.T) {
	if !SameLabels(nil, map[string]int{}) {
		t.Error("nil and empty should match")
	}
	if SameLabels(map[string]int{"a": 0}, map[string]int{"b": 0}) {
		t.Error("different links should not match")
	}
}
