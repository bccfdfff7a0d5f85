package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/dd0wney/pipeswarm/pkg/network"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

func gridConfig(t *testing.T) (*network.Graph, simulation.Config) {
	t.Helper()
	g, err := network.Grid(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	cfg := simulation.DefaultConfig()
	cfg.Agents = 2
	cfg.Starts = []string{"r0c0", "r2c3"}
	cfg.Policy = "random"
	cfg.MaxTurns = 200
	cfg.Workers = 1
	return g, cfg
}

func TestSweep(t *testing.T) {
	g, cfg := gridConfig(t)
	seeds := Seeds(10, 6)

	report, err := Sweep(context.Background(), g, cfg, seeds, Options{Parallel: 3})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(report.Runs) != len(seeds) {
		t.Fatalf("got %d runs, want %d", len(report.Runs), len(seeds))
	}
	ids := make(map[string]bool)
	for i, r := range report.Runs {
		if r.Seed != seeds[i] {
			t.Errorf("run %d seed = %d, want %d", i, r.Seed, seeds[i])
		}
		if ids[r.RunID] {
			t.Errorf("duplicate run id %s", r.RunID)
		}
		ids[r.RunID] = true
		if r.Coverage < report.Coverage.Min || r.Coverage > report.Coverage.Max {
			t.Errorf("run %d coverage %v outside [%v, %v]", i, r.Coverage, report.Coverage.Min, report.Coverage.Max)
		}
	}
	total := 0
	for _, n := range report.States {
		total += n
	}
	if total != len(seeds) {
		t.Errorf("state counts sum to %d, want %d", total, len(seeds))
	}
	if report.SweepID == "" {
		t.Error("missing sweep id")
	}
}

func TestSweepDeterministic(t *testing.T) {
	g, cfg := gridConfig(t)
	seeds := Seeds(1, 4)

	a, err := Sweep(context.Background(), g, cfg, seeds, Options{Parallel: 4})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sweep(context.Background(), g, cfg, seeds, Options{Parallel: 1})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Runs {
		ra, rb := a.Runs[i], b.Runs[i]
		if ra.Turns != rb.Turns || ra.Coverage != rb.Coverage || ra.State != rb.State {
			t.Errorf("seed %d differs: %+v vs %+v", ra.Seed, ra, rb)
		}
	}
	if a.Turns != b.Turns || a.Coverage != b.Coverage {
		t.Errorf("aggregates differ: %+v/%+v vs %+v/%+v", a.Turns, a.Coverage, b.Turns, b.Coverage)
	}
}

func TestSweepErrors(t *testing.T) {
	g, cfg := gridConfig(t)

	if _, err := Sweep(context.Background(), g, cfg, nil, Options{}); !errors.Is(err, ErrNoSeeds) {
		t.Errorf("expected ErrNoSeeds, got %v", err)
	}

	cfg.Starts = []string{"r0c0", "nowhere"}
	_, err := Sweep(context.Background(), g, cfg, Seeds(1, 3), Options{Parallel: 2})
	if !errors.Is(err, simulation.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestSweepCancelled(t *testing.T) {
	g, cfg := gridConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Sweep(ctx, g, cfg, Seeds(1, 3), Options{Parallel: 2})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.States[simulation.StateCancelled.String()] != 3 {
		t.Errorf("states = %v, want all cancelled", report.States)
	}
	if report.Turns.Max != 0 {
		t.Errorf("cancelled runs took turns: %+v", report.Turns)
	}
}

func TestAggregate(t *testing.T) {
	s := aggregate([]float64{0.5, 1, 0.75})
	if s.Min != 0.5 || s.Max != 1 || s.Mean != 0.75 {
		t.Errorf("aggregate = %+v", s)
	}
	if (aggregate(nil) != Stats{}) {
		t.Error("empty aggregate should be zero")
	}
	if got := Seeds(5, 3); len(got) != 3 || got[0] != 5 || got[2] != 7 {
		t.Errorf("Seeds = %v", got)
	}
	if got := Seeds(1, -2); len(got) != 0 {
		t.Errorf("Seeds with negative n = %v", got)
	}
}
