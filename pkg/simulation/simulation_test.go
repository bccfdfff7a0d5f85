package simulation

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dd0wney/pipeswarm/pkg/agent"
	"github.com/dd0wney/pipeswarm/pkg/logging"
	"github.com/dd0wney/pipeswarm/pkg/metrics"
	"github.com/dd0wney/pipeswarm/pkg/network"

	dto "github.com/prometheus/client_model/go"
)

func fiveCycle(t *testing.T) *network.Graph {
	t.Helper()
	g, err := network.Cycle("A", "B", "C", "D", "E")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func mustRun(t *testing.T, net *network.Graph, cfg Config, opts ...Option) *Result {
	t.Helper()
	sim, err := New(net, cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func TestFiveCycleScenario(t *testing.T) {
	net := fiveCycle(t)
	res := mustRun(t, net, Config{Agents: 2, Starts: []string{"A", "C"}, Seed: 42, MaxTurns: 20})

	if res.State != StateCompleted {
		t.Fatalf("state = %v, want completed", res.State)
	}
	if res.Coverage != 1 {
		t.Errorf("coverage = %v, want 1", res.Coverage)
	}
	if res.Turns > 2*net.NumNodes() {
		t.Errorf("took %d turns, want at most %d", res.Turns, 2*net.NumNodes())
	}
	if !reflect.DeepEqual(res.History[0].Positions, []string{"A", "C"}) {
		t.Errorf("turn 0 positions = %v", res.History[0].Positions)
	}
	if len(res.History) != res.Turns+1 {
		t.Errorf("history has %d records for %d turns", len(res.History), res.Turns)
	}

	meetings, meetTurn := 0, -1
	for _, rec := range res.History {
		for _, m := range rec.Meetings {
			meetings++
			meetTurn = rec.Turn
			if m.Leader != 0 {
				t.Errorf("turn %d: leader %d, want 0", rec.Turn, m.Leader)
			}
			if !reflect.DeepEqual(m.Members, []int{0, 1}) {
				t.Errorf("turn %d: members %v, want [0 1]", rec.Turn, m.Members)
			}
		}
	}
	if meetings != 1 {
		t.Fatalf("agents met %d times, want exactly 1", meetings)
	}
	for _, rec := range res.History {
		if rec.Turn < meetTurn {
			if len(rec.Leaders) != 0 {
				t.Errorf("turn %d: leaders %v before any meeting", rec.Turn, rec.Leaders)
			}
			continue
		}
		if !reflect.DeepEqual(rec.Leaders, []int{0}) {
			t.Errorf("turn %d: leaders %v, want [0]", rec.Turn, rec.Leaders)
		}
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
}

func TestCoverageMonotonicAndMovesValid(t *testing.T) {
	net, err := network.Grid(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, policy := range agent.Policies() {
		t.Run(policy, func(t *testing.T) {
			res := mustRun(t, net, Config{
				Agents: 3, Starts: []string{"r0c0", "r2c3", "r1c1"},
				Seed: 7, MaxTurns: 60, Policy: policy,
			})
			for i := 1; i < len(res.History); i++ {
				prev, cur := res.History[i-1], res.History[i]
				if cur.Coverage < prev.Coverage {
					t.Fatalf("coverage dropped at turn %d: %v -> %v", cur.Turn, prev.Coverage, cur.Coverage)
				}
				for id := range cur.Positions {
					a, b := prev.Positions[id], cur.Positions[id]
					if a == b {
						continue
					}
					if _, err := net.Link(a, b); err != nil {
						t.Fatalf("turn %d: agent %d jumped %s -> %s", cur.Turn, id, a, b)
					}
				}
			}
			if res.State == StateCompleted && res.Coverage != 1 {
				t.Errorf("completed with coverage %v", res.Coverage)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	net, err := network.Grid(5, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, policy := range agent.Policies() {
		t.Run(policy, func(t *testing.T) {
			cfg := Config{
				Agents: 4, Starts: []string{"r0c0", "r3c4", "r0c4", "r3c0"},
				Seed: 42, MaxTurns: 50, Policy: policy, Range: 1.5,
			}
			first := mustRun(t, net, cfg, WithRunID("a"))
			second := mustRun(t, net, cfg, WithRunID("b"))

			if !reflect.DeepEqual(first.History, second.History) {
				t.Error("histories differ between identical runs")
			}
			if !reflect.DeepEqual(first.Agents, second.Agents) {
				t.Error("agent end states differ between identical runs")
			}
		})
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	cycle := fiveCycle(t)
	single, err := network.NewBuilder().AddNode("only", network.KindJunction, network.Coord{}).Build()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		net   *network.Graph
		cfg   Config
		field string
	}{
		{"single node network", single, Config{Agents: 1, Starts: []string{"only"}, MaxTurns: 5}, "network"},
		{"nil network", nil, Config{Agents: 1, Starts: []string{"A"}, MaxTurns: 5}, "network"},
		{"count mismatch", cycle, Config{Agents: 2, Starts: []string{"A"}, MaxTurns: 5}, "Config.Starts"},
		{"unknown start", cycle, Config{Agents: 1, Starts: []string{"Z"}, MaxTurns: 5}, "Config.Starts"},
		{"shared start", cycle, Config{Agents: 2, Starts: []string{"A", "A"}, MaxTurns: 5}, "Config.Starts"},
		{"zero turns", cycle, Config{Agents: 1, Starts: []string{"A"}}, "Config.MaxTurns"},
		{"no agents", cycle, Config{Agents: 0, MaxTurns: 5}, "Config.Agents"},
		{"unknown policy", cycle, Config{Agents: 1, Starts: []string{"A"}, MaxTurns: 5, Policy: "spiral"}, "Config.Policy"},
		{"too many workers", cycle, Config{Agents: 1, Starts: []string{"A"}, MaxTurns: 5, Workers: 1000}, "Config.Workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.net, tt.cfg)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("error should match ErrConfiguration")
			}
			if ce.Field != tt.field {
				t.Errorf("field = %s, want %s", ce.Field, tt.field)
			}
		})
	}
}

func TestNew_SharedStartsAllowed(t *testing.T) {
	sim, err := New(fiveCycle(t), Config{Agents: 2, Starts: []string{"A", "A"}, MaxTurns: 5, AllowSharedStarts: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sim.Close()

	got, err := sim.Ping(0)
	if err != nil || !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Ping(0) = %v, %v; want [1]", got, err)
	}
	if _, err := sim.Ping(7); !errors.Is(err, network.ErrNotFound) {
		t.Errorf("Ping(7) error = %v, want ErrNotFound", err)
	}
}

func TestUnlimitedRangeMeetsEveryone(t *testing.T) {
	net, err := network.Grid(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := New(net, Config{Agents: 3, Starts: []string{"r0c0", "r2c2", "r1c1"}, MaxTurns: 30, Range: -1})
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	rec, err := sim.Turn()
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	if len(rec.Meetings) != 1 {
		t.Fatalf("meetings = %d, want 1", len(rec.Meetings))
	}
	m := rec.Meetings[0]
	if !reflect.DeepEqual(m.Members, []int{0, 1, 2}) || m.Leader != 0 {
		t.Errorf("meeting = %+v", m)
	}
	if !reflect.DeepEqual(rec.Leaders, []int{0}) {
		t.Errorf("leaders = %v, want [0]", rec.Leaders)
	}
	if sim.State() != StateRunning {
		t.Errorf("state = %v, want running", sim.State())
	}
}

func TestSameNodeRangeIsolates(t *testing.T) {
	net, err := network.Grid(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := New(net, Config{Agents: 2, Starts: []string{"r0c0", "r2c2"}, MaxTurns: 30})
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	rec, err := sim.Turn()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Meetings) != 0 {
		t.Errorf("agents on different nodes met: %+v", rec.Meetings)
	}
}

func TestStalledOnDisconnectedNetwork(t *testing.T) {
	b := network.NewBuilder()
	for i, n := range []string{"A", "B", "C", "D"} {
		b.AddNode(n, network.KindJunction, network.Coord{X: float64(i)})
	}
	b.AddLink("P1", "A", "B").AddLink("P2", "C", "D")
	net, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.WarnLevel)
	res := mustRun(t, net, Config{Agents: 1, Starts: []string{"A"}, MaxTurns: 20}, WithLogger(logger))
	if !strings.Contains(buf.String(), "network is disconnected") {
		t.Errorf("expected a disconnected network warning, got %s", buf.String())
	}
	if res.State != StateStalled {
		t.Errorf("state = %v, want stalled", res.State)
	}
	if res.Coverage != 0.5 {
		t.Errorf("coverage = %v, want 0.5", res.Coverage)
	}
	if res.Agents[0].Status != agent.StatusDone {
		t.Errorf("agent status = %v, want done", res.Agents[0].Status)
	}
}

func TestTurnLimit(t *testing.T) {
	net, err := network.Grid(6, 6)
	if err != nil {
		t.Fatal(err)
	}
	res := mustRun(t, net, Config{Agents: 1, Starts: []string{"r0c0"}, MaxTurns: 3})
	if res.State != StateTurnLimit || res.Turns != 3 {
		t.Errorf("state = %v after %d turns, want turn_limit after 3", res.State, res.Turns)
	}
}

func TestCancelledAtTurnBoundary(t *testing.T) {
	sim, err := New(fiveCycle(t), Config{Agents: 1, Starts: []string{"A"}, MaxTurns: 20})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := sim.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.State != StateCancelled || res.Turns != 0 {
		t.Errorf("state = %v turns = %d", res.State, res.Turns)
	}
	if _, err := sim.Turn(); !errors.Is(err, ErrFinished) {
		t.Errorf("Turn after cancel: %v, want ErrFinished", err)
	}
}

func TestLoggingAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)
	reg := metrics.NewRegistry()

	res := mustRun(t, fiveCycle(t), Config{Agents: 2, Starts: []string{"A", "C"}, Seed: 42, MaxTurns: 20},
		WithLogger(logger), WithMetrics(reg), WithRunID("run-1"))

	out := buf.String()
	for _, want := range []string{`"run started"`, `"run finished"`, `"run-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}

	var m dto.Metric
	if err := reg.TurnsTotal.Write(&m); err != nil {
		t.Fatal(err)
	}
	if int(m.Counter.GetValue()) != res.Turns {
		t.Errorf("turns metric = %v, want %d", m.Counter.GetValue(), res.Turns)
	}
	if err := reg.RunsTotal.WithLabelValues("completed").Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.Counter.GetValue() != 1 {
		t.Errorf("completed runs = %v, want 1", m.Counter.GetValue())
	}
}

type recordingObserver struct {
	turns  []int
	states []State
	final  *Result
}

func (o *recordingObserver) OnTurn(_ string, rec TurnRecord, state State) {
	o.turns = append(o.turns, rec.Turn)
	o.states = append(o.states, state)
}

func (o *recordingObserver) OnFinish(res *Result) { o.final = res }

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	res := mustRun(t, fiveCycle(t), Config{Agents: 2, Starts: []string{"A", "C"}, MaxTurns: 20}, WithObserver(obs))

	if len(obs.turns) != res.Turns {
		t.Fatalf("observed %d turns, run took %d", len(obs.turns), res.Turns)
	}
	for i, turn := range obs.turns {
		if turn != i+1 {
			t.Errorf("observation %d is turn %d", i, turn)
		}
	}
	if last := obs.states[len(obs.states)-1]; last != res.State {
		t.Errorf("last observed state %v, want %v", last, res.State)
	}
	if obs.final == nil || obs.final.RunID != res.RunID {
		t.Error("OnFinish not called with the result")
	}
}

func TestStateText(t *testing.T) {
	for st := StateInitialized; st <= StateFailed; st++ {
		text, _ := st.MarshalText()
		var back State
		if err := back.UnmarshalText(text); err != nil || back != st {
			t.Errorf("%v: got %v, %v", st, back, err)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("exploded")); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestDebugLogsMovesAndMeetings(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	mustRun(t, fiveCycle(t), Config{Agents: 2, Starts: []string{"A", "C"}, Seed: 42, MaxTurns: 20},
		WithLogger(logger))

	out := buf.String()
	for _, want := range []string{`"agent moved"`, `"link":"`, `"meeting"`, `"leader_changed":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %s:\n%s", want, out)
		}
	}
}
