package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/pipeswarm/pkg/logging"
	"github.com/dd0wney/pipeswarm/pkg/metrics"
	"github.com/dd0wney/pipeswarm/pkg/network"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

// ErrNoSeeds is returned when a sweep is asked to run nothing
var ErrNoSeeds = errors.New("sweep needs at least one seed")

// Run is the outcome of one seeded simulation in a sweep
type Run struct {
	Seed     int64            `json:"seed"`
	RunID    string           `json:"run_id"`
	State    simulation.State `json:"state"`
	Turns    int              `json:"turns"`
	Coverage float64          `json:"coverage"`
}

// Stats aggregates a float series
type Stats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Report summarizes a sweep. Runs follow the order of the seeds given.
type Report struct {
	SweepID  string         `json:"sweep_id"`
	Runs     []Run          `json:"runs"`
	Coverage Stats          `json:"coverage"`
	Turns    Stats          `json:"turns"`
	States   map[string]int `json:"states"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Options configures Sweep
type Options struct {
	// Parallel bounds concurrent simulations; zero or less means one.
	Parallel int
	Logger   logging.Logger
	Metrics  metrics.Recorder
}

// Sweep runs base once per seed, with Seed replaced, and aggregates the
// results. The first failing run cancels the rest.
func Sweep(ctx context.Context, net *network.Graph, base simulation.Config, seeds []int64, opts Options) (*Report, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.NopRecorder{}
	}

	start := time.Now()
	sweepID := uuid.NewString()
	logger = logger.With(logging.String("sweep_id", sweepID))
	timer := logging.StartTimer(logger, "sweep", logging.Count(len(seeds)))

	runs := make([]Run, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallel, 1))
	for i, seed := range seeds {
		g.Go(func() error {
			cfg := base
			cfg.Seed = seed
			runID := uuid.NewString()
			sim, err := simulation.New(net, cfg,
				simulation.WithRunID(runID),
				simulation.WithLogger(logger.With(logging.Int64("seed", seed))),
				simulation.WithMetrics(rec),
			)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res, err := sim.Run(gctx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			runs[i] = Run{Seed: seed, RunID: res.RunID, State: res.State, Turns: res.Turns, Coverage: res.Coverage}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	report := &Report{SweepID: sweepID, Runs: runs, States: make(map[string]int)}
	cov := make([]float64, len(runs))
	turns := make([]float64, len(runs))
	for i, r := range runs {
		cov[i] = r.Coverage
		turns[i] = float64(r.Turns)
		report.States[r.State.String()]++
	}
	report.Coverage = aggregate(cov)
	report.Turns = aggregate(turns)
	report.Elapsed = time.Since(start)
	timer.End(logging.Float64("mean_coverage", report.Coverage.Mean))
	return report, nil
}

func aggregate(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, x := range xs {
		sum += x
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.Mean = sum / float64(len(xs))
	return s
}

// Seeds returns n consecutive seeds starting at first
func Seeds(first int64, n int) []int64 {
	out := make([]int64, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, first+int64(i))
	}
	return out
}
