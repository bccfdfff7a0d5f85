package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/dd0wney/pipeswarm/pkg/catalog"
	"github.com/dd0wney/pipeswarm/pkg/experiment"
	"github.com/dd0wney/pipeswarm/pkg/history"
	"github.com/dd0wney/pipeswarm/pkg/logging"
	"github.com/dd0wney/pipeswarm/pkg/metrics"
	"github.com/dd0wney/pipeswarm/pkg/network"
	"github.com/dd0wney/pipeswarm/pkg/scenario"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
	"github.com/dd0wney/pipeswarm/pkg/stream"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pipeswarm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		scenarioFile = fs.String("scenario", "", "Scenario YAML file (required)")
		seed         = fs.Int64("seed", 0, "Override the scenario seed")
		turns        = fs.Int("turns", 0, "Override max turns")
		policy       = fs.String("policy", "", "Override the movement policy (right-hand, greedy, random)")
		commRange    = fs.Float64("range", 0, "Override the communication range (0 same node, <0 unlimited)")
		outDir       = fs.String("out", "", "Output directory (default: scenario output, or out/<name>)")
		logLevel     = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
		metricsAddr  = fs.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
		sweep        = fs.Int("sweep", 0, "Run this many consecutive seeds instead of a single run")
		parallel     = fs.Int("parallel", 4, "Concurrent runs during a sweep")
		publish      = fs.String("publish", "", "Stream turns on a pub socket, e.g. tcp://127.0.0.1:7400")
		catalogAt    = fs.String("catalog", "", "Record the run in a catalog directory or postgres:// URL")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *scenarioFile == "" {
		fmt.Fprintln(stderr, "--scenario is required")
		fs.Usage()
		return 2
	}

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(*logLevel))
	logging.SetDefaultLogger(logger)

	s, err := scenario.Load(*scenarioFile)
	if err != nil {
		logger.Error("failed to load scenario", logging.Path(*scenarioFile), logging.Error(err))
		return 1
	}

	// Only flags given on the command line override the file.
	var o scenario.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			o.Seed = seed
		case "turns":
			o.MaxTurns = *turns
		case "policy":
			o.Policy = *policy
		case "range":
			o.Range = commRange
		}
	})
	cfg := s.Config(o)

	net, err := s.Build()
	if err != nil {
		logger.Error("failed to build network", logging.Error(err))
		return 1
	}
	logger.Info("scenario loaded",
		logging.String("scenario", s.Name),
		logging.Int("nodes", net.NumNodes()),
		logging.Int("links", net.NumLinks()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.DefaultRegistry()
	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	dir := *outDir
	if dir == "" {
		dir = s.Output
	}
	if dir == "" {
		dir = filepath.Join("out", s.Name)
	}

	r := &runner{name: s.Name, net: net, cfg: cfg, dir: dir, reg: reg, logger: logger, out: stdout}
	if *publish != "" {
		pub, err := stream.NewPublisher(*publish, logger)
		if err != nil {
			logger.Error("failed to start publisher", logging.Error(err))
			return 1
		}
		defer pub.Close()
		r.observers = append(r.observers, pub)
		logger.Info("streaming turns", logging.String("addr", *publish))
	}
	if *catalogAt != "" {
		c, err := catalog.Open(ctx, *catalogAt)
		if err != nil {
			logger.Error("failed to open catalog", logging.Error(err))
			return 1
		}
		defer c.Close()
		r.catalog = c
	}

	if *sweep > 0 {
		err = r.sweep(ctx, *sweep, *parallel)
	} else {
		err = r.once(ctx)
	}
	if err != nil {
		logger.Error("run failed", logging.Error(err))
		return 1
	}
	return 0
}

type runner struct {
	name      string
	net       *network.Graph
	cfg       simulation.Config
	dir       string
	reg       *metrics.Registry
	logger    logging.Logger
	out       io.Writer
	observers []simulation.Observer
	catalog   catalog.Catalog
}

func (r *runner) once(ctx context.Context) error {
	opts := []simulation.Option{simulation.WithLogger(r.logger), simulation.WithMetrics(r.reg)}
	for _, o := range r.observers {
		opts = append(opts, simulation.WithObserver(o))
	}
	sim, err := simulation.New(r.net, r.cfg, opts...)
	if err != nil {
		return err
	}
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	stats, err := history.WriteFile(filepath.Join(r.dir, history.HistoryFile), res)
	if err != nil {
		return err
	}
	summaryPath, err := history.WriteSummary(r.dir, res)
	if err != nil {
		return err
	}
	if r.catalog != nil {
		sum, err := history.Summarize(res)
		if err != nil {
			return err
		}
		if err := r.catalog.Put(ctx, catalog.NewEntry(r.name, r.cfg, sum, r.dir)); err != nil {
			return err
		}
	}
	r.logger.Info("output written",
		logging.Path(r.dir),
		logging.Count(stats.Frames),
		logging.Int64("compressed_bytes", int64(stats.BytesCompressed)),
	)

	fmt.Fprintf(r.out, "run %s: %s after %d turns, coverage %.1f%%\n", res.RunID, res.State, res.Turns, res.Coverage*100)
	for _, a := range res.Agents {
		fmt.Fprintf(r.out, "  agent %d at %-10s %-10s %-10s visited %d\n", a.ID, a.Position, a.Role, a.Status, len(a.Visited))
	}
	fmt.Fprintf(r.out, "summary: %s\n", summaryPath)
	return nil
}

func (r *runner) sweep(ctx context.Context, n, parallel int) error {
	report, err := experiment.Sweep(ctx, r.net, r.cfg, experiment.Seeds(r.cfg.Seed, n), experiment.Options{
		Parallel: parallel,
		Logger:   r.logger,
		Metrics:  r.reg,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.dir, "sweep.json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "sweep %s: %d runs in %s\n", report.SweepID, len(report.Runs), report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(r.out, "  coverage mean %.3f min %.3f max %.3f\n", report.Coverage.Mean, report.Coverage.Min, report.Coverage.Max)
	fmt.Fprintf(r.out, "  turns    mean %.1f min %.0f max %.0f\n", report.Turns.Mean, report.Turns.Min, report.Turns.Max)
	writeStates(r.out, report.States)
	fmt.Fprintf(r.out, "report: %s\n", path)
	return nil
}

// writeStates prints run counts per final state in name order
func writeStates(w io.Writer, counts map[string]int) {
	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}
	sort.Strings(states)
	for _, state := range states {
		fmt.Fprintf(w, "  %-10s %d\n", state, counts[state])
	}
}

func serveMetrics(addr string, reg *metrics.Registry, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics server starting", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", logging.Error(err))
		}
	}()
	return srv
}
