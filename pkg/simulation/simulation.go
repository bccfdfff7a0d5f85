package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/pipeswarm/pkg/agent"
	"github.com/dd0wney/pipeswarm/pkg/algorithms"
	"github.com/dd0wney/pipeswarm/pkg/logging"
	"github.com/dd0wney/pipeswarm/pkg/metrics"
	"github.com/dd0wney/pipeswarm/pkg/network"
	"github.com/dd0wney/pipeswarm/pkg/parallel"
	"github.com/dd0wney/pipeswarm/pkg/protocol"
	"github.com/dd0wney/pipeswarm/pkg/validation"
)

// Simulation owns the agents and drives them turn by turn over a read-only
// network. It is not safe for concurrent use.
type Simulation struct {
	net    *network.Graph
	cfg    Config
	runID  string
	agents []*agent.Agent // index == id

	state   State
	turn    int
	covered map[string]bool
	history []TurnRecord
	reg     *positions

	pool      *parallel.WorkerPool
	logger    logging.Logger
	metrics   metrics.Recorder
	observers []Observer
}

// Option configures a Simulation
type Option func(*Simulation)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Simulation) { s.metrics = m }
}

// WithObserver registers o to be told about every turn and the final result
func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// WithRunID overrides the generated run id
func WithRunID(id string) Option {
	return func(s *Simulation) { s.runID = id }
}

// New validates cfg against net and places the agents. Any setup problem is
// returned as a *ConfigurationError before a single turn runs. Callers that
// drive turns by hand must call Close.
func New(net *network.Graph, cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(net); err != nil {
		return nil, err
	}

	s := &Simulation{
		net:     net,
		cfg:     cfg,
		runID:   uuid.NewString(),
		covered: make(map[string]bool),
		logger:  logging.NewNopLogger(),
		metrics: metrics.NopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("simulation"), logging.String("run_id", s.runID))

	for id := 0; id < cfg.Agents; id++ {
		policy, err := agent.PolicyByName(cfg.Policy, id, cfg.Seed)
		if err != nil {
			return nil, &ConfigurationError{Field: "Config.Policy", Cause: err}
		}
		a := agent.New(id, cfg.Starts[id], policy, cfg.Seed)
		s.agents = append(s.agents, a)
		s.covered[a.Position()] = true
	}

	pool, err := parallel.NewWorkerPool(cfg.workers())
	if err != nil {
		return nil, &ConfigurationError{Field: "Config.Workers", Cause: err}
	}
	s.pool = pool

	s.reg = newPositions(net, s.agents)
	s.history = append(s.history, *s.record(0, nil, nil))
	return s, nil
}

// RunID returns the run identifier
func (s *Simulation) RunID() string { return s.runID }

// State returns the lifecycle state
func (s *Simulation) State() State { return s.state }

// TurnNumber returns the number of completed turns
func (s *Simulation) TurnNumber() int { return s.turn }

// Network returns the simulated network
func (s *Simulation) Network() *network.Graph { return s.net }

// History returns a copy of the turn records so far
func (s *Simulation) History() []TurnRecord {
	return append([]TurnRecord(nil), s.history...)
}

// Agents returns a summary of every agent, ordered by id
func (s *Simulation) Agents() []agent.Summary {
	out := make([]agent.Summary, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.Summary()
	}
	return out
}

// Coverage is the fraction of nodes visited by at least one agent
func (s *Simulation) Coverage() float64 {
	return float64(len(s.covered)) / float64(s.net.NumNodes())
}

// Ping returns the ids of the agents within communication range of agent id
// at their current positions.
func (s *Simulation) Ping(id int) ([]int, error) {
	if id < 0 || id >= len(s.agents) {
		return nil, &network.NotFoundError{Entity: "agent", Key: fmt.Sprint(id)}
	}
	return s.agents[id].Ping(s.reg, s.cfg.Range), nil
}

// Close releases the decide worker pool
func (s *Simulation) Close() {
	s.pool.Close()
}

// Run executes turns until the network is covered, every agent is done, the
// turn cap is hit or ctx is cancelled. Cancellation is only observed between
// turns. A protocol invariant violation aborts the run with an error.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	defer s.Close()

	start := time.Now()
	topo := algorithms.AnalyzeTopology[string](s.net.ToUndirected())
	if topo.Components > 1 {
		s.logger.Warn("network is disconnected",
			logging.Int("components", topo.Components))
	}
	s.logger.Info("run started",
		logging.Int("agents", len(s.agents)),
		logging.Int("nodes", s.net.NumNodes()),
		logging.Int("loops", topo.CycleRank),
		logging.Int("max_turns", s.cfg.MaxTurns),
		logging.Int64("seed", s.cfg.Seed),
		logging.Float64("range", s.cfg.Range),
		logging.String("policy", validation.DefaultOr(s.cfg.Policy, agent.PolicyRightHand)),
	)

	for !s.state.Terminal() {
		if err := ctx.Err(); err != nil {
			s.state = StateCancelled
			s.logger.Warn("run cancelled", logging.Turn(s.turn), logging.Error(err))
			break
		}
		if _, err := s.Turn(); err != nil {
			s.metrics.RecordRun(s.state.String(), s.turn)
			return nil, err
		}
	}

	s.logger.Info("run finished",
		logging.String("state", s.state.String()),
		logging.Turn(s.turn),
		logging.Float64("coverage", s.Coverage()),
		logging.Latency(time.Since(start)),
	)
	s.metrics.RecordRun(s.state.String(), s.turn)
	res := s.result()
	for _, o := range s.observers {
		o.OnFinish(res)
	}
	return res, nil
}

func (s *Simulation) result() *Result {
	return &Result{
		RunID:    s.runID,
		State:    s.state,
		Turns:    s.turn,
		Coverage: s.Coverage(),
		History:  s.History(),
		Agents:   s.Agents(),
	}
}

// Turn runs one turn: observe, meetings, leader check, decide, move, then
// coverage. Errors are fatal and leave the simulation in StateFailed.
func (s *Simulation) Turn() (*TurnRecord, error) {
	if s.state.Terminal() {
		return nil, fmt.Errorf("%w (%s)", ErrFinished, s.state)
	}
	s.state = StateRunning
	start := time.Now()
	turn := s.turn + 1

	rec, err := s.step(turn)
	if err != nil {
		s.state = StateFailed
		var ie *protocol.InvariantError
		if errors.As(err, &ie) {
			s.metrics.RecordInvariantViolation(ie.Check)
		}
		s.logger.Error("turn failed", logging.Turn(turn), logging.Error(err))
		return nil, err
	}

	s.turn = turn
	s.history = append(s.history, *rec)
	s.metrics.RecordTurn(time.Since(start), rec.Coverage)
	s.metrics.RecordAgents(s.census())

	switch {
	case rec.Coverage >= 1:
		s.state = StateCompleted
	case s.allDone():
		s.state = StateStalled
	case turn >= s.cfg.MaxTurns:
		s.state = StateTurnLimit
	}
	for _, o := range s.observers {
		o.OnTurn(s.runID, *rec, s.state)
	}
	return rec, nil
}

func (s *Simulation) step(turn int) (*TurnRecord, error) {
	for _, a := range s.agents {
		if err := a.Observe(s.net); err != nil {
			return nil, err
		}
	}

	outcomes, err := s.communicate(turn)
	if err != nil {
		return nil, err
	}
	if err := protocol.CheckLeaders(turn, s.agents); err != nil {
		return nil, err
	}

	idle, err := s.moveAll(turn)
	if err != nil {
		return nil, err
	}
	return s.record(turn, idle, outcomes), nil
}

// communicate finds this turn's meetings and runs the protocol once for
// each, in order of lowest member id.
func (s *Simulation) communicate(turn int) ([]protocol.Outcome, error) {
	s.reg = newPositions(s.net, s.agents)

	inRange := algorithms.NewAdjacencyGraph[int]()
	for _, a := range s.agents {
		inRange.AddVertex(a.ID())
	}
	for _, a := range s.agents {
		for _, other := range a.Ping(s.reg, s.cfg.Range) {
			if other > a.ID() {
				inRange.AddEdge(a.ID(), other)
			}
		}
	}

	var outcomes []protocol.Outcome
	for _, c := range algorithms.ConnectedComponents[int](inRange).Components {
		if len(c.Vertices) < 2 {
			continue
		}
		members := make([]*agent.Agent, len(c.Vertices))
		before := make([]int, len(c.Vertices))
		for i, id := range c.Vertices {
			members[i] = s.agents[id]
			before[i] = s.agents[id].LeaderID()
		}

		m, err := protocol.NewMeeting(turn, members)
		if err != nil {
			return nil, err
		}
		out, err := protocol.Run(m)
		if err != nil {
			return nil, err
		}

		changed := false
		for _, prev := range before {
			if prev != out.Leader {
				changed = true
			}
		}
		s.metrics.RecordMeeting(len(members), changed, len(out.Relabeled), len(out.Assignments))
		s.logger.Debug("meeting",
			logging.Turn(turn),
			logging.Agents(out.Members),
			logging.Any("nodes", out.Nodes),
			logging.Int("leader", out.Leader),
			logging.Bool("leader_changed", changed),
			logging.Count(len(out.Assignments)),
		)
		if changed {
			s.logger.Info("leader elected", logging.Turn(turn), logging.AgentID(out.Leader), logging.Agents(out.Members))
		}
		outcomes = append(outcomes, *out)
	}
	return outcomes, nil
}

// moveAll lets every active agent decide on the pool, then commits the moves
// in id order. Agents whose policy found no move stay idle.
func (s *Simulation) moveAll(turn int) ([]int, error) {
	type decision struct {
		next string
		err  error
	}
	decisions := make([]decision, len(s.agents))

	err := s.pool.ForEach(len(s.agents), func(i int) error {
		a := s.agents[i]
		if !a.Alive() {
			return nil
		}
		next, err := a.Decide(s.net, turn)
		decisions[i] = decision{next: next, err: err}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var idle []int
	for i, a := range s.agents {
		if !a.Alive() {
			a.Stay()
			continue
		}
		d := decisions[i]
		if d.err != nil {
			if !errors.Is(d.err, agent.ErrDeadEnd) {
				return nil, d.err
			}
			a.MarkIdle()
			a.Stay()
			idle = append(idle, a.ID())
			s.metrics.RecordDeadEnd(a.Policy())
			s.logger.Warn("agent idle", logging.Turn(turn), logging.AgentID(a.ID()), logging.Node(a.Position()), logging.Error(d.err))
			continue
		}
		l, err := s.net.Link(a.Position(), d.next)
		if err != nil {
			s.logger.Error("agent chose a node with no link",
				logging.Turn(turn), logging.AgentID(a.ID()), logging.Node(a.Position()), logging.String("next", d.next))
			return nil, fmt.Errorf("agent %d chose %s from %s: %w", a.ID(), d.next, a.Position(), err)
		}
		s.logger.Debug("agent moved",
			logging.Turn(turn), logging.AgentID(a.ID()), logging.Node(d.next), logging.Link(l.Name))
		a.Move(d.next, turn)
		s.covered[d.next] = true
	}
	return idle, nil
}

func (s *Simulation) record(turn int, idle []int, meetings []protocol.Outcome) *TurnRecord {
	rec := &TurnRecord{
		Turn:      turn,
		Positions: make([]string, len(s.agents)),
		Idle:      idle,
		Meetings:  meetings,
		Coverage:  s.Coverage(),
	}
	for i, a := range s.agents {
		rec.Positions[i] = a.Position()
		if a.Role() == agent.RoleLeader {
			rec.Leaders = append(rec.Leaders, a.ID())
		}
	}
	return rec
}

func (s *Simulation) allDone() bool {
	for _, a := range s.agents {
		if a.Alive() {
			return false
		}
	}
	return true
}

func (s *Simulation) census() (byRole, byStatus map[string]int) {
	byRole = make(map[string]int)
	byStatus = make(map[string]int)
	for _, a := range s.agents {
		byRole[a.Role().String()]++
		byStatus[a.Status().String()]++
	}
	return byRole, byStatus
}
