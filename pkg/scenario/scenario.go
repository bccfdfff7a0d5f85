package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/pipeswarm/pkg/algorithms"
	"github.com/dd0wney/pipeswarm/pkg/network"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
	"github.com/dd0wney/pipeswarm/pkg/validation"
)

// Network shapes that can be generated instead of listed
const (
	ShapeCycle = "cycle"
	ShapeLine  = "line"
	ShapeGrid  = "grid"
)

// Automatic start placements
const (
	PlacementCentral = "central"
	PlacementSpread  = "spread"
)

// DefaultMaxTurns applies when a scenario leaves max_turns unset
const DefaultMaxTurns = 100

// Scenario is a YAML description of a network and a simulation setup
type Scenario struct {
	Name        string            `yaml:"name" validate:"required,name"`
	Description string            `yaml:"description"`
	Network     NetworkSpec       `yaml:"network"`
	Simulation  simulation.Config `yaml:"simulation"`
	// Placement chooses start nodes when simulation.starts is empty:
	// "central" takes the highest betweenness nodes, "spread" starts at the
	// most central node and keeps the rest as far apart as possible.
	Placement string `yaml:"placement" validate:"omitempty,oneof=central spread"`
	// Output is the default result directory for the CLI
	Output string `yaml:"output"`
}

// NetworkSpec either names a generated shape or lists nodes and links
type NetworkSpec struct {
	Shape  string     `yaml:"shape" validate:"omitempty,oneof=cycle line grid"`
	Names  []string   `yaml:"names" validate:"dive,name"` // cycle and line
	Width  int        `yaml:"width" validate:"gte=0"`     // grid
	Height int        `yaml:"height" validate:"gte=0"`    // grid
	Nodes  []NodeSpec `yaml:"nodes" validate:"dive"`
	Links  []LinkSpec `yaml:"links" validate:"dive"`
}

// NodeSpec is one listed node. Ports optionally fixes the incident link order.
type NodeSpec struct {
	Name  string   `yaml:"name" validate:"required,name"`
	Kind  string   `yaml:"kind" validate:"omitempty,oneof=junction endpoint reservoir tank other"`
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	Z     float64  `yaml:"z"`
	Ports []string `yaml:"ports" validate:"dive,name"`
}

// LinkSpec is one listed link
type LinkSpec struct {
	Name string `yaml:"name" validate:"required,name"`
	From string `yaml:"from" validate:"required,name"`
	To   string `yaml:"to" validate:"required,name"`
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if s.Simulation.Agents == 0 {
		s.Simulation.Agents = len(s.Simulation.Starts)
	}
	s.Simulation.MaxTurns = validation.DefaultOrInt(s.Simulation.MaxTurns, DefaultMaxTurns)
}

// Validate checks the scenario's own structure. Graph-aware checks happen in
// simulation.New.
func (s *Scenario) Validate() error {
	if err := validation.Struct(s); err != nil {
		return err
	}

	n := s.Network
	listed := len(n.Nodes) > 0 || len(n.Links) > 0
	cv := validation.NewConfigValidator("scenario")
	cv.When(n.Shape == "", func(cv *validation.ConfigValidator) {
		cv.Custom("network.nodes", func() error {
			if len(n.Nodes) == 0 {
				return errors.New("no shape and no nodes given")
			}
			return nil
		})
	})
	cv.When(n.Shape != "" && listed, func(cv *validation.ConfigValidator) {
		cv.Custom("network.shape", func() error {
			return fmt.Errorf("shape %q cannot be combined with listed nodes or links", n.Shape)
		})
	})
	cv.When(s.Placement != "", func(cv *validation.ConfigValidator) {
		cv.Custom("placement", func() error {
			if len(s.Simulation.Starts) > 0 {
				return fmt.Errorf("placement %q cannot be combined with explicit starts", s.Placement)
			}
			return nil
		})
	})
	cv.When(n.Shape == ShapeCycle, func(cv *validation.ConfigValidator) { cv.MinInt("network.names", len(n.Names), 3) })
	cv.When(n.Shape == ShapeLine, func(cv *validation.ConfigValidator) { cv.MinInt("network.names", len(n.Names), 2) })
	cv.When(n.Shape == ShapeGrid, func(cv *validation.ConfigValidator) {
		cv.Positive("network.width", n.Width).Positive("network.height", n.Height)
	})
	return cv.Validate()
}

// Build constructs the network. With a placement set it also fills in the
// simulation start nodes.
func (s *Scenario) Build() (*network.Graph, error) {
	g, err := s.buildNetwork()
	if err != nil {
		return nil, err
	}
	if s.Placement != "" {
		s.Simulation.Starts = Place(g, s.Placement, s.Simulation.Agents)
	}
	return g, nil
}

// Place picks up to agents distinct start nodes using the named placement.
// Unknown placements return nil.
func Place(g *network.Graph, placement string, agents int) []string {
	u := g.ToUndirected()
	bc := algorithms.BetweennessCentrality[string](u)
	switch placement {
	case PlacementCentral:
		top := algorithms.TopK[string](u, bc, agents)
		starts := make([]string, len(top))
		for i, r := range top {
			starts[i] = r.Vertex
		}
		return starts
	case PlacementSpread:
		top := algorithms.TopK[string](u, bc, 1)
		if len(top) == 0 {
			return nil
		}
		return algorithms.Disperse[string](u, top[0].Vertex, agents)
	}
	return nil
}

func (s *Scenario) buildNetwork() (*network.Graph, error) {
	n := s.Network
	switch n.Shape {
	case ShapeCycle:
		return network.Cycle(n.Names...)
	case ShapeLine:
		return network.Line(n.Names...)
	case ShapeGrid:
		return network.Grid(n.Width, n.Height)
	}

	b := network.NewBuilder()
	for _, node := range n.Nodes {
		b.AddNode(node.Name, network.ParseKind(validation.DefaultOr(node.Kind, "junction")),
			network.Coord{X: node.X, Y: node.Y, Z: node.Z})
	}
	for _, l := range n.Links {
		b.AddLink(l.Name, l.From, l.To)
	}
	for _, node := range n.Nodes {
		if len(node.Ports) > 0 {
			b.SetLinkOrder(node.Name, node.Ports...)
		}
	}
	return b.Build()
}

// Config returns the simulation configuration with overrides applied.
// Zero-valued override fields are ignored.
func (s *Scenario) Config(o Overrides) simulation.Config {
	cfg := s.Simulation
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	cfg.MaxTurns = validation.DefaultOrInt(o.MaxTurns, cfg.MaxTurns)
	cfg.Policy = validation.DefaultOr(o.Policy, cfg.Policy)
	if o.Range != nil {
		cfg.Range = *o.Range
	}
	return cfg
}

// Overrides are command-line values that take precedence over the file
type Overrides struct {
	Seed     *int64
	MaxTurns int
	Policy   string
	Range    *float64
}
