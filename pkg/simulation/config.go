package simulation

import (
	"errors"
	"runtime"

	"github.com/dd0wney/pipeswarm/pkg/agent"
	"github.com/dd0wney/pipeswarm/pkg/network"
	"github.com/dd0wney/pipeswarm/pkg/validation"
)

// Config is a resolved simulation setup.
type Config struct {
	// Agents is the swarm size; agent ids are 0..Agents-1.
	Agents int `yaml:"agents" json:"agents" validate:"gte=1"`
	// Starts holds one start node per agent, indexed by id.
	Starts []string `yaml:"starts" json:"starts" validate:"dive,required"`
	Seed   int64    `yaml:"seed" json:"seed"`
	// MaxTurns caps the run; reaching it ends in StateTurnLimit.
	MaxTurns int `yaml:"max_turns" json:"max_turns" validate:"gt=0"`
	// Range is the communication radius in coordinate units. Zero means
	// agents only talk on the same node, a negative value means unlimited.
	Range  float64 `yaml:"range" json:"range"`
	Policy string  `yaml:"policy" json:"policy" validate:"omitempty,oneof=right-hand greedy random"`
	// Workers sizes the decide pool; zero uses GOMAXPROCS.
	Workers           int  `yaml:"workers" json:"workers" validate:"gte=0,lte=256"`
	AllowSharedStarts bool `yaml:"allow_shared_starts" json:"allow_shared_starts"`
}

// DefaultConfig returns a single right-hand agent with a 100 turn cap.
// Starts must still be filled in.
func DefaultConfig() Config {
	return Config{
		Agents:   1,
		MaxTurns: 100,
		Policy:   agent.PolicyRightHand,
	}
}

func (c Config) workers() int {
	return validation.DefaultOrInt(c.Workers, runtime.GOMAXPROCS(0))
}

// Validate checks the configuration against net. Every failure is a
// *ConfigurationError.
func (c *Config) Validate(net *network.Graph) error {
	if err := validation.Struct(c); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			return &ConfigurationError{Field: fe.Field, Cause: fe}
		}
		return &ConfigurationError{Field: "Config", Cause: err}
	}
	if net == nil || net.NumNodes() == 0 {
		return configError("network", "network is empty")
	}
	for _, n := range net.Nodes() {
		if len(n.Links) == 0 {
			return configError("network", "node %q has no links", n.Name)
		}
	}

	if len(c.Starts) != c.Agents {
		return configError("Config.Starts", "%d start nodes for %d agents", len(c.Starts), c.Agents)
	}
	used := make(map[string]int, len(c.Starts))
	for id, start := range c.Starts {
		if !net.HasNode(start) {
			return configError("Config.Starts", "agent %d: unknown start node %q", id, start)
		}
		if other, dup := used[start]; dup && !c.AllowSharedStarts {
			return configError("Config.Starts", "agents %d and %d share start node %q", other, id, start)
		}
		used[start] = id
	}

	if _, err := agent.PolicyByName(c.Policy, 0, c.Seed); err != nil {
		return &ConfigurationError{Field: "Config.Policy", Cause: err}
	}
	return nil
}
