package agent

import (
	"fmt"
	"math/rand/v2"
)

// PortView is one incident port as seen by the deciding agent
type PortView struct {
	Label     int
	Link      string
	Neighbor  string
	Explored  bool
	LastVisit int // -1 when never visited
}

// View is the local topology handed to a traversal policy. Ports are sorted
// by the agent's own labels; Arrival is the index of the port the agent came
// in through, or -1 at its start node.
type View struct {
	AgentID  int
	Node     string
	Previous string
	Arrival  int
	Ports    []PortView
	Turn     int
}

// TraversalPolicy picks the next node from a local view. Implementations
// must be deterministic for a given view and internal state.
type TraversalPolicy interface {
	Name() string
	Next(v View) (string, error)
}

// Policy names accepted by PolicyByName
const (
	PolicyRightHand = "right-hand"
	PolicyGreedy    = "greedy"
	PolicyRandom    = "random"
)

// PolicyByName constructs a policy for one agent. Random policies draw from
// a stream derived from seed and the agent id.
func PolicyByName(name string, agentID int, seed int64) (TraversalPolicy, error) {
	switch name {
	case "", PolicyRightHand:
		return RightHandWall{}, nil
	case PolicyGreedy:
		return Greedy{}, nil
	case PolicyRandom:
		return NewRandom(seed, agentID), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Policies lists the built-in policy names
func Policies() []string {
	return []string{PolicyRightHand, PolicyGreedy, PolicyRandom}
}

// rotation returns port indices clockwise from the arrival port, excluding it.
func rotation(v View) []int {
	deg := len(v.Ports)
	out := make([]int, 0, deg)
	if v.Arrival < 0 {
		for i := 0; i < deg; i++ {
			out = append(out, i)
		}
		return out
	}
	for k := 1; k < deg; k++ {
		out = append(out, (v.Arrival+k)%deg)
	}
	return out
}

// leastRecent picks the candidate with the oldest last visit, skipping the
// previous node. Ties go to the earlier candidate.
func leastRecent(v View, candidates []int) (int, bool) {
	best := -1
	for _, i := range candidates {
		p := v.Ports[i]
		if v.Previous != "" && p.Neighbor == v.Previous {
			continue
		}
		if best < 0 || p.LastVisit < v.Ports[best].LastVisit {
			best = i
		}
	}
	return best, best >= 0
}

func deadEnd(v View, policy string) error {
	return &DeadEndError{AgentID: v.AgentID, Node: v.Node, Policy: policy}
}

// RightHandWall follows the right-hand wall: rotate clockwise from the
// arrival port and take the first unexplored neighbor, falling back to the
// least recently visited one. A degree-1 node reverses.
type RightHandWall struct{}

// Name implements TraversalPolicy
func (RightHandWall) Name() string { return PolicyRightHand }

// Next implements TraversalPolicy
func (RightHandWall) Next(v View) (string, error) {
	switch len(v.Ports) {
	case 0:
		return "", deadEnd(v, PolicyRightHand)
	case 1:
		return v.Ports[0].Neighbor, nil
	}

	order := rotation(v)
	for _, i := range order {
		if !v.Ports[i].Explored {
			return v.Ports[i].Neighbor, nil
		}
	}
	if i, ok := leastRecent(v, order); ok {
		return v.Ports[i].Neighbor, nil
	}
	if v.Arrival >= 0 {
		return v.Ports[v.Arrival].Neighbor, nil
	}
	return "", deadEnd(v, PolicyRightHand)
}

// Greedy takes the lowest-labelled unexplored neighbor that is not the
// previous node, else the least recently visited one.
type Greedy struct{}

// Name implements TraversalPolicy
func (Greedy) Name() string { return PolicyGreedy }

// Next implements TraversalPolicy
func (Greedy) Next(v View) (string, error) {
	if len(v.Ports) == 0 {
		return "", deadEnd(v, PolicyGreedy)
	}
	all := make([]int, len(v.Ports))
	for i := range v.Ports {
		all[i] = i
		p := v.Ports[i]
		if !p.Explored && p.Neighbor != v.Previous {
			return p.Neighbor, nil
		}
	}
	if i, ok := leastRecent(v, all); ok {
		return v.Ports[i].Neighbor, nil
	}
	// Only the previous node remains
	return v.Ports[0].Neighbor, nil
}

// Random picks uniformly among unexplored neighbors, then among any
// neighbor but the previous one. Each agent owns its stream.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a seeded random policy for one agent
func NewRandom(seed int64, agentID int) *Random {
	return &Random{rng: rand.New(rand.NewPCG(uint64(seed), uint64(agentID)+0x5eed))}
}

// Name implements TraversalPolicy
func (*Random) Name() string { return PolicyRandom }

// Next implements TraversalPolicy
func (r *Random) Next(v View) (string, error) {
	if len(v.Ports) == 0 {
		return "", deadEnd(v, PolicyRandom)
	}
	var fresh, other []string
	for _, p := range v.Ports {
		if p.Neighbor == v.Previous {
			continue
		}
		if !p.Explored {
			fresh = append(fresh, p.Neighbor)
		}
		other = append(other, p.Neighbor)
	}
	switch {
	case len(fresh) > 0:
		return fresh[r.rng.IntN(len(fresh))], nil
	case len(other) > 0:
		return other[r.rng.IntN(len(other))], nil
	}
	return v.Ports[0].Neighbor, nil
}
