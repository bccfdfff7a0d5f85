package network

import "math"

// Kind classifies a node in the pipe network.
type Kind int

const (
	// KindJunction is an interior pipe junction
	KindJunction Kind = iota
	// KindEndpoint is a pipe endpoint such as a reservoir or tank
	KindEndpoint
	// KindOther covers anything else the importer could not classify
	KindOther
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case KindJunction:
		return "junction"
	case KindEndpoint:
		return "endpoint"
	default:
		return "other"
	}
}

// ParseKind converts a string to a Kind. Unknown values map to KindOther.
func ParseKind(s string) Kind {
	switch s {
	case "junction", "Junction":
		return KindJunction
	case "endpoint", "reservoir", "tank", "Reservoir", "Tank":
		return KindEndpoint
	default:
		return KindOther
	}
}

// Coord is a node position. The core only uses it for distances.
type Coord struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// Distance returns the Euclidean distance between two coordinates.
func Distance(a, b Coord) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Node is a junction or endpoint of the network.
type Node struct {
	Name  string
	Kind  Kind
	Coord Coord
	Links []string // incident links, in the order supplied by the importer
}

func (n *Node) clone() *Node {
	c := *n
	c.Links = append([]string(nil), n.Links...)
	return &c
}

// Link is an undirected pipe between two nodes.
type Link struct {
	Name   string
	From   string
	To     string
	Length float64
}

// Other returns the endpoint of l opposite to node, or "" if node is not an endpoint.
func (l *Link) Other(node string) string {
	switch node {
	case l.From:
		return l.To
	case l.To:
		return l.From
	}
	return ""
}

// Port is a locally numbered incident link at a node.
type Port struct {
	Node  string
	Link  string
	Label int
}
