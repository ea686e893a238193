// Package graph holds the per-request evidence graph: propositions and the
// weighted, signed, framed evidence attached to each of them. A graph is
// built fresh for every evaluation and is not safe for concurrent use.
package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/paradox/internal/lattice"
)

var (
	// ErrNodeNotFound is returned when evidence targets an unknown proposition
	ErrNodeNotFound = errors.New("proposition not found")

	// ErrInvalidWeight is returned for negative or non-finite evidence weight
	ErrInvalidWeight = errors.New("invalid evidence weight")
)

// Polarity is the direction of an evidence item
type Polarity int8

const (
	Support Polarity = 1
	Counter Polarity = -1
)

// PolarityFromSign maps a caller sign to a polarity: negative counts
// against, anything else supports
func PolarityFromSign(sign float64) Polarity {
	if sign < 0 {
		return Counter
	}
	return Support
}

func (p Polarity) String() string {
	if p == Counter {
		return "counter"
	}
	return "support"
}

// Evidence is one framed datum. It is copied into the node on attach and
// never changed afterwards.
type Evidence struct {
	Frame    string
	Weight   float64
	Polarity Polarity
	Source   string
}

// Node is a proposition under evaluation
type Node struct {
	ID    string
	Text  string
	Value lattice.Value

	evidence []Evidence
}

// NewNode creates a node with value N and no evidence
func NewNode(id, text string) *Node {
	return &Node{ID: id, Text: text, Value: lattice.N}
}

// Evidence returns a copy of the node's evidence in attach order
func (n *Node) Evidence() []Evidence {
	return append([]Evidence(nil), n.evidence...)
}

// EachEvidence calls fn for every evidence item without copying
func (n *Node) EachEvidence(fn func(Evidence)) {
	for _, ev := range n.evidence {
		fn(ev)
	}
}

// Graph owns a set of proposition nodes
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New creates an empty graph
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode inserts a node. A node with the same id is replaced silently.
func (g *Graph) AddNode(n *Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// AddEvidence appends evidence to the node with the given id
func (g *Graph) AddEvidence(nodeID string, ev Evidence) error {
	n, ok := g.nodes[nodeID]
	if !ok {
		return fmt.Errorf("add evidence: %w: %q", ErrNodeNotFound, nodeID)
	}
	if ev.Weight < 0 || math.IsNaN(ev.Weight) || math.IsInf(ev.Weight, 0) {
		return fmt.Errorf("add evidence to %q: %w: %v", nodeID, ErrInvalidWeight, ev.Weight)
	}
	if ev.Polarity != Counter {
		ev.Polarity = Support
	}
	n.evidence = append(n.evidence, ev)
	return nil
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the nodes in first-insertion order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Values snapshots the current value of every node
func (g *Graph) Values() map[string]lattice.Value {
	out := make(map[string]lattice.Value, len(g.nodes))
	for id, n := range g.nodes {
		out[id] = n.Value
	}
	return out
}

// EvidenceCount returns the total number of evidence items in the graph
func (g *Graph) EvidenceCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.evidence)
	}
	return total
}
