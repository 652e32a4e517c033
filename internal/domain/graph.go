package domain

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrInvalidGraph wraps structural problems found by Graph.Validate
var ErrInvalidGraph = errors.New("invalid graph")

// Graph is a complete pipeline document: the unit recorded in history,
// exported by codecs and submitted for validation.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewGraph creates an empty graph with initialized collections
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the graph
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Node finds a node by ID
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// NodeIDs returns the set of node IDs present in the graph
func (g *Graph) NodeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// DanglingEdges returns edges whose source or target is not a node of g.
func (g *Graph) DanglingEdges() []Edge {
	ids := g.NodeIDs()
	var out []Edge
	for _, e := range g.Edges {
		_, src := ids[e.Source]
		_, dst := ids[e.Target]
		if !src || !dst {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks the structural invariants: unique node IDs, edges
// referencing existing nodes.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node ID required", ErrInvalidGraph)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node ID %s", ErrInvalidGraph, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	if dangling := g.DanglingEdges(); len(dangling) > 0 {
		return fmt.Errorf("%w: edge %s references a missing node", ErrInvalidGraph, dangling[0].ID)
	}
	return nil
}

// Clone returns a deep copy that shares no mutable state with g.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range g.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

// Fingerprint returns a hex BLAKE2b-256 digest of the graph's JSON form.
// encoding/json sorts map keys, so equal graphs share a fingerprint.
func (g Graph) Fingerprint() string {
	data, err := json.Marshal(g)
	if err != nil {
		// Data values are JSON scalars; only exotic values fail here
		data = []byte(fmt.Sprintf("%#v", g))
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
