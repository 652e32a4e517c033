// Package dag checks pipeline graphs for cycles.
package dag

import (
	"flowcanvas/internal/domain"
)

// Result is the validation outcome reported to callers and returned by the
// remote validator. The JSON names are a fixed external contract.
type Result struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDag    bool `json:"is_dag"`
}

// Analyze counts nodes and edges and reports whether the graph is acyclic.
// Edges naming a node that is not in nodes still count toward NumEdges but
// take no part in the cycle check. An empty graph is a DAG.
func Analyze(nodes []domain.Node, edges []domain.Edge) Result {
	_, ok := TopologicalOrder(nodes, edges)
	return Result{
		NumNodes: len(nodes),
		NumEdges: len(edges),
		IsDag:    ok,
	}
}

// TopologicalOrder runs Kahn's algorithm and returns the node IDs in the
// order they were processed. The bool is false when a cycle prevents every
// node from being processed; the order then holds only the nodes that were
// reachable without passing through a cycle.
func TopologicalOrder(nodes []domain.Node, edges []domain.Edge) ([]string, bool) {
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = 0
	}

	adjacency := make(map[string][]string, len(nodes))
	for _, e := range edges {
		_, src := inDegree[e.Source]
		_, dst := inDegree[e.Target]
		if !src || !dst {
			continue
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}

	// Seed in node order so the result is deterministic
	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Duplicate IDs collapse into one entry, so compare against the node
	// count rather than the map size.
	return order, len(order) == len(nodes)
}

// AnalyzeGraph is Analyze over a whole graph
func AnalyzeGraph(g domain.Graph) Result {
	return Analyze(g.Nodes, g.Edges)
}
