package dag

import (
	"encoding/json"
	"testing"

	"flowcanvas/internal/domain"

	"github.com/stretchr/testify/assert"
)

func nodes(ids ...string) []domain.Node {
	out := make([]domain.Node, len(ids))
	for i, id := range ids {
		out[i] = *domain.NewNode(id, domain.NodeKindText, domain.Position{})
	}
	return out
}

func edge(src, dst string) domain.Edge {
	return *domain.NewEdge(domain.Connection{Source: src, Target: dst})
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		nodes []domain.Node
		edges []domain.Edge
		want  Result
	}{
		{
			name: "empty graph",
			want: Result{NumNodes: 0, NumEdges: 0, IsDag: true},
		},
		{
			name:  "chain",
			nodes: nodes("A", "B", "C"),
			edges: []domain.Edge{edge("A", "B"), edge("B", "C")},
			want:  Result{NumNodes: 3, NumEdges: 2, IsDag: true},
		},
		{
			name:  "two-cycle",
			nodes: nodes("A", "B"),
			edges: []domain.Edge{edge("A", "B"), edge("B", "A")},
			want:  Result{NumNodes: 2, NumEdges: 2, IsDag: false},
		},
		{
			name:  "self loop",
			nodes: nodes("A"),
			edges: []domain.Edge{edge("A", "A")},
			want:  Result{NumNodes: 1, NumEdges: 1, IsDag: false},
		},
		{
			name:  "isolated nodes",
			nodes: nodes("A", "B", "C"),
			want:  Result{NumNodes: 3, NumEdges: 0, IsDag: true},
		},
		{
			name:  "diamond",
			nodes: nodes("A", "B", "C", "D"),
			edges: []domain.Edge{edge("A", "B"), edge("A", "C"), edge("B", "D"), edge("C", "D")},
			want:  Result{NumNodes: 4, NumEdges: 4, IsDag: true},
		},
		{
			name:  "parallel edges",
			nodes: nodes("A", "B"),
			edges: []domain.Edge{edge("A", "B"), edge("A", "B")},
			want:  Result{NumNodes: 2, NumEdges: 2, IsDag: true},
		},
		{
			name:  "cycle downstream of a source",
			nodes: nodes("A", "B", "C"),
			edges: []domain.Edge{edge("A", "B"), edge("B", "C"), edge("C", "B")},
			want:  Result{NumNodes: 3, NumEdges: 3, IsDag: false},
		},
		{
			name:  "dangling edge counted but ignored",
			nodes: nodes("A", "B"),
			edges: []domain.Edge{edge("A", "B"), edge("B", "ghost")},
			want:  Result{NumNodes: 2, NumEdges: 2, IsDag: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.nodes, tt.edges))
		})
	}
}

func TestAnalyzeOrderIndependent(t *testing.T) {
	n := nodes("A", "B", "C", "D")
	e := []domain.Edge{edge("C", "D"), edge("A", "B"), edge("B", "C")}
	reversed := []domain.Node{n[3], n[2], n[1], n[0]}

	assert.Equal(t, Analyze(n, e), Analyze(reversed, e))
}

func TestTopologicalOrder(t *testing.T) {
	order, ok := TopologicalOrder(nodes("out", "llm", "in"), []domain.Edge{edge("in", "llm"), edge("llm", "out")})
	assert.True(t, ok)
	assert.Equal(t, []string{"in", "llm", "out"}, order)

	order, ok = TopologicalOrder(nodes("src", "A", "B"), []domain.Edge{edge("src", "A"), edge("A", "B"), edge("B", "A")})
	assert.False(t, ok)
	assert.Equal(t, []string{"src"}, order)
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Result{NumNodes: 3, NumEdges: 2, IsDag: true})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"num_nodes":3,"num_edges":2,"is_dag":true}`, string(data))
}
