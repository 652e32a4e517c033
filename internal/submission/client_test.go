package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flowcanvas/internal/dag"
	"flowcanvas/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func cyclicGraph() domain.Graph {
	g := domain.NewGraph()
	g.AddNode(*domain.NewNode("A", domain.NodeKindText, domain.Position{}))
	g.AddNode(*domain.NewNode("B", domain.NodeKindText, domain.Position{}))
	g.AddEdge(*domain.NewEdge(domain.Connection{Source: "A", Target: "B"}))
	g.AddEdge(*domain.NewEdge(domain.Connection{Source: "B", Target: "A"}))
	return *g
}

func TestSubmitRemote(t *testing.T) {
	var received domain.Graph
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NoError(t, json.Unmarshal([]byte(req.Pipeline), &received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"num_nodes":2,"num_edges":2,"is_dag":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, WithLogger(zaptest.NewLogger(t)))
	out := c.Submit(context.Background(), cyclicGraph())

	assert.False(t, out.Offline)
	assert.NoError(t, out.Err)
	assert.Equal(t, dag.Result{NumNodes: 2, NumEdges: 2, IsDag: false}, out.Result)
	assert.Len(t, received.Nodes, 2)
	assert.Len(t, received.Edges, 2)
}

func TestSubmitFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
		},
		{
			name: "wrong response shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"ok"}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name: "missing is_dag",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"num_nodes":2,"num_edges":2}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name: "slow validator",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, 50*time.Millisecond, WithLogger(zaptest.NewLogger(t)))
			out := c.Submit(context.Background(), cyclicGraph())

			assert.True(t, out.Offline)
			require.Error(t, out.Err)
			assert.Equal(t, dag.Result{NumNodes: 2, NumEdges: 2, IsDag: false}, out.Result)
			if tt.check != nil {
				tt.check(t, out.Err)
			}
		})
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := NewClient(url, time.Second).Submit(context.Background(), *domain.NewGraph())

	assert.True(t, out.Offline)
	assert.Equal(t, dag.Result{NumNodes: 0, NumEdges: 0, IsDag: true}, out.Result)
}

func TestSubmitCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"num_nodes":0,"num_edges":0,"is_dag":true}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewClient(srv.URL, time.Second).Submit(ctx, cyclicGraph())
	assert.True(t, out.Offline)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestEncodeRequest(t *testing.T) {
	body, err := EncodeRequest(cyclicGraph())
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))
	pipeline, ok := req["pipeline"].(string)
	require.True(t, ok, "pipeline must be a JSON string, not an object")

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(pipeline), &doc))
	assert.Contains(t, doc, "nodes")
	assert.Contains(t, doc, "edges")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
