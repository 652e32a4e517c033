// Package submission sends a pipeline to the remote validator and falls
// back to local analysis when the validator cannot answer.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"flowcanvas/internal/dag"
	"flowcanvas/internal/domain"

	"go.uber.org/zap"
)

// DefaultEndpoint is the validator route of a locally running server
const DefaultEndpoint = "http://localhost:8000/pipelines/parse"

// ErrMalformedResponse is returned when the validator answers without
// num_nodes, num_edges and is_dag
var ErrMalformedResponse = errors.New("malformed validator response")

// DefaultTimeout bounds one remote validation
const DefaultTimeout = 5 * time.Second

// Request is the validator request body. Pipeline holds the JSON encoding
// of {nodes, edges} as a string.
type Request struct {
	Pipeline string `json:"pipeline" validate:"required"`
}

// Outcome is the result shown to the user. Offline marks a result computed
// locally because the validator failed; Err holds that failure.
type Outcome struct {
	Result  dag.Result `json:"result"`
	Offline bool       `json:"offline"`
	Err     error      `json:"-"`
}

// Client submits pipelines to a validator endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for endpoint. An empty endpoint uses
// DefaultEndpoint; a non-positive timeout uses DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("submission")
	return c
}

// Endpoint returns the validator URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit validates g remotely. Any transport, status or decoding failure is
// answered by a local analysis flagged Offline; Submit itself never fails.
func (c *Client) Submit(ctx context.Context, g domain.Graph) Outcome {
	start := time.Now()
	result, err := c.remote(ctx, g)
	submitDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		submissionsTotal.WithLabelValues("remote").Inc()
		return Outcome{Result: result}
	}

	submissionsTotal.WithLabelValues("offline").Inc()
	c.logger.Warn("remote validation failed, analyzing locally",
		zap.String("endpoint", c.endpoint),
		zap.Error(err))

	return Outcome{
		Result:  dag.AnalyzeGraph(g),
		Offline: true,
		Err:     err,
	}
}

func (c *Client) remote(ctx context.Context, g domain.Graph) (dag.Result, error) {
	body, err := EncodeRequest(g)
	if err != nil {
		return dag.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return dag.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dag.Result{}, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return dag.Result{}, &StatusError{StatusCode: resp.StatusCode}
	}

	var answer response
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return dag.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return answer.result()
}

// response is the validator answer; every field is required
type response struct {
	NumNodes *int  `json:"num_nodes"`
	NumEdges *int  `json:"num_edges"`
	IsDag    *bool `json:"is_dag"`
}

func (r response) result() (dag.Result, error) {
	if r.NumNodes == nil || r.NumEdges == nil || r.IsDag == nil {
		return dag.Result{}, ErrMalformedResponse
	}
	return dag.Result{NumNodes: *r.NumNodes, NumEdges: *r.NumEdges, IsDag: *r.IsDag}, nil
}

// EncodeRequest builds the validator request body for g
func EncodeRequest(g domain.Graph) ([]byte, error) {
	pipeline, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode pipeline: %w", err)
	}
	body, err := json.Marshal(Request{Pipeline: string(pipeline)})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return body, nil
}

// StatusError reports a non-2xx validator response
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("validator returned HTTP %d", e.StatusCode)
}
