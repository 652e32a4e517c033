package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/codec"
	"flowcanvas/internal/controls"
	"flowcanvas/internal/dag"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/repository"
	"flowcanvas/internal/store"
	"flowcanvas/internal/submission"

	"go.uber.org/zap"
)

var (
	// ErrInvalidPipelineJSON is returned when a submitted pipeline is not JSON
	ErrInvalidPipelineJSON = errors.New("invalid JSON in pipeline data")
	// ErrEmptyPipeline is returned when a submitted pipeline has no nodes
	ErrEmptyPipeline = errors.New("pipeline must contain at least one node")
)

// Submitter sends a graph for validation
type Submitter interface {
	Submit(ctx context.Context, g domain.Graph) submission.Outcome
}

// SubmitResult is what the result presenter shows after a submission
type SubmitResult struct {
	Result  dag.Result `json:"result"`
	Offline bool       `json:"offline"`
	Error   string     `json:"error,omitempty"`
}

// ShortcutResult reports what a keyboard shortcut did
type ShortcutResult struct {
	Action controls.Action `json:"action"`
	// Applied is false when the action had nothing to act on
	Applied bool `json:"applied"`
}

// PipelineService provides the editor's operations
type PipelineService struct {
	store     *store.Store
	log       repository.AnalysisLog
	submitter Submitter
	eventBus  *EventBus
	logger    *zap.Logger

	unsubscribe func()
}

// NewPipelineService creates a service over st. Store events are forwarded
// to eventBus until Close.
func NewPipelineService(st *store.Store, log repository.AnalysisLog, submitter Submitter, eventBus *EventBus, logger *zap.Logger) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PipelineService{
		store:     st,
		log:       log,
		submitter: submitter,
		eventBus:  eventBus,
		logger:    logger.Named("service"),
	}
	s.unsubscribe = st.Subscribe(func(ev store.Event) {
		eventBus.Publish(Event{Type: EventGraphChanged, Payload: ev})
	})
	return s
}

// Close stops forwarding store events
func (s *PipelineService) Close() {
	s.unsubscribe()
}

// Store returns the underlying graph store
func (s *PipelineService) Store() *store.Store {
	return s.store
}

// GetGraph returns the live graph and its fingerprint
func (s *PipelineService) GetGraph() (domain.Graph, string) {
	g := s.store.Snapshot()
	return g, g.Fingerprint()
}

// Kinds lists the node kinds the toolbar offers
func (s *PipelineService) Kinds() []catalog.Spec {
	return s.store.Catalog().Kinds()
}

// CreateNode adds a node of kind at pos with a fresh ID
func (s *PipelineService) CreateNode(kind domain.NodeKind, pos domain.Position) (domain.Node, error) {
	return s.store.CreateNode(kind, pos)
}

// ApplyNodeChanges forwards a renderer node change batch
func (s *PipelineService) ApplyNodeChanges(changes []domain.NodeChange) error {
	return s.store.ApplyNodeChanges(changes)
}

// ApplyEdgeChanges forwards a renderer edge change batch
func (s *PipelineService) ApplyEdgeChanges(changes []domain.EdgeChange) error {
	return s.store.ApplyEdgeChanges(changes)
}

// Connect creates an edge for conn
func (s *PipelineService) Connect(conn domain.Connection) (domain.Edge, error) {
	return s.store.Connect(conn)
}

// UpdateField sets one data field of a node. It reports false for an
// unknown node.
func (s *PipelineService) UpdateField(nodeID, field string, value any) (bool, error) {
	return s.store.UpdateNodeField(nodeID, field, value)
}

// DeleteSelected removes the selected nodes and their edges
func (s *PipelineService) DeleteSelected() (int, error) {
	return s.store.DeleteSelected()
}

// Undo steps history back
func (s *PipelineService) Undo() (bool, error) {
	return s.store.Undo()
}

// Redo steps history forward
func (s *PipelineService) Redo() (bool, error) {
	return s.store.Redo()
}

// History returns the undo history summary
func (s *PipelineService) History() store.HistoryState {
	return s.store.History()
}

// Shortcut resolves a key press and performs the bound action
func (s *PipelineService) Shortcut(ev controls.KeyEvent) (ShortcutResult, error) {
	action := controls.Resolve(ev)
	res := ShortcutResult{Action: action}

	var err error
	switch action {
	case controls.ActionUndo:
		res.Applied, err = s.store.Undo()
	case controls.ActionRedo:
		res.Applied, err = s.store.Redo()
	case controls.ActionDeleteSelected:
		var n int
		n, err = s.store.DeleteSelected()
		res.Applied = n > 0
	}
	if err != nil {
		return ShortcutResult{}, fmt.Errorf("shortcut %s: %w", action, err)
	}
	return res, nil
}

// Submit sends the live graph to the validator. Offline results are
// recorded in the analysis log; online ones are recorded by the validator.
func (s *PipelineService) Submit(ctx context.Context) SubmitResult {
	g := s.store.Snapshot()
	out := s.submitter.Submit(ctx, g)

	res := SubmitResult{Result: out.Result, Offline: out.Offline}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}

	if out.Offline {
		order, _ := dag.TopologicalOrder(g.Nodes, g.Edges)
		s.record(ctx, &repository.Analysis{
			Fingerprint: g.Fingerprint(),
			NumNodes:    out.Result.NumNodes,
			NumEdges:    out.Result.NumEdges,
			IsDag:       out.Result.IsDag,
			Source:      repository.SourceLocal,
			Order:       order,
		})
	}

	s.logger.Info("pipeline submitted",
		zap.Int("num_nodes", res.Result.NumNodes),
		zap.Int("num_edges", res.Result.NumEdges),
		zap.Bool("is_dag", res.Result.IsDag),
		zap.Bool("offline", res.Offline))

	s.eventBus.Publish(Event{Type: EventSubmitted, Payload: res})
	return res
}

// Analyze serves the validator endpoint: pipeline is the JSON string of a
// {nodes, edges} document. The analysis is recorded in the log.
func (s *PipelineService) Analyze(ctx context.Context, pipeline string) (*repository.Analysis, error) {
	var doc domain.Graph
	if err := json.Unmarshal([]byte(pipeline), &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPipelineJSON, err)
		}
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrEmptyPipeline
	}

	result := dag.AnalyzeGraph(doc)
	order, _ := dag.TopologicalOrder(doc.Nodes, doc.Edges)
	a := &repository.Analysis{
		Fingerprint: doc.Fingerprint(),
		NumNodes:    result.NumNodes,
		NumEdges:    result.NumEdges,
		IsDag:       result.IsDag,
		Source:      repository.SourceValidator,
		Order:       order,
	}
	s.record(ctx, a)

	s.eventBus.Publish(Event{Type: EventAnalyzed, Payload: a})
	return a, nil
}

// record writes to the analysis log. A failed write is logged, never
// surfaced: the analysis itself succeeded.
func (s *PipelineService) record(ctx context.Context, a *repository.Analysis) {
	if s.log == nil {
		return
	}
	if err := s.log.RecordAnalysis(ctx, a); err != nil {
		s.logger.Error("failed to record analysis", zap.Error(err))
	}
}

// ListAnalyses returns recent analyses, newest first
func (s *PipelineService) ListAnalyses(ctx context.Context, limit int) ([]repository.Analysis, error) {
	if s.log == nil {
		return []repository.Analysis{}, nil
	}
	return s.log.ListAnalyses(ctx, limit)
}

// Export writes the live graph in format
func (s *PipelineService) Export(format string, w io.Writer) error {
	c, err := codec.For(format)
	if err != nil {
		return err
	}
	g := s.store.Snapshot()
	return c.Export(&g, w)
}

// ExportBytes is Export into memory, returning the codec's content type
func (s *PipelineService) ExportBytes(format string) ([]byte, string, error) {
	c, err := codec.For(format)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	g := s.store.Snapshot()
	if err := c.Export(&g, &buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), c.ContentType(), nil
}

// ImportResult summarizes an import
type ImportResult struct {
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	Format string `json:"format"`
}

// Import replaces the live graph with a document in format. The
// replacement is a single undoable step.
func (s *PipelineService) Import(format string, r io.Reader) (*ImportResult, error) {
	c, err := codec.For(format)
	if err != nil {
		return nil, err
	}

	g, err := c.Parse(r)
	if err != nil {
		return nil, err
	}
	if err := s.validateGraph(g); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceGraph(*g); err != nil {
		return nil, err
	}

	s.logger.Info("graph imported",
		zap.String("format", c.Format()),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)))

	return &ImportResult{Nodes: len(g.Nodes), Edges: len(g.Edges), Format: c.Format()}, nil
}

// ImportFile imports the document at path, picking the codec from its
// extension
func (s *PipelineService) ImportFile(path string) (*ImportResult, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := s.Import(c.Format(), f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return res, nil
}

// Validation helpers

// validateGraph rejects imported nodes of a kind the catalog does not
// know, on top of the structural checks done by the store.
func (s *PipelineService) validateGraph(g *domain.Graph) error {
	for _, n := range g.Nodes {
		if n.Type == "" {
			return fmt.Errorf("%w: node %s: type required", domain.ErrInvalidGraph, n.ID)
		}
		if _, err := s.store.Catalog().Lookup(n.Type); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	return nil
}
