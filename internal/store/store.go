package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/history"

	"go.uber.org/zap"
)

var (
	// ErrClosed is returned by mutations on a closed store
	ErrClosed = errors.New("store closed")
	// ErrDuplicateNode is returned when a node ID is already present
	ErrDuplicateNode = errors.New("duplicate node ID")
	// ErrNodeNotFound is returned when a connection names a missing node
	ErrNodeNotFound = errors.New("node not found")
)

// Options configures a Store
type Options struct {
	// MaxHistory bounds the number of history entries
	MaxHistory int
	// FieldDebounce is the quiet period before field edits are checkpointed
	FieldDebounce time.Duration
	// Catalog resolves node kinds for CreateNode; defaults to catalog.Default()
	Catalog *catalog.Catalog
	Logger  *zap.Logger
}

// HistoryState describes the undo history for toolbar affordances
type HistoryState struct {
	CanUndo bool            `json:"can_undo"`
	CanRedo bool            `json:"can_redo"`
	Cursor  int             `json:"cursor"`
	Max     int             `json:"max"`
	Pending bool            `json:"pending"`
	Entries []history.Entry `json:"entries"`
}

// Store owns the live node and edge collections.
type Store struct {
	mu sync.Mutex
	// notifyMu is taken before mu is released so events reach subscribers
	// in commit order
	notifyMu sync.Mutex
	seq      uint64

	nodes []domain.Node
	edges []domain.Edge

	ids      *Allocator
	catalog  *catalog.Catalog
	history  *history.Manager
	debounce *history.Debouncer

	// fieldsDirty is set by field edits not yet covered by a checkpoint
	fieldsDirty bool
	closed      bool

	subs    map[int]Subscriber
	nextSub int

	logger *zap.Logger
}

// New creates an empty store with history initialized to the empty graph.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}

	s := &Store{
		nodes:   make([]domain.Node, 0),
		edges:   make([]domain.Edge, 0),
		ids:     NewAllocator(),
		catalog: opts.Catalog,
		history: history.NewManager(opts.MaxHistory),
		subs:    make(map[int]Subscriber),
		logger:  opts.Logger.Named("store"),
	}
	s.debounce = history.NewDebouncer(opts.FieldDebounce, s.commitFieldEdits)
	return s
}

// Subscribe registers fn for every committed mutation and returns a
// function that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// mutate runs fn inside the critical section. fn reports whether state
// changed and whether the change is a discrete action that must be
// checkpointed immediately.
func (s *Store) mutate(kind EventKind, fn func() (changed, checkpoint bool)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	changed, checkpoint := fn()
	if !changed {
		s.mu.Unlock()
		return nil
	}
	if checkpoint {
		s.checkpointLocked(kind)
	}
	ev, subs := s.eventLocked(kind, checkpoint)
	s.notifyMu.Lock()
	s.mu.Unlock()

	notify(subs, ev)
	s.notifyMu.Unlock()
	return nil
}

// checkpointLocked records the live graph. Pending field edits are part of
// the live graph, so the debounced checkpoint is no longer needed.
func (s *Store) checkpointLocked(reason EventKind) {
	s.debounce.Cancel()
	s.fieldsDirty = false
	s.history.Checkpoint(s.graphLocked())
	checkpointsTotal.WithLabelValues(string(reason)).Inc()

	s.logger.Debug("checkpoint",
		zap.String("reason", string(reason)),
		zap.Int("cursor", s.history.Cursor()),
		zap.Int("entries", s.history.Len()))
}

func (s *Store) graphLocked() domain.Graph {
	return domain.Graph{Nodes: s.nodes, Edges: s.edges}
}

func (s *Store) eventLocked(kind EventKind, checkpoint bool) (Event, []Subscriber) {
	s.seq++
	ev := Event{
		Seq:         s.seq,
		Kind:        kind,
		Checkpoint:  checkpoint,
		NumNodes:    len(s.nodes),
		NumEdges:    len(s.edges),
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
		Fingerprint: s.graphLocked().Fingerprint(),
	}
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return ev, subs
}

func notify(subs []Subscriber, ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}

// AddNode appends node and records a checkpoint. The node must carry an ID
// not already present in the store.
func (s *Store) AddNode(node domain.Node) error {
	if node.ID == "" {
		return fmt.Errorf("add node: node ID required")
	}

	var err error
	mutateErr := s.mutate(EventNodeAdded, func() (bool, bool) {
		if indexOfNode(s.nodes, node.ID) >= 0 {
			err = fmt.Errorf("add node %s: %w", node.ID, ErrDuplicateNode)
			return false, false
		}
		s.ids.Observe(node.Type, node.ID)
		s.nodes = append(s.nodes, node.Clone())
		return true, true
	})
	if mutateErr != nil {
		return mutateErr
	}
	return err
}

// CreateNode allocates an ID for kind, seeds the node's data from the
// catalog and adds it at pos.
func (s *Store) CreateNode(kind domain.NodeKind, pos domain.Position) (domain.Node, error) {
	if _, err := s.catalog.Lookup(kind); err != nil {
		return domain.Node{}, err
	}

	id := s.ids.Next(kind)
	data, err := s.catalog.InitialData(id, kind)
	if err != nil {
		return domain.Node{}, err
	}

	node := domain.Node{ID: id, Type: kind, Position: pos, Data: data}
	if err := s.AddNode(node); err != nil {
		return domain.Node{}, err
	}

	s.logger.Debug("node created", zap.String("id", id), zap.String("kind", string(kind)))
	return node.Clone(), nil
}

// ApplyNodeChanges folds a renderer change batch into the node collection.
// Removing a node also removes every edge attached to it. A checkpoint is
// recorded when the batch removes a node or ends a drag gesture;
// intermediate drag frames and selection changes are not recorded.
func (s *Store) ApplyNodeChanges(changes []domain.NodeChange) error {
	if len(changes) == 0 {
		return nil
	}

	return s.mutate(EventNodesChanged, func() (bool, bool) {
		changes := s.admitNodeAddsLocked(changes)
		if len(changes) == 0 {
			return false, false
		}
		s.nodes = domain.ApplyNodeChanges(changes, s.nodes)
		if removed := domain.RemovedIDs(changes); len(removed) > 0 {
			s.edges = withoutEdgesTouching(s.edges, removed)
		}
		return true, nodeBatchNeedsCheckpoint(changes)
	})
}

// admitNodeAddsLocked drops add changes whose node has no ID or an ID
// already in the store or earlier in the batch. Accepted IDs advance the
// allocator.
func (s *Store) admitNodeAddsLocked(changes []domain.NodeChange) []domain.NodeChange {
	out := make([]domain.NodeChange, 0, len(changes))
	added := make(map[string]struct{})
	for _, c := range changes {
		if c.Type == domain.ChangeAdd {
			if c.Item == nil || c.Item.ID == "" {
				continue
			}
			_, dup := added[c.Item.ID]
			if dup || indexOfNode(s.nodes, c.Item.ID) >= 0 {
				s.logger.Debug("duplicate node add ignored", zap.String("id", c.Item.ID))
				continue
			}
			added[c.Item.ID] = struct{}{}
			s.ids.Observe(c.Item.Type, c.Item.ID)
		}
		out = append(out, c)
	}
	return out
}

func nodeBatchNeedsCheckpoint(changes []domain.NodeChange) bool {
	for _, c := range changes {
		if c.Type == domain.ChangeRemove || c.DragEnded() {
			return true
		}
	}
	return false
}

// ApplyEdgeChanges folds a renderer change batch into the edge collection.
// Only batches containing a removal are checkpointed.
func (s *Store) ApplyEdgeChanges(changes []domain.EdgeChange) error {
	if len(changes) == 0 {
		return nil
	}

	return s.mutate(EventEdgesChanged, func() (bool, bool) {
		changes := s.admitEdgeAddsLocked(changes)
		if len(changes) == 0 {
			return false, false
		}
		s.edges = domain.ApplyEdgeChanges(changes, s.edges)
		checkpoint := false
		for _, c := range changes {
			if c.Type == domain.ChangeRemove {
				checkpoint = true
				break
			}
		}
		return true, checkpoint
	})
}

// Connect adds a styled edge for conn and always records a checkpoint.
// Both endpoints must name nodes in the store. A connection identical to an
// existing edge is not added twice.
func (s *Store) Connect(conn domain.Connection) (domain.Edge, error) {
	if err := conn.Validate(); err != nil {
		return domain.Edge{}, fmt.Errorf("connect: %w", err)
	}

	var edge domain.Edge
	var err error
	mutateErr := s.mutate(EventConnected, func() (bool, bool) {
		for _, id := range []string{conn.Source, conn.Target} {
			if indexOfNode(s.nodes, id) < 0 {
				err = fmt.Errorf("connect %s: %w", id, ErrNodeNotFound)
				return false, false
			}
		}

		edge = *domain.NewEdge(conn)
		exists := false
		for i := range s.edges {
			if s.edges[i].Connects(conn) {
				exists = true
				break
			}
		}
		if !exists {
			s.edges = append(s.edges, edge.Clone())
		}
		return true, true
	})
	if mutateErr != nil {
		return domain.Edge{}, mutateErr
	}
	if err != nil {
		return domain.Edge{}, err
	}
	return edge, nil
}

// admitEdgeAddsLocked drops add changes whose edge does not join two live
// nodes
func (s *Store) admitEdgeAddsLocked(changes []domain.EdgeChange) []domain.EdgeChange {
	out := make([]domain.EdgeChange, 0, len(changes))
	for _, c := range changes {
		if c.Type == domain.ChangeAdd {
			if c.Item == nil || indexOfNode(s.nodes, c.Item.Source) < 0 || indexOfNode(s.nodes, c.Item.Target) < 0 {
				s.logger.Debug("dangling edge add ignored")
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// UpdateNodeField sets one data field on the node with nodeID. An unknown
// node is ignored and reported as false. The edit is checkpointed once the
// store-wide debounce window passes without further edits, so a burst of
// edits across any fields and nodes becomes a single history entry.
func (s *Store) UpdateNodeField(nodeID, field string, value any) (bool, error) {
	found := false
	err := s.mutate(EventFieldUpdated, func() (bool, bool) {
		i := indexOfNode(s.nodes, nodeID)
		if i < 0 {
			return false, false
		}
		found = true
		s.nodes[i] = s.nodes[i].WithField(field, value)

		if s.fieldsDirty {
			coalescedEditsTotal.Inc()
		}
		s.fieldsDirty = true
		s.debounce.Schedule()
		return true, false
	})
	return found, err
}

// commitFieldEdits is the debounced checkpoint. It runs on the timer
// goroutine or, through FlushPending, on the caller's.
func (s *Store) commitFieldEdits() {
	_ = s.mutate(EventFieldsCommitted, func() (bool, bool) {
		if !s.fieldsDirty {
			return false, false
		}
		return true, true
	})
}

// DeleteSelected removes every selected node together with the edges
// attached to them and returns the number of nodes removed. With nothing
// selected it does nothing and records no checkpoint.
func (s *Store) DeleteSelected() (int, error) {
	removed := 0
	err := s.mutate(EventSelectionDeleted, func() (bool, bool) {
		ids := make(map[string]struct{})
		for _, n := range s.nodes {
			if n.Selected {
				ids[n.ID] = struct{}{}
			}
		}
		if len(ids) == 0 {
			return false, false
		}

		kept := make([]domain.Node, 0, len(s.nodes)-len(ids))
		for _, n := range s.nodes {
			if _, ok := ids[n.ID]; !ok {
				kept = append(kept, n)
			}
		}
		s.nodes = kept
		s.edges = withoutEdgesTouching(s.edges, ids)
		removed = len(ids)
		return true, true
	})
	return removed, err
}

// ReplaceGraph swaps the live graph for g and records a checkpoint. Used by
// imports; g must be structurally valid.
func (s *Store) ReplaceGraph(g domain.Graph) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}

	g = g.Clone()
	return s.mutate(EventGraphReplaced, func() (bool, bool) {
		for _, n := range g.Nodes {
			s.ids.Observe(n.Type, n.ID)
		}
		s.nodes = g.Nodes
		s.edges = g.Edges
		return true, true
	})
}

// Undo restores the previous history entry and reports whether the cursor
// moved. Field edits still waiting for their debounced checkpoint are
// recorded first so that undo reverts them.
func (s *Store) Undo() (bool, error) {
	return s.step(EventUndo, s.history.Undo)
}

// Redo restores the next history entry and reports whether the cursor moved.
func (s *Store) Redo() (bool, error) {
	return s.step(EventRedo, s.history.Redo)
}

func (s *Store) step(kind EventKind, move func() (domain.Graph, bool)) (bool, error) {
	moved := false
	err := s.mutate(kind, func() (bool, bool) {
		if s.fieldsDirty {
			s.checkpointLocked(EventFieldsCommitted)
		}

		g, ok := move()
		if !ok {
			return false, false
		}
		s.nodes = g.Nodes
		s.edges = g.Edges
		moved = true
		historyMovesTotal.WithLabelValues(string(kind)).Inc()
		return true, false
	})
	return moved, err
}

// CanUndo reports whether an older history entry exists
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a newer history entry exists
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// InitializeHistory discards all history and seeds it with the live graph
// at cursor 0. Pending field edits are dropped from history but stay in
// the live graph.
func (s *Store) InitializeHistory() error {
	return s.mutate(EventHistoryReset, func() (bool, bool) {
		s.debounce.Cancel()
		s.fieldsDirty = false
		s.history.Reset(s.graphLocked())
		return true, false
	})
}

// History returns the undo history summary
func (s *Store) History() HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return HistoryState{
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
		Cursor:  s.history.Cursor(),
		Max:     s.history.Max(),
		Pending: s.fieldsDirty,
		Entries: s.history.Entries(),
	}
}

// Snapshot returns a deep copy of the live graph
func (s *Store) Snapshot() domain.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graphLocked().Clone()
}

// Node returns a copy of the node with id
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfNode(s.nodes, id)
	if i < 0 {
		return domain.Node{}, false
	}
	return s.nodes[i].Clone(), true
}

// Catalog returns the kind catalog used by CreateNode
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// FlushPending records any debounced checkpoint immediately and reports
// whether there was one.
func (s *Store) FlushPending() bool {
	return s.debounce.Flush()
}

// Close stops the debounce timer and rejects further mutations. Pending
// field edits are not checkpointed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.debounce.Stop()
	s.subs = make(map[int]Subscriber)
	s.logger.Debug("store closed")
	return nil
}

func indexOfNode(nodes []domain.Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func withoutEdgesTouching(edges []domain.Edge, ids map[string]struct{}) []domain.Edge {
	kept := make([]domain.Edge, 0, len(edges))
	for _, e := range edges {
		if !e.Touches(ids) {
			kept = append(kept, e)
		}
	}
	return kept
}
