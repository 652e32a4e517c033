package store

// EventKind names the mutation that produced an Event
type EventKind string

const (
	EventNodeAdded        EventKind = "node_added"
	EventNodesChanged     EventKind = "nodes_changed"
	EventEdgesChanged     EventKind = "edges_changed"
	EventConnected        EventKind = "connected"
	EventFieldUpdated     EventKind = "field_updated"
	EventFieldsCommitted  EventKind = "fields_committed"
	EventSelectionDeleted EventKind = "selection_deleted"
	EventUndo             EventKind = "undo"
	EventRedo             EventKind = "redo"
	EventHistoryReset     EventKind = "history_reset"
	EventGraphReplaced    EventKind = "graph_replaced"
)

// Event is delivered to subscribers after a mutation commits.
type Event struct {
	// Seq increases by one per committed mutation
	Seq         uint64    `json:"seq"`
	Kind        EventKind `json:"kind"`
	Checkpoint  bool      `json:"checkpoint"`
	NumNodes    int       `json:"num_nodes"`
	NumEdges    int       `json:"num_edges"`
	CanUndo     bool      `json:"can_undo"`
	CanRedo     bool      `json:"can_redo"`
	Fingerprint string    `json:"fingerprint"`
}

// Subscriber receives store events in commit order. It runs on the
// mutating goroutine after the store lock is released, must not block and
// must not call back into the store.
type Subscriber func(Event)
