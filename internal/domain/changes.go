package domain

// ChangeType tags an incremental canvas change
type ChangeType string

const (
	ChangeAdd      ChangeType = "add"
	ChangeRemove   ChangeType = "remove"
	ChangeSelect   ChangeType = "select"
	ChangePosition ChangeType = "position"
)

// NodeChange is one delta in a batch emitted by the renderer.
//
// Dragging is a tri-state: nil while the renderer did not report a gesture,
// true for intermediate drag frames, false once the drag has ended.
type NodeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id,omitempty"`
	Position *Position  `json:"position,omitempty"`
	Dragging *bool      `json:"dragging,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Item     *Node      `json:"item,omitempty"`
}

// EdgeChange is one delta in an edge batch
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Item     *Edge      `json:"item,omitempty"`
}

// DragEnded reports whether this change marks the end of a drag gesture
func (c NodeChange) DragEnded() bool {
	return c.Type == ChangePosition && c.Dragging != nil && !*c.Dragging
}

// ApplyNodeChanges folds changes into nodes and returns the new collection.
// The input slice and its nodes are not modified. Changes naming unknown
// IDs are ignored.
func ApplyNodeChanges(changes []NodeChange, nodes []Node) []Node {
	removed := make(map[string]struct{})
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}

	for _, c := range changes {
		switch c.Type {
		case ChangeAdd:
			if c.Item != nil {
				out = append(out, c.Item.Clone())
			}
		case ChangeRemove:
			removed[c.ID] = struct{}{}
		case ChangeSelect:
			if i := indexOfNode(out, c.ID); i >= 0 {
				out[i].Selected = c.Selected
			}
		case ChangePosition:
			if c.Position == nil {
				continue
			}
			if i := indexOfNode(out, c.ID); i >= 0 {
				out[i].Position = *c.Position
			}
		}
	}

	if len(removed) == 0 {
		return out
	}
	kept := out[:0]
	for _, n := range out {
		if _, ok := removed[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	return kept
}

// ApplyEdgeChanges folds changes into edges and returns the new collection.
func ApplyEdgeChanges(changes []EdgeChange, edges []Edge) []Edge {
	removed := make(map[string]struct{})
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e)
	}

	for _, c := range changes {
		switch c.Type {
		case ChangeAdd:
			if c.Item != nil {
				out = append(out, c.Item.Clone())
			}
		case ChangeRemove:
			removed[c.ID] = struct{}{}
		case ChangeSelect:
			for i := range out {
				if out[i].ID == c.ID {
					out[i].Selected = c.Selected
				}
			}
		}
	}

	if len(removed) == 0 {
		return out
	}
	kept := out[:0]
	for _, e := range out {
		if _, ok := removed[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	return kept
}

// RemovedIDs collects the IDs named by remove changes
func RemovedIDs(changes []NodeChange) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, c := range changes {
		if c.Type == ChangeRemove {
			ids[c.ID] = struct{}{}
		}
	}
	return ids
}

func indexOfNode(nodes []Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}
