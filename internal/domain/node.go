package domain

// NodeKind is the tag selecting a node's field schema and handles.
type NodeKind string

const (
	NodeKindInput     NodeKind = "customInput"
	NodeKindLLM       NodeKind = "llm"
	NodeKindOutput    NodeKind = "customOutput"
	NodeKindText      NodeKind = "text"
	NodeKindFilter    NodeKind = "filter"
	NodeKindMath      NodeKind = "math"
	NodeKindTimer     NodeKind = "timer"
	NodeKindAPI       NodeKind = "api"
	NodeKindCondition NodeKind = "condition"
)

// Node is a unit of the user-authored pipeline graph.
//
// ID is assigned once at creation and never reused. Type never changes after
// creation. Data is owned by the node and is only mutated through the store.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Type     NodeKind       `json:"type" yaml:"type"`
	Position Position       `json:"position" yaml:"position"`
	Data     map[string]any `json:"data" yaml:"data"`
	Selected bool           `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// NewNode creates a node with an initialized data bag
func NewNode(id string, kind NodeKind, pos Position) *Node {
	return &Node{
		ID:       id,
		Type:     kind,
		Position: pos,
		Data:     make(map[string]any),
	}
}

// Field gets a data field value
func (n *Node) Field(name string) (any, bool) {
	if n.Data == nil {
		return nil, false
	}
	val, ok := n.Data[name]
	return val, ok
}

// FieldString gets a data field as a string
func (n *Node) FieldString(name string) string {
	val, ok := n.Field(name)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithField returns a copy of the node whose data has name set to value.
// The receiver's data map is left untouched so that any snapshot sharing
// it stays intact.
func (n Node) WithField(name string, value any) Node {
	data := make(map[string]any, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data[name] = value
	n.Data = data
	return n
}

// Clone returns a structurally independent copy of the node.
func (n Node) Clone() Node {
	n.Data = cloneMap(n.Data)
	return n
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the container types that can appear in decoded JSON or
// YAML. Scalars are immutable and returned as-is.
func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
