package domain

import "fmt"

// Default visual styling applied to every edge created from a connection.
const (
	EdgeTypeSmoothStep = "smoothstep"
	MarkerTypeArrow    = "arrow"
	defaultMarkerSize  = "20px"
)

// MarkerEnd describes the arrow drawn at an edge's target end
type MarkerEnd struct {
	Type   string `json:"type" yaml:"type"`
	Height string `json:"height,omitempty" yaml:"height,omitempty"`
	Width  string `json:"width,omitempty" yaml:"width,omitempty"`
}

// Edge is a directed connection between two node handles
type Edge struct {
	ID           string     `json:"id" yaml:"id"`
	Source       string     `json:"source" yaml:"source"`
	SourceHandle string     `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	Target       string     `json:"target" yaml:"target"`
	TargetHandle string     `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
	Type         string     `json:"type,omitempty" yaml:"type,omitempty"`
	Animated     bool       `json:"animated,omitempty" yaml:"animated,omitempty"`
	MarkerEnd    *MarkerEnd `json:"markerEnd,omitempty" yaml:"markerEnd,omitempty"`
	Selected     bool       `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// NewEdge creates a styled edge for a connection
func NewEdge(conn Connection) *Edge {
	return &Edge{
		ID:           EdgeID(conn),
		Source:       conn.Source,
		SourceHandle: conn.SourceHandle,
		Target:       conn.Target,
		TargetHandle: conn.TargetHandle,
		Type:         EdgeTypeSmoothStep,
		Animated:     true,
		MarkerEnd: &MarkerEnd{
			Type:   MarkerTypeArrow,
			Height: defaultMarkerSize,
			Width:  defaultMarkerSize,
		},
	}
}

// EdgeID derives the renderer's edge identifier for a connection. Two
// connections between the same handles share an ID.
func EdgeID(conn Connection) string {
	return fmt.Sprintf("reactflow__edge-%s%s-%s%s",
		conn.Source, conn.SourceHandle, conn.Target, conn.TargetHandle)
}

// Connects checks whether the edge joins exactly the handles of conn
func (e *Edge) Connects(conn Connection) bool {
	return e.Source == conn.Source &&
		e.Target == conn.Target &&
		e.SourceHandle == conn.SourceHandle &&
		e.TargetHandle == conn.TargetHandle
}

// Touches checks if either endpoint is in the given ID set
func (e *Edge) Touches(ids map[string]struct{}) bool {
	if _, ok := ids[e.Source]; ok {
		return true
	}
	_, ok := ids[e.Target]
	return ok
}

// Clone returns a structurally independent copy of the edge.
func (e Edge) Clone() Edge {
	if e.MarkerEnd != nil {
		m := *e.MarkerEnd
		e.MarkerEnd = &m
	}
	return e
}
