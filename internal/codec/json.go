package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"flowcanvas/internal/domain"
)

// JSONCodec handles JSON import/export in the renderer's wire format
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports graph data from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Graph, error) {
	g := domain.NewGraph()
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(g); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	normalize(g)
	return g, nil
}

// Export exports graph data to JSON
func (c *JSONCodec) Export(g *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// normalize fills collections and IDs a hand-written document may omit
func normalize(g *domain.Graph) {
	if g.Nodes == nil {
		g.Nodes = make([]domain.Node, 0)
	}
	if g.Edges == nil {
		g.Edges = make([]domain.Edge, 0)
	}
	for i := range g.Nodes {
		if g.Nodes[i].Data == nil {
			g.Nodes[i].Data = make(map[string]any)
		}
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.ID == "" {
			e.ID = domain.EdgeID(domain.Connection{
				Source: e.Source, SourceHandle: e.SourceHandle,
				Target: e.Target, TargetHandle: e.TargetHandle,
			})
		}
	}
}
