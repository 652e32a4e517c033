package codec

import (
	"fmt"
	"io"

	"flowcanvas/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles a hand-editable YAML pipeline document
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exported documents
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlPipeline represents the YAML structure for graph data
type yamlPipeline struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	ID       string          `yaml:"id"`
	Type     string          `yaml:"type"`
	Position domain.Position `yaml:"position"`
	Data     map[string]any  `yaml:"data,omitempty"`
}

type yamlEdge struct {
	ID   string `yaml:"id,omitempty"`
	From string `yaml:"from"`
	// FromHandle and ToHandle are handle IDs as stored on the edge
	FromHandle string `yaml:"from_handle,omitempty"`
	To         string `yaml:"to"`
	ToHandle   string `yaml:"to_handle,omitempty"`
}

// Parse imports graph data from YAML. Edges receive the default styling
// applied to renderer connections.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Graph, error) {
	var yp yamlPipeline
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	g := domain.NewGraph()

	for _, yn := range yp.Nodes {
		node := domain.NewNode(yn.ID, domain.NodeKind(yn.Type), yn.Position)
		for k, v := range yn.Data {
			node.Data[k] = v
		}
		g.AddNode(*node)
	}

	for _, ye := range yp.Edges {
		edge := domain.NewEdge(domain.Connection{
			Source:       ye.From,
			SourceHandle: ye.FromHandle,
			Target:       ye.To,
			TargetHandle: ye.ToHandle,
		})
		if ye.ID != "" {
			edge.ID = ye.ID
		}
		g.AddEdge(*edge)
	}

	return g, nil
}

// Export exports graph data to YAML. Selection state and edge styling are
// presentation details and are not written.
func (c *YAMLCodec) Export(g *domain.Graph, w io.Writer) error {
	yp := yamlPipeline{
		Nodes: make([]yamlNode, 0, len(g.Nodes)),
		Edges: make([]yamlEdge, 0, len(g.Edges)),
	}

	for _, node := range g.Nodes {
		yp.Nodes = append(yp.Nodes, yamlNode{
			ID:       node.ID,
			Type:     string(node.Type),
			Position: node.Position,
			Data:     node.Data,
		})
	}

	for _, edge := range g.Edges {
		yp.Edges = append(yp.Edges, yamlEdge{
			ID:         edge.ID,
			From:       edge.Source,
			FromHandle: edge.SourceHandle,
			To:         edge.Target,
			ToHandle:   edge.TargetHandle,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yp); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
