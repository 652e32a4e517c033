// Package catalog enumerates the node kinds the canvas offers.
//
// Each domain.NodeKind maps to a Spec describing the fields a node of that
// kind carries in its data bag and the handles edges may attach to. The
// store stays kind-agnostic; only node creation consults the catalog, to
// validate the requested kind and seed the node's initial data.
//
// Specs are declared in kinds.yaml, embedded at build time.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"flowcanvas/internal/domain"
)

// ErrUnknownKind is returned when a kind has no catalog entry
var ErrUnknownKind = errors.New("unknown node kind")

// FieldType is the editor widget a field is rendered with
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldNumber   FieldType = "number"
)

// HandleDirection says whether edges leave or enter a handle
type HandleDirection string

const (
	HandleSource HandleDirection = "source"
	HandleTarget HandleDirection = "target"
)

// Field describes one entry of a node's data bag
type Field struct {
	Name    string    `yaml:"name" json:"name"`
	Label   string    `yaml:"label" json:"label"`
	Type    FieldType `yaml:"type" json:"type"`
	Options []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Default string    `yaml:"default,omitempty" json:"default,omitempty"`
	// IDDefault derives the default from the node ID: the numeric part of
	// "customInput-3" appended to "input_" gives "input_3".
	IDDefault string `yaml:"id_default,omitempty" json:"id_default,omitempty"`
}

// Handle is a connection point on a node
type Handle struct {
	Suffix    string          `yaml:"suffix" json:"suffix"`
	Direction HandleDirection `yaml:"direction" json:"direction"`
}

// Spec is the schema of one node kind
type Spec struct {
	Kind    domain.NodeKind `yaml:"kind" json:"kind"`
	Title   string          `yaml:"title" json:"title"`
	Icon    string          `yaml:"icon" json:"icon"`
	Fields  []Field         `yaml:"fields,omitempty" json:"fields"`
	Handles []Handle        `yaml:"handles" json:"handles"`
}

//go:embed kinds.yaml
var kindsYAML []byte

var defaultCatalog = mustLoad(kindsYAML)

// Default returns the catalog built from the embedded kinds.yaml
func Default() *Catalog {
	return defaultCatalog
}

// Lookup returns the spec for kind
func Lookup(kind domain.NodeKind) (*Spec, error) {
	return defaultCatalog.Lookup(kind)
}

// Kinds returns every spec in toolbar order
func Kinds() []Spec {
	return defaultCatalog.Kinds()
}

// Valid reports whether kind has a catalog entry
func Valid(kind domain.NodeKind) bool {
	_, err := defaultCatalog.Lookup(kind)
	return err == nil
}

// InitialData builds the data bag of a freshly created node
func InitialData(id string, kind domain.NodeKind) (map[string]any, error) {
	return defaultCatalog.InitialData(id, kind)
}

// HandleID names a handle on a specific node
func HandleID(nodeID, suffix string) string {
	return fmt.Sprintf("%s-%s", nodeID, suffix)
}

// Catalog is an ordered, indexed set of kind specs
type Catalog struct {
	specs []Spec
	index map[domain.NodeKind]int
}

// Lookup returns the spec for kind
func (c *Catalog) Lookup(kind domain.NodeKind) (*Spec, error) {
	i, ok := c.index[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	spec := c.specs[i]
	return &spec, nil
}

// Kinds returns a copy of every spec in declaration order
func (c *Catalog) Kinds() []Spec {
	out := make([]Spec, len(c.specs))
	copy(out, c.specs)
	return out
}

// InitialData returns {id, nodeType} plus each field's default value.
func (c *Catalog) InitialData(id string, kind domain.NodeKind) (map[string]any, error) {
	spec, err := c.Lookup(kind)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"id":       id,
		"nodeType": string(kind),
	}
	for _, f := range spec.Fields {
		data[f.Name] = f.defaultFor(id, kind)
	}
	return data, nil
}

func (f Field) defaultFor(id string, kind domain.NodeKind) string {
	if f.IDDefault == "" {
		return f.Default
	}
	return strings.Replace(id, string(kind)+"-", f.IDDefault, 1)
}

// HasHandle reports whether the spec declares a handle with the given
// suffix and direction.
func (s *Spec) HasHandle(suffix string, dir HandleDirection) bool {
	for _, h := range s.Handles {
		if h.Suffix == suffix && h.Direction == dir {
			return true
		}
	}
	return false
}
