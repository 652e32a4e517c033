package catalog

import (
	"bytes"
	"fmt"
	"io"

	"flowcanvas/internal/domain"

	"gopkg.in/yaml.v3"
)

// catalogYAML represents the kinds file structure
type catalogYAML struct {
	Kinds []Spec `yaml:"kinds"`
}

// Parse reads a kinds document and validates it
func Parse(r io.Reader) (*Catalog, error) {
	var doc catalogYAML
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse kinds: %w", err)
	}

	c := &Catalog{
		specs: doc.Kinds,
		index: make(map[domain.NodeKind]int, len(doc.Kinds)),
	}
	for i, spec := range doc.Kinds {
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("kind %q: %w", spec.Kind, err)
		}
		if _, dup := c.index[spec.Kind]; dup {
			return nil, fmt.Errorf("duplicate kind %q", spec.Kind)
		}
		c.index[spec.Kind] = i
	}
	return c, nil
}

func mustLoad(data []byte) *Catalog {
	c, err := Parse(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded kinds.yaml: %v", err))
	}
	return c
}

func (s Spec) validate() error {
	if s.Kind == "" {
		return fmt.Errorf("kind required")
	}
	if s.Title == "" {
		return fmt.Errorf("title required")
	}

	fields := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name required")
		}
		if _, dup := fields[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		fields[f.Name] = struct{}{}

		switch f.Type {
		case FieldText, FieldTextarea, FieldNumber:
		case FieldSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("select field %q has no options", f.Name)
			}
		default:
			return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}
	}

	for _, h := range s.Handles {
		if h.Direction != HandleSource && h.Direction != HandleTarget {
			return fmt.Errorf("handle %q has unknown direction %q", h.Suffix, h.Direction)
		}
	}
	return nil
}
