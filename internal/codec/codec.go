// Package codec converts pipeline graphs to and from document formats.
package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"flowcanvas/internal/domain"
)

// ErrUnsupportedFormat is returned for a format no codec handles
var ErrUnsupportedFormat = errors.New("unsupported format")

// Importer interface for importing graph data from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Graph, error)
	Format() string
}

// Exporter interface for exporting graph data to various formats
type Exporter interface {
	Export(g *domain.Graph, w io.Writer) error
	Format() string
}

// Codec both imports and exports one format
type Codec interface {
	Importer
	Exporter
	ContentType() string
}

// Codecs returns every built-in codec
func Codecs() []Codec {
	return []Codec{NewJSONCodec(), NewYAMLCodec()}
}

// For returns the codec for format ("json", "yaml" or "yml")
func For(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return For(path[i+1:])
}
