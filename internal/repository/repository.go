package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// Source says which path produced an analysis
type Source string

const (
	// SourceValidator is the HTTP validator endpoint
	SourceValidator Source = "validator"
	// SourceLocal is an in-process analysis (offline fallback or CLI)
	SourceLocal Source = "local"
)

// Analysis is one recorded DAG check of a submitted pipeline
type Analysis struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	NumNodes    int       `json:"num_nodes"`
	NumEdges    int       `json:"num_edges"`
	IsDag       bool      `json:"is_dag"`
	Source      Source    `json:"source"`
	Order       []string  `json:"order,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalysisLog records served analyses
type AnalysisLog interface {
	RecordAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	// ListAnalyses returns the newest analyses first
	ListAnalyses(ctx context.Context, limit int) ([]Analysis, error)
	CountAnalyses(ctx context.Context) (int, error)

	// Close releases resources
	Close() error
}
