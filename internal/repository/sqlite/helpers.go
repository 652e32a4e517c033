package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"flowcanvas/internal/repository"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a slice to a nullable JSON string.
// Empty slices are stored as NULL.
func marshalToNull(v []string) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Analysis Row Scanner
// ============================================================================
//
// Column order must match between analysisColumns, scanArgs() and every
// SELECT using analysisColumns.

const analysisColumns = `id, fingerprint, num_nodes, num_edges, is_dag, source, topo_order, created_at`

// analysisRow holds all columns from an analysis query for scanning
type analysisRow struct {
	ID          string
	Fingerprint sql.NullString
	NumNodes    int
	NumEdges    int
	IsDag       int64
	Source      string
	OrderJSON   sql.NullString
	CreatedAt   int64
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *analysisRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.Fingerprint,
		&r.NumNodes,
		&r.NumEdges,
		&r.IsDag,
		&r.Source,
		&r.OrderJSON,
		&r.CreatedAt,
	}
}

// toDomain converts the row to a repository.Analysis
func (r *analysisRow) toDomain() (*repository.Analysis, error) {
	a := &repository.Analysis{
		ID:          r.ID,
		Fingerprint: nullToString(r.Fingerprint),
		NumNodes:    r.NumNodes,
		NumEdges:    r.NumEdges,
		IsDag:       r.IsDag != 0,
		Source:      repository.Source(r.Source),
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
	}
	if err := unmarshalJSONField(r.OrderJSON, &a.Order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order for analysis %s: %w", r.ID, err)
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
