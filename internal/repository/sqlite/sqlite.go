package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"flowcanvas/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the database in process memory
const MemoryDSN = ":memory:"

// Repository implements repository.AnalysisLog using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.AnalysisLog = (*Repository)(nil)

// New creates a new SQLite repository
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == MemoryDSN {
		// Every connection to :memory: is a distinct database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func withPragmas(dsn string) string {
	if dsn == MemoryDSN || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		fingerprint TEXT,
		num_nodes INTEGER NOT NULL,
		num_edges INTEGER NOT NULL,
		is_dag INTEGER NOT NULL,
		source TEXT NOT NULL,
		topo_order TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_analyses_fingerprint ON analyses(fingerprint);
	`

	_, err := r.db.Exec(schema)
	return err
}

// RecordAnalysis inserts a. Missing ID and CreatedAt are filled in and
// written back to a.
func (r *Repository) RecordAnalysis(ctx context.Context, a *repository.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	if a.Source == "" {
		a.Source = repository.SourceLocal
	}

	order, err := marshalToNull(a.Order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, stringToNull(a.Fingerprint), a.NumNodes, a.NumEdges, boolToInt(a.IsDag),
		string(a.Source), order, a.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads one analysis by ID
func (r *Repository) GetAnalysis(ctx context.Context, id string) (*repository.Analysis, error) {
	var row analysisRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+analysisColumns+` FROM analyses WHERE id = ?
	`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}
	return row.toDomain()
}

// ListAnalyses returns up to limit analyses, newest first. A non-positive
// limit returns all of them.
func (r *Repository) ListAnalyses(ctx context.Context, limit int) ([]repository.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]repository.Analysis, 0)
	for rows.Next() {
		var row analysisRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return analyses, nil
}

// CountAnalyses returns the number of recorded analyses
func (r *Repository) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
