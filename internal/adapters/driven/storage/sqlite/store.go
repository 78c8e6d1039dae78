// Package sqlite provides the router-facing projection store backed
// by SQLite. The projection holds, per index row, only the minimal
// join needed at query time: domain, filename and chunk text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure ProjectionStore implements the interface.
var _ driven.ProjectionStore = (*ProjectionStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS projection (
	row_idx  INTEGER PRIMARY KEY,
	domain   TEXT NOT NULL,
	filename TEXT NOT NULL,
	text     TEXT NOT NULL
);
`

// ProjectionStore persists the router projection in a SQLite database.
type ProjectionStore struct {
	db   *sql.DB
	path string
}

// NewProjectionStore opens (or creates) the projection database in
// dataDir. If dataDir is empty, defaults to ~/.cerebro/data.
func NewProjectionStore(dataDir string) (*ProjectionStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cerebro", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "projection.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &ProjectionStore{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *ProjectionStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ProjectionStore) Path() string {
	return s.path
}

// Replace atomically swaps the projection contents in one transaction.
func (s *ProjectionStore) Replace(ctx context.Context, rows []driven.ProjectionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projection"); err != nil {
		return fmt.Errorf("clear projection: %w", err)
	}
	if err := insertRows(ctx, tx, rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit projection: %w", err)
	}
	return nil
}

// Append adds rows for incrementally ingested chunks.
func (s *ProjectionStore) Append(ctx context.Context, rows []driven.ProjectionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit projection: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, rows []driven.ProjectionRow) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO projection (row_idx, domain, filename, text) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Row, row.Domain, row.Filename, row.Text); err != nil {
			return fmt.Errorf("insert row %d: %w", row.Row, err)
		}
	}
	return nil
}

// Get returns the projection row with the given index.
func (s *ProjectionStore) Get(ctx context.Context, row int) (*driven.ProjectionRow, error) {
	var p driven.ProjectionRow
	err := s.db.QueryRowContext(ctx,
		"SELECT row_idx, domain, filename, text FROM projection WHERE row_idx = ?", row,
	).Scan(&p.Row, &p.Domain, &p.Filename, &p.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("projection row %d: %w", row, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query projection row %d: %w", row, err)
	}
	return &p, nil
}

// Count returns the number of projected rows.
func (s *ProjectionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projection").Scan(&n); err != nil {
		return 0, fmt.Errorf("count projection rows: %w", err)
	}
	return n, nil
}
