package driven

import "context"

// ProjectionRow is the minimal per-row join the router needs to answer
// a query without loading full chunk metadata.
type ProjectionRow struct {
	// Row is the vector index row this entry is aligned with.
	Row int

	// Domain is the chunk's domain label.
	Domain string

	// Filename is the owning document's base name.
	Filename string

	// Text is the chunk text.
	Text string
}

// ProjectionStore persists the router-facing projection of the
// metadata store. It is rebuilt after every successful snapshot
// persist and must stay row-aligned with the vector index.
type ProjectionStore interface {
	// Replace atomically swaps the projection contents.
	Replace(ctx context.Context, rows []ProjectionRow) error

	// Append adds rows for incrementally ingested chunks.
	Append(ctx context.Context, rows []ProjectionRow) error

	// Get returns the row with the given index, or
	// domain.ErrNotFound.
	Get(ctx context.Context, row int) (*ProjectionRow, error)

	// Count returns the number of projected rows.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
