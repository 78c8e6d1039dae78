package driven

import "github.com/custodia-labs/cerebro/internal/core/domain"

// SnapshotStore persists the vector index together with its row-aligned
// metadata as a single atomic unit. Keeping both halves in one snapshot
// means a partial write can never leave the index and metadata pointing
// at different states.
type SnapshotStore interface {
	// Save atomically persists the index and its records. The previous
	// snapshot survives a failed save.
	Save(index VectorIndex, records []domain.ChunkRecord) error

	// Load restores the persisted snapshot. A missing snapshot returns
	// an error satisfying errors.Is(err, os.ErrNotExist); any corrupt
	// or mismatched snapshot wraps domain.ErrCacheCorrupt.
	Load(expectDim int) (VectorIndex, []domain.ChunkRecord, error)
}
