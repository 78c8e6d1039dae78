package flat

import (
	"fmt"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// Store persists snapshots of a flat index at a fixed path.
type Store struct {
	path string
}

// NewStore creates a snapshot store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save persists the index and its records.
func (s *Store) Save(index driven.VectorIndex, records []domain.ChunkRecord) error {
	idx, ok := index.(*Index)
	if !ok {
		return fmt.Errorf("%w: cannot snapshot index of type %T", domain.ErrInvalidInput, index)
	}
	return Save(s.path, idx, records)
}

// Load restores the persisted snapshot.
func (s *Store) Load(expectDim int) (driven.VectorIndex, []domain.ChunkRecord, error) {
	return Load(s.path, expectDim)
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}
