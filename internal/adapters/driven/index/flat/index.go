// Package flat provides an exhaustive in-memory vector index under
// squared Euclidean distance, plus its persisted snapshot format.
package flat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat, append-only vector index. Every search scans all
// rows; there is no approximation. Row numbering follows insertion
// order and is the alignment key into the metadata store.
type Index struct {
	mu   sync.RWMutex
	dim  int
	vecs [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d must be positive", domain.ErrInvalidInput, dim)
	}
	return &Index{dim: dim}, nil
}

// Add appends vectors in call order.
func (i *Index) Add(vectors [][]float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, v := range vectors {
		if len(v) != i.dim {
			return fmt.Errorf("%w: got %d, index expects %d", domain.ErrDimensionMismatch, len(v), i.dim)
		}
	}
	for _, v := range vectors {
		// Copy so callers cannot mutate stored rows.
		row := make([]float32, i.dim)
		copy(row, v)
		i.vecs = append(i.vecs, row)
	}
	return nil
}

// Search returns the k nearest rows by squared Euclidean distance,
// ascending, ties broken by lower row index.
func (i *Index) Search(query []float32, k int) ([]driven.SearchHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(query) != i.dim {
		return nil, fmt.Errorf("%w: query has %d, index expects %d", domain.ErrDimensionMismatch, len(query), i.dim)
	}
	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil
	}

	hits := make([]driven.SearchHit, len(i.vecs))
	for row, vec := range i.vecs {
		hits[row] = driven.SearchHit{Row: row, Distance: squaredL2(query, vec)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Row < hits[b].Row
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of rows.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vecs)
}

// Dimensions returns the configured vector size.
func (i *Index) Dimensions() int { return i.dim }

// rows returns the stored vectors for snapshotting. The caller must
// not mutate the result.
func (i *Index) rows() [][]float32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.vecs
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for n := range a {
		d := a[n] - b[n]
		sum += d * d
	}
	return sum
}
