package flat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

func TestNew_InvalidDimension(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	_, err = New(-3)
	require.Error(t, err)
}

func TestAdd_AppendsInCallOrder(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	require.NoError(t, idx.Add([][]float32{{0, 0}, {1, 1}}))
	require.NoError(t, idx.Add([][]float32{{2, 2}}))
	assert.Equal(t, 3, idx.Len())
}

func TestAdd_DimensionMismatch(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	err = idx.Add([][]float32{{1, 2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
	// Nothing is appended on a rejected batch.
	assert.Equal(t, 0, idx.Len())
}

func TestAdd_RejectsWholeBatchOnMismatch(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	err = idx.Add([][]float32{{1, 2}, {1, 2, 3}})
	require.Error(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestSearch_OrderedAscendingByDistance(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{
		{10, 10}, // row 0, far
		{1, 0},   // row 1, near
		{3, 3},   // row 2, middle
	}))

	hits, err := idx.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 1, hits[0].Row)
	assert.Equal(t, 2, hits[1].Row)
	assert.Equal(t, 0, hits[2].Row)
	assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
	assert.LessOrEqual(t, hits[1].Distance, hits[2].Distance)
}

func TestSearch_K1ReturnsGlobalMinimum(t *testing.T) {
	idx, err := New(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{5}, {2}, {9}, {2.5}, {-1}}))

	hits, err := idx.Search([]float32{2.1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Row)
}

func TestSearch_TiesBrokenByLowerRow(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	// Rows 0 and 2 are equidistant from the query.
	require.NoError(t, idx.Add([][]float32{
		{1, 0},
		{5, 5},
		{0, 1},
	}))

	hits, err := idx.Search([]float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Distance, hits[1].Distance)
	assert.Equal(t, 0, hits[0].Row)
	assert.Equal(t, 2, hits[1].Row)
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	idx, err := New(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{1}, {2}}))

	hits, err := idx.Search([]float32{0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx, err := New(4)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([][]float32{{1, 2}}))

	_, err = idx.Search([]float32{1, 2, 3}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestAdd_StoresCopies(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	vec := []float32{1, 1}
	require.NoError(t, idx.Add([][]float32{vec}))

	// Mutating the caller's slice must not disturb the index.
	vec[0] = 100
	hits, err := idx.Search([]float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0), hits[0].Distance)
}
