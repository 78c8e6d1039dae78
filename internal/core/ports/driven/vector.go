package driven

// VectorIndex is an append-only, exhaustively-searched sequence of
// fixed-dimension embeddings. Rows are numbered in insertion order and
// row i must always align with metadata entry i.
//
// The index is flat: every search scans all rows. Correctness over
// speed is the deliberate trade-off for the corpus sizes the engine
// targets.
type VectorIndex interface {
	// Add appends vectors in call order. Returns
	// domain.ErrDimensionMismatch if any vector has the wrong size.
	Add(vectors [][]float32) error

	// Search returns the k nearest rows to the query vector under
	// squared Euclidean distance, ascending, ties broken by lower
	// row index. Fewer than k results are returned when the index
	// holds fewer rows.
	Search(query []float32, k int) ([]SearchHit, error)

	// Len returns the number of rows.
	Len() int

	// Dimensions returns the configured vector size.
	Dimensions() int
}

// SearchHit is one nearest-neighbour result.
type SearchHit struct {
	// Row is the matched row index.
	Row int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}
