package domain

import "errors"

// Engine errors. Per-document ingestion errors are recoverable and
// isolated; configuration and query-time errors propagate.
var (
	// ErrExtractionFailed indicates a document could not be extracted.
	// Recoverable: the document is skipped and the batch continues.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrChunkingConfig indicates invalid chunker parameters
	// (overlap >= size). Fatal: fail fast at construction.
	ErrChunkingConfig = errors.New("invalid chunking configuration")

	// ErrEmbeddingProvider indicates the embedding provider failed.
	// Recoverable during ingestion, fatal at query time.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrCacheCorrupt indicates the persisted index snapshot could not
	// be loaded. Recoverable: triggers a full rebuild from source.
	ErrCacheCorrupt = errors.New("index snapshot corrupt")

	// ErrIndexMetadataMismatch indicates a search hit referenced a row
	// outside the metadata store. Recoverable: the hit is skipped.
	ErrIndexMetadataMismatch = errors.New("index row has no metadata entry")

	// ErrLedgerWrite indicates the ingest ledger could not be appended.
	// Fatal for the affected document only.
	ErrLedgerWrite = errors.New("ledger write failed")

	// ErrDimensionMismatch indicates a vector's dimension does not
	// match the index's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnsupportedFormat indicates no normaliser handles the file
	// extension. The file is skipped.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
