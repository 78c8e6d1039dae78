package domain

import "time"

// Document represents a source file discovered during a corpus scan.
// It is hashed once on discovery and never mutated; a changed file on
// disk produces a new Document with a new hash.
type Document struct {
	// Path is the absolute path of the source file.
	Path string

	// Domain is the coarse topical category, derived from the
	// immediate folder containing the file.
	Domain string

	// Filename is the normalised base name without extension.
	Filename string

	// Language is the detected language code, or "unknown".
	Language string

	// Format is the extraction format tag (e.g. "pdf", "text").
	Format string

	// Hash is the lowercase hex SHA-256 digest of the file bytes.
	Hash string

	// Text is the cleaned full text after extraction.
	Text string

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int

	// ParsedAt is when extraction completed.
	ParsedAt time.Time

	// Aux carries provider-specific extras that do not belong in the
	// fixed schema (e.g. OCR confidence, page count).
	Aux map[string]any
}

// ChunkRecord is the unit of embedding and retrieval: a bounded,
// overlapping word-window cut from one Document.
//
// Records are appended in insertion order. The embedding occupying
// vector index row i always belongs to metadata entry i; every store
// touching chunks must preserve that alignment.
type ChunkRecord struct {
	// ID identifies the chunk as "<filename>_chunk<index>".
	ID string

	// Index is the chunk's ordinal position within its document.
	Index int

	// Text is the word-bounded chunk content.
	Text string

	// Words is the chunk word count. Always >= the configured
	// minimum; shorter tail fragments are never emitted.
	Words int

	// Bytes is the chunk length in bytes.
	Bytes int

	// Domain is the owning document's domain.
	Domain string

	// Filename is the owning document's normalised base name.
	Filename string

	// Language is the owning document's language.
	Language string

	// Tags are keyword-derived topic labels, at most five.
	Tags []string
}

// IngestReport summarises one ingestion run over a corpus.
type IngestReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Scanned is the number of files discovered.
	Scanned int

	// Ingested is the number of documents newly indexed.
	Ingested int

	// Skipped is the number of files skipped (already ingested,
	// unsupported format, or below the word threshold).
	Skipped int

	// Failed is the number of documents that errored. Failures are
	// isolated per document and never abort the batch.
	Failed int

	// ChunksAdded is the number of new index rows.
	ChunksAdded int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}
