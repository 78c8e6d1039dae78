package driven

// IngestLedger tracks which source documents have already been
// ingested, keyed by content hash. Entries are append-only and
// persisted, making re-scans of an unchanged corpus a no-op.
//
// The engine marks a hash only after the corresponding chunks and
// vectors are durably written, so a crash in between leaves the
// document unmarked and safely re-ingested on restart.
type IngestLedger interface {
	// IsIngested reports whether the content hash has been marked.
	IsIngested(hash string) bool

	// MarkIngested appends the hash atomically. A failed append must
	// not corrupt prior entries. Callers must serialise writes
	// (single-writer discipline).
	MarkIngested(hash string) error

	// Len returns the number of marked hashes.
	Len() int

	// Reset discards all entries. Used when the index snapshot is
	// lost or corrupt and the corpus must be re-ingested from scratch.
	Reset() error
}
