package driving

import (
	"context"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

// Ingestor runs corpus ingestion: scan, dedup, extract, chunk, embed,
// append. Per-document failures are isolated; only configuration
// errors abort a run.
type Ingestor interface {
	// Scan ingests every new document under the corpus root.
	// Folder layout is <root>/<domain>/<file>.
	Scan(ctx context.Context) (*domain.IngestReport, error)

	// Status returns the progress of the active run, or an idle
	// status when no run is active.
	Status() IngestStatus
}

// IngestStatus describes an ingestion run in progress.
type IngestStatus struct {
	// RunID identifies the run, empty when idle.
	RunID string

	// Running reports whether a run is active.
	Running bool

	// DocumentsProcessed is the number of documents handled so far.
	DocumentsProcessed int

	// ErrorCount is the number of isolated per-document failures.
	ErrorCount int
}
