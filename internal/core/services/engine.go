package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
	"github.com/custodia-labs/cerebro/internal/logger"
)

// IndexFactory creates an empty vector index of the given dimension.
type IndexFactory func(dim int) (driven.VectorIndex, error)

// Engine owns the active index snapshot and every store that must move
// in lockstep with it: the vector index, the row-aligned chunk
// metadata, the router projection and the ingest ledger.
//
// Reads (Search, Record, Stats) take a shared lock; all mutation goes
// through Append under the exclusive lock, so queries always see a
// consistent snapshot.
type Engine struct {
	newIndex   IndexFactory
	snapshots  driven.SnapshotStore
	projection driven.ProjectionStore
	ledger     driven.IngestLedger
	embedder   driven.EmbeddingService

	mu      sync.RWMutex
	index   driven.VectorIndex
	records []domain.ChunkRecord
	seen    map[string]struct{}
}

// NewEngine creates an engine over the given stores. Call Open before
// first use.
func NewEngine(
	newIndex IndexFactory,
	snapshots driven.SnapshotStore,
	projection driven.ProjectionStore,
	ledger driven.IngestLedger,
	embedder driven.EmbeddingService,
) *Engine {
	return &Engine{
		newIndex:   newIndex,
		snapshots:  snapshots,
		projection: projection,
		ledger:     ledger,
		embedder:   embedder,
		seen:       make(map[string]struct{}),
	}
}

// Open loads the persisted snapshot, or starts empty when none exists.
// A corrupt snapshot is logged and discarded; the ledger is reset so
// the next scan rebuilds the index from source instead of trusting a
// cache that no longer exists.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dim := e.embedder.Dimensions()

	idx, records, err := e.snapshots.Load(dim)
	switch {
	case err == nil:
		logger.Info("Loaded index snapshot: %d rows", idx.Len())

	case errors.Is(err, os.ErrNotExist), errors.Is(err, domain.ErrCacheCorrupt):
		if errors.Is(err, domain.ErrCacheCorrupt) {
			logger.Warn("Index snapshot unusable, rebuilding from source: %v", err)
		}
		idx, err = e.newIndex(dim)
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		records = nil
		// Ledger entries without backing vectors would make future
		// scans skip documents the index no longer holds.
		if e.ledger.Len() > 0 {
			if err := e.ledger.Reset(); err != nil {
				return fmt.Errorf("reset ledger: %w", err)
			}
		}

	default:
		return fmt.Errorf("load snapshot: %w", err)
	}

	e.index = idx
	e.records = records
	e.seen = make(map[string]struct{}, len(records))
	for _, rec := range records {
		e.seen[chunkKey(rec)] = struct{}{}
	}

	if err := e.syncProjection(ctx, nil); err != nil {
		return fmt.Errorf("reconcile projection: %w", err)
	}

	// Warm-up so the first query does not pay the provider's cold
	// start. Failure is a performance hint, not an error.
	if err := e.embedder.Ping(ctx); err != nil {
		logger.Warn("Embedding provider warm-up failed: %v", err)
	}
	return nil
}

// IsIngested reports whether a document hash is already in the ledger.
func (e *Engine) IsIngested(hash string) bool {
	return e.ledger.IsIngested(hash)
}

// Append commits one ingested document: its chunk vectors and metadata
// go into the index, the snapshot is persisted, the projection is
// brought up to date, and only then is the document hash ledgered.
//
// Chunks whose content is already indexed are filtered out, so a crash
// after the snapshot write but before the ledger mark cannot produce
// duplicate rows when the document is re-ingested. Callers must
// serialise Append calls (single-writer discipline).
//
// Returns the number of rows actually added.
func (e *Engine) Append(ctx context.Context, docHash string, chunks []domain.ChunkRecord, vectors [][]float32) (int, error) {
	if len(chunks) != len(vectors) {
		return 0, fmt.Errorf("%w: %d chunks, %d vectors", domain.ErrIndexMetadataMismatch, len(chunks), len(vectors))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var keptChunks []domain.ChunkRecord
	var keptVecs [][]float32
	for n, chunk := range chunks {
		key := chunkKey(chunk)
		if _, dup := e.seen[key]; dup {
			continue
		}
		keptChunks = append(keptChunks, chunk)
		keptVecs = append(keptVecs, vectors[n])
	}

	if len(keptChunks) > 0 {
		if err := e.index.Add(keptVecs); err != nil {
			return 0, fmt.Errorf("index vectors: %w", err)
		}
		e.records = append(e.records, keptChunks...)
		for _, chunk := range keptChunks {
			e.seen[chunkKey(chunk)] = struct{}{}
		}
	}

	// Persist before ledgering. If anything below fails the document
	// stays unledgered; the next scan re-submits it, the duplicate
	// filter drops the rows already held in memory, and the persist
	// is retried from a consistent state.
	if err := e.snapshots.Save(e.index, e.records); err != nil {
		return 0, fmt.Errorf("persist snapshot: %w", err)
	}

	newRows := projectionRows(e.records[len(e.records)-len(keptChunks):], e.index.Len()-len(keptChunks))
	if err := e.syncProjection(ctx, newRows); err != nil {
		return 0, fmt.Errorf("update projection: %w", err)
	}

	if err := e.ledger.MarkIngested(docHash); err != nil {
		return 0, err
	}
	return len(keptChunks), nil
}

// Search returns the k nearest chunks to the query vector, joined with
// their metadata, ascending by distance. A hit whose row has no
// metadata entry is skipped and logged; it indicates snapshot drift
// and never aborts the query.
func (e *Engine) Search(query []float32, k int) ([]domain.Hit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	raw, err := e.index.Search(query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.Hit, 0, len(raw))
	for _, h := range raw {
		if h.Row < 0 || h.Row >= len(e.records) {
			logger.Warn("Skipping hit: %v: row %d", domain.ErrIndexMetadataMismatch, h.Row)
			continue
		}
		hits = append(hits, domain.Hit{
			Row:      h.Row,
			Distance: h.Distance,
			Chunk:    e.records[h.Row],
		})
	}
	return hits, nil
}

// Record returns the metadata entry aligned with the given row.
func (e *Engine) Record(row int) (domain.ChunkRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if row < 0 || row >= len(e.records) {
		return domain.ChunkRecord{}, fmt.Errorf("%w: row %d of %d", domain.ErrIndexMetadataMismatch, row, len(e.records))
	}
	return e.records[row], nil
}

// Stats describes the engine's current state.
type Stats struct {
	Rows      int
	Documents int
	Dimension int
	Model     string
}

// Stats returns current index and ledger counts.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		Rows:      e.index.Len(),
		Documents: e.ledger.Len(),
		Dimension: e.index.Dimensions(),
		Model:     e.embedder.ModelName(),
	}
}

// Close releases the engine's stores.
func (e *Engine) Close() error {
	var errs []error
	if err := e.projection.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// syncProjection keeps the router projection row-aligned with the
// records. The fast path appends only the new rows; any count drift
// (e.g. a projection write lost to a crash) triggers a full rebuild
// of the table.
func (e *Engine) syncProjection(ctx context.Context, newRows []driven.ProjectionRow) error {
	count, err := e.projection.Count(ctx)
	if err != nil {
		return err
	}
	if count == len(e.records)-len(newRows) {
		return e.projection.Append(ctx, newRows)
	}
	return e.projection.Replace(ctx, projectionRows(e.records, 0))
}

// projectionRows converts records to projection rows starting at the
// given row offset.
func projectionRows(records []domain.ChunkRecord, offset int) []driven.ProjectionRow {
	rows := make([]driven.ProjectionRow, 0, len(records))
	for n, rec := range records {
		rows = append(rows, driven.ProjectionRow{
			Row:      offset + n,
			Domain:   rec.Domain,
			Filename: rec.Filename,
			Text:     rec.Text,
		})
	}
	return rows
}

// chunkKey derives a stable content identity for duplicate filtering.
func chunkKey(rec domain.ChunkRecord) string {
	h := sha256.New()
	h.Write([]byte(rec.Domain))
	h.Write([]byte{0})
	h.Write([]byte(rec.Filename))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(rec.Index)))
	h.Write([]byte{0})
	h.Write([]byte(rec.Text))
	return hex.EncodeToString(h.Sum(nil))
}
