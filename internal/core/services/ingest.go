package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cerebro/internal/chunker"
	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
	"github.com/custodia-labs/cerebro/internal/core/ports/driving"
	"github.com/custodia-labs/cerebro/internal/logger"
	"github.com/custodia-labs/cerebro/internal/normalisers"
	"github.com/custodia-labs/cerebro/internal/tagging"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// MinDocumentWords is the extraction floor: documents with fewer words
// are skipped without being ledgered, so a later scan retries them.
const MinDocumentWords = 20

// IngestConfig configures a corpus scan.
type IngestConfig struct {
	// Root is the corpus root. Immediate subdirectories name domains;
	// files directly under Root fall back to domain.FallbackDomain.
	Root string

	// MinDocumentWords overrides the extraction floor when positive.
	MinDocumentWords int

	// Workers bounds the worker pool. Defaults to GOMAXPROCS.
	Workers int
}

// IngestOrchestrator runs corpus ingestion: scan, dedup, extract,
// chunk, tag, embed, append. Extraction, chunking and embedding run in
// a bounded worker pool; all index mutation is serialised through the
// merge loop so the engine sees a single writer.
type IngestOrchestrator struct {
	engine   *Engine
	registry driven.NormaliserRegistry
	embedder driven.EmbeddingService
	chunks   *chunker.Chunker
	tagger   *tagging.Tagger
	cfg      IngestConfig

	mu     sync.RWMutex
	status driving.IngestStatus
}

// NewIngestOrchestrator creates an orchestrator over the given engine
// and collaborators.
func NewIngestOrchestrator(
	engine *Engine,
	registry driven.NormaliserRegistry,
	embedder driven.EmbeddingService,
	chunks *chunker.Chunker,
	tagger *tagging.Tagger,
	cfg IngestConfig,
) *IngestOrchestrator {
	if cfg.MinDocumentWords <= 0 {
		cfg.MinDocumentWords = MinDocumentWords
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &IngestOrchestrator{
		engine:   engine,
		registry: registry,
		embedder: embedder,
		chunks:   chunks,
		tagger:   tagger,
		cfg:      cfg,
	}
}

// scanJob is one discovered file.
type scanJob struct {
	path   string
	domain string
}

// scanResult is a worker's outcome for one file.
type scanResult struct {
	job     scanJob
	skipped bool
	err     error

	hash    string
	chunks  []domain.ChunkRecord
	vectors [][]float32
}

// Scan ingests every new document under the corpus root. Per-document
// failures are logged and counted; only a failure to walk the corpus
// itself aborts the run.
func (o *IngestOrchestrator) Scan(ctx context.Context) (*domain.IngestReport, error) {
	runID := uuid.New().String()
	if !o.begin(runID) {
		return nil, fmt.Errorf("%w: a scan is already running", domain.ErrInvalidInput)
	}
	defer o.end()

	start := time.Now()
	report := &domain.IngestReport{RunID: runID}

	jobs, err := o.discover(report)
	if err != nil {
		return nil, err
	}
	logger.Info("Scan %s: %d files discovered under %s", runID, report.Scanned, o.cfg.Root)

	jobCh := make(chan scanJob)
	resultCh := make(chan scanResult)

	var wg sync.WaitGroup
	for n := 0; n < o.cfg.Workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resultCh <- o.process(ctx, job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Merge loop: the only writer into the engine.
	for res := range resultCh {
		o.merge(ctx, res, report)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	logger.Info("Scan %s complete: %d ingested, %d skipped, %d failed, %d chunks in %s",
		runID, report.Ingested, report.Skipped, report.Failed, report.ChunksAdded, report.Duration.Round(time.Millisecond))
	return report, nil
}

// Status returns the progress of the active run, or an idle status.
func (o *IngestOrchestrator) Status() driving.IngestStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// discover walks the corpus root and collects one job per regular
// file. The first path element below the root names the domain,
// uppercased; files directly under the root use the fallback domain.
func (o *IngestOrchestrator) discover(report *domain.IngestReport) ([]scanJob, error) {
	var jobs []scanJob

	err := filepath.WalkDir(o.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != o.cfg.Root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		report.Scanned++
		jobs = append(jobs, scanJob{path: path, domain: o.domainFor(path)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus root: %w", err)
	}
	return jobs, nil
}

// domainFor derives the domain label from the file's position under
// the corpus root.
func (o *IngestOrchestrator) domainFor(path string) string {
	rel, err := filepath.Rel(o.cfg.Root, path)
	if err != nil {
		return domain.FallbackDomain
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return domain.FallbackDomain
	}
	return strings.ToUpper(parts[0])
}

// process handles one file inside a worker: hash, dedup check,
// extract, clean, chunk, tag, embed.
func (o *IngestOrchestrator) process(ctx context.Context, job scanJob) scanResult {
	res := scanResult{job: job}

	content, err := os.ReadFile(job.path)
	if err != nil {
		res.err = fmt.Errorf("read: %w", err)
		return res
	}

	sum := sha256.Sum256(content)
	res.hash = hex.EncodeToString(sum[:])

	if o.engine.IsIngested(res.hash) {
		logger.Debug("Already ingested, skipping: %s", job.path)
		res.skipped = true
		return res
	}

	text, format, err := o.registry.Normalise(ctx, job.path, content)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			logger.Debug("Unsupported format, skipping: %s", job.path)
			res.skipped = true
			return res
		}
		res.err = err
		return res
	}

	text = normalisers.CleanText(text)
	words := strings.Fields(text)
	if len(words) < o.cfg.MinDocumentWords {
		// Below the extraction floor. Not ledgered: a future scan
		// retries in case the file grows or extraction improves.
		logger.Debug("Too short (%d words), skipping: %s", len(words), job.path)
		res.skipped = true
		return res
	}

	doc := domain.Document{
		Path:      job.path,
		Domain:    job.domain,
		Filename:  baseName(job.path),
		Language:  "unknown",
		Format:    format,
		Hash:      res.hash,
		Text:      text,
		WordCount: len(words),
		ParsedAt:  time.Now(),
	}

	pieces := o.chunks.Chunk(doc.Text)
	if len(pieces) == 0 {
		// Long enough to ingest but too short to chunk: the document
		// is recorded as processed with no rows.
		return res
	}

	res.chunks = make([]domain.ChunkRecord, 0, len(pieces))
	texts := make([]string, 0, len(pieces))
	for n, piece := range pieces {
		res.chunks = append(res.chunks, domain.ChunkRecord{
			ID:       fmt.Sprintf("%s_chunk%d", doc.Filename, n),
			Index:    n,
			Text:     piece,
			Words:    len(strings.Fields(piece)),
			Bytes:    len(piece),
			Domain:   doc.Domain,
			Filename: doc.Filename,
			Language: doc.Language,
			Tags:     o.tagger.Tags(piece),
		})
		texts = append(texts, piece)
	}

	res.vectors, err = o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		res.err = fmt.Errorf("embed: %w", err)
		res.chunks = nil
		return res
	}
	return res
}

// merge folds one worker result into the engine and the report.
func (o *IngestOrchestrator) merge(ctx context.Context, res scanResult, report *domain.IngestReport) {
	o.mu.Lock()
	o.status.DocumentsProcessed++
	o.mu.Unlock()

	switch {
	case res.err != nil:
		logger.Error("Ingest failed for %s: %v", res.job.path, res.err)
		report.Failed++
		o.countError()

	case res.skipped:
		report.Skipped++

	default:
		added, err := o.engine.Append(ctx, res.hash, res.chunks, res.vectors)
		if err != nil {
			logger.Error("Commit failed for %s: %v", res.job.path, err)
			report.Failed++
			o.countError()
			return
		}
		report.Ingested++
		report.ChunksAdded += added
		logger.Debug("Ingested %s: %d chunks", res.job.path, added)
	}
}

func (o *IngestOrchestrator) begin(runID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.Running {
		return false
	}
	o.status = driving.IngestStatus{RunID: runID, Running: true}
	return true
}

func (o *IngestOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Running = false
}

func (o *IngestOrchestrator) countError() {
	o.mu.Lock()
	o.status.ErrorCount++
	o.mu.Unlock()
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
