package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cerebro/internal/adapters/driven/index/flat"
	ledgerfile "github.com/custodia-labs/cerebro/internal/adapters/driven/ledger/file"
	"github.com/custodia-labs/cerebro/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cerebro/internal/chunker"
	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
	"github.com/custodia-labs/cerebro/internal/normalisers"
	"github.com/custodia-labs/cerebro/internal/normalisers/plaintext"
	"github.com/custodia-labs/cerebro/internal/tagging"
)

// stubEmbedder maps text to a 3-dimensional vector by counting the
// marker words "alpha", "beta" and "gamma". Deterministic, so tests
// can reason about distances exactly.
type stubEmbedder struct {
	failEmbed bool
	pings     int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.failEmbed {
		return nil, fmt.Errorf("%w: stub failure", domain.ErrEmbeddingProvider)
	}
	var vec [3]float32
	for _, word := range strings.Fields(strings.ToLower(text)) {
		switch word {
		case "alpha":
			vec[0]++
		case "beta":
			vec[1]++
		case "gamma":
			vec[2]++
		}
	}
	return vec[:], nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int   { return 3 }
func (s *stubEmbedder) ModelName() string { return "stub-model" }
func (s *stubEmbedder) Close() error      { return nil }

func (s *stubEmbedder) Ping(context.Context) error {
	s.pings++
	return nil
}

// testEnv wires an engine over real adapters in a temp directory.
type testEnv struct {
	dir      string
	engine   *Engine
	embedder *stubEmbedder
	ledger   driven.IngestLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return openEnv(t, t.TempDir())
}

// openEnv builds a fresh engine over dir, reusing whatever state is
// already persisted there.
func openEnv(t *testing.T, dir string) *testEnv {
	t.Helper()

	projection, err := sqlite.NewProjectionStore(dir)
	require.NoError(t, err)

	ledger, err := ledgerfile.Open(filepath.Join(dir, "ledger.log"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	embedder := &stubEmbedder{}
	engine := NewEngine(
		func(dim int) (driven.VectorIndex, error) { return flat.New(dim) },
		flat.NewStore(filepath.Join(dir, "index.snap")),
		projection,
		ledger,
		embedder,
	)
	t.Cleanup(func() { engine.Close() })

	require.NoError(t, engine.Open(context.Background()))
	return &testEnv{dir: dir, engine: engine, embedder: embedder, ledger: ledger}
}

func (e *testEnv) orchestrator(t *testing.T, root string) *IngestOrchestrator {
	t.Helper()

	ch, err := chunker.New(chunker.WithSize(30), chunker.WithOverlap(5), chunker.WithMinWords(5))
	require.NoError(t, err)

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())

	return NewIngestOrchestrator(e.engine, registry, e.embedder, ch, tagging.New(nil), IngestConfig{Root: root})
}

// writeDoc creates <root>/<dir>/<name> with the given text.
func writeDoc(t *testing.T, root, dir, name, text string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, name), []byte(text), 0644))
}

// filler produces n neutral words that hit no marker and no tag rule.
func filler(n int) string {
	return strings.TrimSpace(strings.Repeat("pad ", n))
}

func mkChunk(dom, filename string, index int, text string) domain.ChunkRecord {
	return domain.ChunkRecord{
		ID:       fmt.Sprintf("%s_chunk%d", filename, index),
		Index:    index,
		Text:     text,
		Words:    len(strings.Fields(text)),
		Bytes:    len(text),
		Domain:   dom,
		Filename: filename,
		Language: "unknown",
	}
}
