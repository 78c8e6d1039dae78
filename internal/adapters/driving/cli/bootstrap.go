package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	configfile "github.com/custodia-labs/cerebro/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cerebro/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/cerebro/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/cerebro/internal/adapters/driven/index/flat"
	ledgerfile "github.com/custodia-labs/cerebro/internal/adapters/driven/ledger/file"
	"github.com/custodia-labs/cerebro/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cerebro/internal/chunker"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
	"github.com/custodia-labs/cerebro/internal/core/services"
	"github.com/custodia-labs/cerebro/internal/normalisers"
	"github.com/custodia-labs/cerebro/internal/normalisers/docx"
	"github.com/custodia-labs/cerebro/internal/normalisers/pdf"
	"github.com/custodia-labs/cerebro/internal/normalisers/plaintext"
	"github.com/custodia-labs/cerebro/internal/tagging"
)

// app holds the wired engine and services for one command invocation.
type app struct {
	cfg      configfile.Config
	engine   *services.Engine
	ingestor *services.IngestOrchestrator
	router   *services.RouterService
	ledger   *ledgerfile.Ledger
}

// loadConfig resolves the config path (flag or default location).
func loadConfig() (configfile.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return configfile.Config{}, err
		}
	}
	return configfile.Load(path)
}

// newApp wires adapters and services from configuration and opens the
// engine. The caller must Close it.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Corpus.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	projection, err := sqlite.NewProjectionStore(cfg.Corpus.DataDir)
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("open projection store: %w", err)
	}

	ledger, err := ledgerfile.Open(filepath.Join(cfg.Corpus.DataDir, "ledger.log"))
	if err != nil {
		embedder.Close()
		projection.Close()
		return nil, err
	}

	engine := services.NewEngine(
		func(dim int) (driven.VectorIndex, error) { return flat.New(dim) },
		flat.NewStore(filepath.Join(cfg.Corpus.DataDir, "index.snap")),
		projection,
		ledger,
		embedder,
	)
	if err := engine.Open(ctx); err != nil {
		engine.Close()
		ledger.Close()
		return nil, err
	}

	chunks, err := chunker.New(
		chunker.WithSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
		chunker.WithMinWords(cfg.Chunking.MinWords),
	)
	if err != nil {
		engine.Close()
		ledger.Close()
		return nil, err
	}

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())

	ingestor := services.NewIngestOrchestrator(engine, registry, embedder, chunks, tagging.New(tagRules(cfg.Tagging)),
		services.IngestConfig{Root: cfg.Corpus.Root})

	router := services.NewRouterService(engine, embedder, services.RouterConfig{
		TopK:            cfg.Routing.TopK,
		MaxContextChars: cfg.Routing.MaxContextChars,
		MaxChunkChars:   cfg.Routing.MaxChunkChars,
	})

	return &app{cfg: cfg, engine: engine, ingestor: ingestor, router: router, ledger: ledger}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	a.engine.Close()
	a.ledger.Close()
}

// tagRules converts configured tag rules; an empty config keeps the
// tagger's built-in rules.
func tagRules(cfg configfile.TaggingConfig) []tagging.Rule {
	rules := make([]tagging.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, tagging.Rule{Tag: r.Tag, Keywords: r.Keywords})
	}
	return rules
}

// buildEmbedder constructs the configured embedding provider.
func buildEmbedder(cfg configfile.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            cfg.APIKey(),
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout(),
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	case "ollama", "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout(),
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
