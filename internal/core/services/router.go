package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
	"github.com/custodia-labs/cerebro/internal/core/ports/driving"
	"github.com/custodia-labs/cerebro/internal/logger"
)

// Ensure RouterService implements the interface.
var _ driving.Router = (*RouterService)(nil)

// ContextSeparator joins hit chunks in the assembled context.
const ContextSeparator = "\n\n---\n\n"

// RouterConfig bounds the routed result.
type RouterConfig struct {
	// TopK is the default number of neighbours when the caller does
	// not choose one.
	TopK int

	// MaxContextChars caps the assembled context length.
	MaxContextChars int

	// MaxChunkChars caps each chunk's contribution to the context.
	MaxChunkChars int
}

// RouterService answers semantic queries against the engine's active
// snapshot and aggregates the hits into a routing decision.
type RouterService struct {
	engine   *Engine
	embedder driven.EmbeddingService
	cfg      RouterConfig
}

// NewRouterService creates a router over the engine.
func NewRouterService(engine *Engine, embedder driven.EmbeddingService, cfg RouterConfig) *RouterService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 16000
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 2000
	}
	return &RouterService{engine: engine, embedder: embedder, cfg: cfg}
}

// Route embeds the query, searches the index and aggregates the top-k
// hits. Embedding and search failures propagate; an empty result is
// only ever returned for an empty index.
func (r *RouterService) Route(ctx context.Context, query string, topK int) (*domain.RoutedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	logger.Debug("Routing query (top %d): %q", topK, query)

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.engine.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	result := &domain.RoutedResult{
		Query:   query,
		Context: r.assembleContext(hits),
		Domains: tally(hits, func(h domain.Hit) []string {
			if h.Chunk.Domain == "" {
				return nil
			}
			return []string{h.Chunk.Domain}
		}),
		Tags:    tally(hits, func(h domain.Hit) []string { return h.Chunk.Tags }),
		Sources: sources(hits),
		Hits:    hits,
	}

	if len(result.Domains) > 0 {
		result.Domain = result.Domains[0].Label
		result.Score = result.Domains[0].Count
	} else {
		result.Domain = domain.FallbackDomain
	}

	logger.Debug("Routed to %s (score %d) across %d hits", result.Domain, result.Score, len(hits))
	return result, nil
}

// assembleContext joins hit texts in ascending-distance order, bounded
// per chunk and in total.
func (r *RouterService) assembleContext(hits []domain.Hit) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, truncate(hit.Chunk.Text, r.cfg.MaxChunkChars))
	}
	return truncate(strings.Join(parts, ContextSeparator), r.cfg.MaxContextChars)
}

// truncate bounds s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// tally counts labels across hits and ranks them descending by count.
// Ties keep the order in which a label was first seen, which for hits
// sorted by distance means the closer label wins.
func tally(hits []domain.Hit, labels func(domain.Hit) []string) []domain.ScoreEntry {
	counts := make(map[string]int)
	var order []string
	for _, hit := range hits {
		for _, label := range labels(hit) {
			if _, ok := counts[label]; !ok {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	entries := make([]domain.ScoreEntry, 0, len(order))
	for _, label := range order {
		entries = append(entries, domain.ScoreEntry{Label: label, Count: counts[label]})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Count > entries[b].Count
	})
	return entries
}

// sources lists contributing files as "<filename> [<domain>]" in
// ascending-distance order, deduplicated.
func sources(hits []domain.Hit) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, hit := range hits {
		src := fmt.Sprintf("%s [%s]", hit.Chunk.Filename, hit.Chunk.Domain)
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
