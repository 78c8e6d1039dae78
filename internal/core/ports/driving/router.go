package driving

import (
	"context"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

// Router answers semantic queries against the active index snapshot.
type Router interface {
	// Route embeds the query, searches the vector index and
	// aggregates the top-k hits into a RoutedResult.
	//
	// Embedding and search failures propagate as a typed routing
	// failure; the engine never fabricates an empty result. topK <= 0
	// selects the configured default.
	Route(ctx context.Context, query string, topK int) (*domain.RoutedResult, error)
}
