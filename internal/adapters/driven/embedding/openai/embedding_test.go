package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

type dataItem struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 3,
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
}

func TestNewEmbeddingService_UnknownModelNeedsDimensions(t *testing.T) {
	_, err := NewEmbeddingService(Config{APIKey: "k", Model: "mystery-model"})
	require.Error(t, err)

	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "mystery-model", Dimensions: 42})
	require.NoError(t, err)
	assert.Equal(t, 42, svc.Dimensions())
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Entries deliberately out of order; the index field is
		// authoritative.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []dataItem{
				{Embedding: []float32{0, 1, 0}, Index: 1},
				{Embedding: []float32{1, 0, 0}, Index: 0},
			},
		})
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1, 0}, vecs[1])
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid key", "type": "auth"},
		})
	})

	_, err := svc.Embed(context.Background(), "one")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingProvider))
	assert.Contains(t, err.Error(), "invalid key")
}

func TestEmbedBatch_DimensionMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []dataItem{{Embedding: []float32{1, 0}, Index: 0}},
		})
	})

	_, err := svc.Embed(context.Background(), "one")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
