package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches to the normaliser registered for a file's extension.
type Registry struct {
	byExtension map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]driven.Normaliser),
	}
}

// Register adds a normaliser for every extension it declares.
// Later registrations win on extension conflicts.
func (r *Registry) Register(normaliser driven.Normaliser) {
	for _, ext := range normaliser.Extensions() {
		r.byExtension[strings.ToLower(ext)] = normaliser
	}
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise extracts text using the normaliser matching the file's
// extension.
func (r *Registry) Normalise(ctx context.Context, path string, content []byte) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	normaliser, ok := r.byExtension[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	return normaliser.Normalise(ctx, path, content)
}

// CleanText collapses extracted text into a single line of space-separated
// words. Lines are trimmed and empty lines dropped, so page breaks and
// paragraph markers from format-specific extractors do not leak into the
// chunker.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}
