// Package plaintext extracts text from plain text and markdown files.
package plaintext

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents. The bytes are taken as-is;
// markdown markup is left in place since it survives chunking harmlessly.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".md"}
}

// Normalise returns the file content as text.
func (n *Normaliser) Normalise(_ context.Context, _ string, content []byte) (string, string, error) {
	if !utf8.Valid(content) {
		return "", "", domain.ErrExtractionFailed
	}
	return string(content), "text", nil
}
