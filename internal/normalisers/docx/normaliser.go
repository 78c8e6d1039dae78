// Package docx extracts text from Word documents.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Paragraph and tab markers in the raw document XML become line breaks
// before the remaining tags are stripped.
var (
	breakPattern = regexp.MustCompile(`</w:p>|<w:tab[^>]*/>|<w:br[^>]*/>`)
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".docx"}
}

// Normalise extracts the paragraph text from word/document.xml.
func (n *Normaliser) Normalise(_ context.Context, path string, content []byte) (string, string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, path, err)
	}
	defer doc.Close()

	raw := doc.Editable().GetContent()
	text := breakPattern.ReplaceAllString(raw, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")

	return text, "docx", nil
}
