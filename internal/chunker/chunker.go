// Package chunker splits document text into overlapping word windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping words
// between consecutive chunks.
const DefaultChunkOverlap = 100

// DefaultMinChunkWords is the floor below which a chunk is discarded.
// This drops degenerate tail fragments.
const DefaultMinChunkWords = 50

// Chunker emits word-bounded, overlapping slices of a text.
// A new chunk starts every size-overlap words and spans size words;
// the last chunk may be shorter. Identical input and parameters always
// produce an identical chunk sequence.
type Chunker struct {
	size     int
	overlap  int
	minWords int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the chunk size in words.
func WithSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithMinWords sets the minimum word count for an emitted chunk.
func WithMinWords(minWords int) Option {
	return func(c *Chunker) {
		c.minWords = minWords
	}
}

// New creates a chunker with the given options.
// overlap >= size would make the stride zero or negative, so it is a
// configuration error and fails fast.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:     DefaultChunkSize,
		overlap:  DefaultChunkOverlap,
		minWords: DefaultMinChunkWords,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrChunkingConfig, c.size)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", domain.ErrChunkingConfig, c.overlap)
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap %d >= size %d", domain.ErrChunkingConfig, c.overlap, c.size)
	}
	if c.minWords <= 0 {
		return nil, fmt.Errorf("%w: min words %d must be positive", domain.ErrChunkingConfig, c.minWords)
	}

	return c, nil
}

// Size returns the configured chunk size in words.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text on whitespace and emits chunks of up to size
// words, starting every size-overlap words. Chunks shorter than the
// minimum floor are dropped.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) < c.minWords {
		return nil
	}

	stride := c.size - c.overlap
	estimated := len(words)/stride + 1
	chunks := make([]string, 0, estimated)

	for start := 0; start < len(words); start += stride {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		if end-start < c.minWords {
			break
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
