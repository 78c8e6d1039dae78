package driven

import "context"

// Normaliser extracts plain text from one document format.
// Extraction is an external collaborator of the engine: it may fail per
// file, and the engine treats failure, empty text, or too-short text as
// "skip, log, continue".
type Normaliser interface {
	// Extensions returns the lowercase file extensions this
	// normaliser handles, including the dot (e.g. ".pdf").
	Extensions() []string

	// Normalise extracts text from the raw file bytes.
	// It returns the extracted text and a format tag (e.g. "pdf").
	Normalise(ctx context.Context, path string, content []byte) (text string, format string, err error)
}

// NormaliserRegistry dispatches to the normaliser registered for a
// file's extension.
type NormaliserRegistry interface {
	// Normalise extracts text using the normaliser matching the
	// file's extension. Returns domain.ErrUnsupportedFormat when no
	// normaliser is registered for it.
	Normalise(ctx context.Context, path string, content []byte) (text string, format string, err error)

	// Register adds a normaliser for its declared extensions.
	// Later registrations win on extension conflicts.
	Register(normaliser Normaliser)

	// SupportedExtensions returns all registered extensions.
	SupportedExtensions() []string
}
