package normalisers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

type stubNormaliser struct {
	exts   []string
	text   string
	format string
}

func (s *stubNormaliser) Extensions() []string { return s.exts }

func (s *stubNormaliser) Normalise(_ context.Context, _ string, _ []byte) (string, string, error) {
	return s.text, s.format, nil
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{".txt"}, text: "plain", format: "text"})
	r.Register(&stubNormaliser{exts: []string{".pdf"}, text: "pages", format: "pdf"})

	text, format, err := r.Normalise(context.Background(), "/corpus/PHIL/ethics.PDF", nil)
	require.NoError(t, err)
	assert.Equal(t, "pages", text)
	assert.Equal(t, "pdf", format)
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{".txt"}})

	_, _, err := r.Normalise(context.Background(), "notes.xyz", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{".txt"}, text: "first"})
	r.Register(&stubNormaliser{exts: []string{".txt"}, text: "second"})

	text, _, err := r.Normalise(context.Background(), "a.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestRegistry_SupportedExtensionsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{".txt", ".md"}})
	r.Register(&stubNormaliser{exts: []string{".pdf"}})

	assert.Equal(t, []string{".md", ".pdf", ".txt"}, r.SupportedExtensions())
}

func TestCleanText_JoinsTrimmedLines(t *testing.T) {
	in := "  first line \n\n\tsecond line\n   \nthird"
	assert.Equal(t, "first line second line third", CleanText(in))
}

func TestCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("\n \n\t\n"))
}
