package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driving"
)

type countingIngestor struct {
	scans atomic.Int32
}

func (c *countingIngestor) Scan(context.Context) (*domain.IngestReport, error) {
	c.scans.Add(1)
	return &domain.IngestReport{}, nil
}

func (c *countingIngestor) Status() driving.IngestStatus {
	return driving.IngestStatus{}
}

func startWatcher(t *testing.T, root string, debounce time.Duration) (*Watcher, *countingIngestor) {
	t.Helper()

	ingestor := &countingIngestor{}
	w, err := New(root, debounce, ingestor)
	require.NoError(t, err)

	go func() { _ = w.Start(context.Background()) }()
	t.Cleanup(w.Stop)

	// Give the watch registration a moment before mutating the tree.
	time.Sleep(50 * time.Millisecond)
	return w, ingestor
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New("", time.Second, &countingIngestor{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestWatcher_RescansAfterWrite(t *testing.T) {
	root := t.TempDir()
	_, ingestor := startWatcher(t, root, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.txt"), []byte("hello"), 0644))

	require.Eventually(t, func() bool {
		return ingestor.scans.Load() >= 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	_, ingestor := startWatcher(t, root, 100*time.Millisecond)

	for n := 0; n < 5; n++ {
		name := filepath.Join(root, "doc"+string(rune('a'+n))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("hello"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return ingestor.scans.Load() >= 1
	}, 3*time.Second, 10*time.Millisecond)

	// The burst fits inside one debounce window.
	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, ingestor.scans.Load(), int32(2))
}

func TestWatcher_PicksUpNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	_, ingestor := startWatcher(t, root, 20*time.Millisecond)

	sub := filepath.Join(root, "phil")
	require.NoError(t, os.MkdirAll(sub, 0755))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "doc.txt"), []byte("hello"), 0644))

	require.Eventually(t, func() bool {
		return ingestor.scans.Load() >= 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, _ := startWatcher(t, t.TempDir(), time.Second)
	w.Stop()
	w.Stop()
}
