package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 0, l.Len())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMarkIngested_ThenIsIngested(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "ledger.log"))
	require.NoError(t, err)
	defer l.Close()

	assert.False(t, l.IsIngested("abc123"))
	require.NoError(t, l.MarkIngested("abc123"))
	assert.True(t, l.IsIngested("abc123"))
	assert.Equal(t, 1, l.Len())
}

func TestMarkIngested_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.MarkIngested("abc123"))
	require.NoError(t, l.MarkIngested("abc123"))
	assert.Equal(t, 1, l.Len())

	// The file holds exactly one line.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", string(data))
}

func TestMarkIngested_EmptyHash(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "ledger.log"))
	require.NoError(t, err)
	defer l.Close()

	require.Error(t, l.MarkIngested(""))
	require.Error(t, l.MarkIngested("   "))
}

func TestOpen_LoadsExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")
	require.NoError(t, os.WriteFile(path, []byte("aaa\n\nBBB\nccc\n"), 0600))

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 3, l.Len())
	assert.True(t, l.IsIngested("aaa"))
	assert.True(t, l.IsIngested("bbb")) // normalised to lowercase
	assert.True(t, l.IsIngested("BBB"))
	assert.True(t, l.IsIngested("ccc"))
	assert.False(t, l.IsIngested("ddd"))
}

func TestLedger_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.MarkIngested("deadbeef"))
	require.NoError(t, l.MarkIngested("cafebabe"))
	require.NoError(t, l.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Len())
	assert.True(t, reopened.IsIngested("deadbeef"))
	assert.True(t, reopened.IsIngested("cafebabe"))
}

func TestMarkIngested_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = l.MarkIngested(fmt.Sprintf("hash%02d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, l.Len())

	// Every line in the file is intact.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, l.IsIngested(line))
	}
}

func TestReset_ClearsEntriesAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.MarkIngested("aaa"))
	require.NoError(t, l.MarkIngested("bbb"))
	require.NoError(t, l.Reset())

	assert.Equal(t, 0, l.Len())
	assert.False(t, l.IsIngested("aaa"))

	// New marks land at the start of the truncated file.
	require.NoError(t, l.MarkIngested("ccc"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ccc\n", string(data))
}
