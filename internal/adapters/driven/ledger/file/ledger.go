// Package file provides the append-only ingest ledger backed by a
// line-oriented log file, one content hash per line.
package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.IngestLedger = (*Ledger)(nil)

// Ledger is a file-backed set of ingested content hashes.
// Appends use O_APPEND with a single write syscall per entry, so a
// failed append cannot corrupt prior lines. The in-memory set mirrors
// the file and serves lookups without I/O.
type Ledger struct {
	mu     sync.RWMutex
	path   string
	hashes map[string]struct{}
	file   *os.File
}

// Open loads the ledger at path, creating it if absent.
// Blank lines are ignored; entries are normalised to lowercase.
func Open(path string) (*Ledger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	hashes := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hashes[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	return &Ledger{path: path, hashes: hashes, file: f}, nil
}

// IsIngested reports whether the content hash has been marked.
func (l *Ledger) IsIngested(hash string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.hashes[strings.ToLower(hash)]
	return ok
}

// MarkIngested appends the hash to the log and the in-memory set.
// Marking an already-present hash is a no-op.
func (l *Ledger) MarkIngested(hash string) error {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" {
		return fmt.Errorf("%w: empty hash", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.hashes[hash]; ok {
		return nil
	}

	// One write call for the whole line keeps the append atomic with
	// respect to other O_APPEND writers.
	if _, err := l.file.WriteString(hash + "\n"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
	}

	l.hashes[hash] = struct{}{}
	return nil
}

// Len returns the number of marked hashes.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.hashes)
}

// Reset truncates the log and clears the in-memory set. The ingested
// state and the index snapshot must move together; when the snapshot is
// rebuilt from scratch the ledger starts over too.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("%w: truncate: %v", domain.ErrLedgerWrite, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
	}

	l.hashes = make(map[string]struct{})
	return nil
}

// Close releases the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
