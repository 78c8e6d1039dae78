package flat

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/cerebro/internal/core/domain"
)

// snapshotMagic identifies the snapshot format and its version.
// Bump the trailing digit on any layout change.
const snapshotMagic = "CRBSNAP1"

// Snapshot layout:
//
//	magic[8] | dim uint32 | rows uint32
//	| rows*dim little-endian float32
//	| metaLen uint32 | metaLen bytes of JSON []domain.ChunkRecord
//
// Vectors and metadata live in one file so a partially written cache
// can never pass validation with mismatched halves.

// Save persists the index and its row-aligned metadata to path.
// The write goes to a temp file in the same directory and is renamed
// into place, so a crash mid-write leaves the previous snapshot intact.
func Save(path string, idx *Index, records []domain.ChunkRecord) error {
	vecs := idx.rows()
	if len(vecs) != len(records) {
		return fmt.Errorf("%w: %d vectors, %d metadata entries", domain.ErrIndexMetadataMismatch, len(vecs), len(records))
	}

	meta, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snap-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(snapshotMagic); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}

	var u32 [4]byte
	writeU32 := func(v uint32) error {
		binary.LittleEndian.PutUint32(u32[:], v)
		_, err := w.Write(u32[:])
		return err
	}

	if err := writeU32(uint32(idx.Dimensions())); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}
	if err := writeU32(uint32(len(vecs))); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}

	for _, vec := range vecs {
		for _, f := range vec {
			if err := writeU32(math.Float32bits(f)); err != nil {
				tmp.Close()
				return fmt.Errorf("write snapshot vectors: %w", err)
			}
		}
	}

	if err := writeU32(uint32(len(meta))); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot metadata: %w", err)
	}
	if _, err := w.Write(meta); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot metadata: %w", err)
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot and reconstructs the index and its metadata.
// expectDim is the embedding provider's declared dimension; a snapshot
// built for a different dimension is rejected. Any validation failure
// wraps domain.ErrCacheCorrupt so callers fall back to a full rebuild
// rather than partially applying the cache.
func Load(path string, expectDim int) (*Index, []domain.ChunkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, fmt.Errorf("%w: truncated header: %v", domain.ErrCacheCorrupt, err)
	}
	if string(magic) != snapshotMagic {
		return nil, nil, fmt.Errorf("%w: bad magic %q", domain.ErrCacheCorrupt, magic)
	}

	var u32 [4]byte
	readU32 := func() (uint32, error) {
		if _, err := io.ReadFull(r, u32[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint32(u32[:]), nil
	}

	dim, err := readU32()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: truncated header: %v", domain.ErrCacheCorrupt, err)
	}
	if int(dim) != expectDim {
		return nil, nil, fmt.Errorf("%w: snapshot dimension %d, provider declares %d", domain.ErrCacheCorrupt, dim, expectDim)
	}

	rows, err := readU32()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: truncated header: %v", domain.ErrCacheCorrupt, err)
	}

	idx, err := New(int(dim))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrCacheCorrupt, err)
	}

	vecs := make([][]float32, 0, rows)
	for n := uint32(0); n < rows; n++ {
		vec := make([]float32, dim)
		for d := range vec {
			bits, err := readU32()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: truncated vectors: %v", domain.ErrCacheCorrupt, err)
			}
			vec[d] = math.Float32frombits(bits)
		}
		vecs = append(vecs, vec)
	}
	if err := idx.Add(vecs); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrCacheCorrupt, err)
	}

	metaLen, err := readU32()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: truncated metadata length: %v", domain.ErrCacheCorrupt, err)
	}
	meta := make([]byte, metaLen)
	if _, err := io.ReadFull(r, meta); err != nil {
		return nil, nil, fmt.Errorf("%w: truncated metadata: %v", domain.ErrCacheCorrupt, err)
	}

	var records []domain.ChunkRecord
	if err := json.Unmarshal(meta, &records); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid metadata: %v", domain.ErrCacheCorrupt, err)
	}
	if len(records) != int(rows) {
		return nil, nil, fmt.Errorf("%w: %d vectors, %d metadata entries", domain.ErrCacheCorrupt, rows, len(records))
	}

	return idx, records, nil
}
