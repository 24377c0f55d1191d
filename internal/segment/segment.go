package segment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"citrine/internal/common"
)

// Segment File Layout:
//
//                 ┌────────────────┐
//                 │      Row 0     │  {keyLen u16, key, bodySize u64, body}
//                 ├────────────────┤
//                 │       ...      │
//                 ├────────────────┤
//                 │     Row N-1    │
//  indexOffset -> ├────────────────┤
//                 │    Row Index   │  {keyLen u16, key, offset u64, size u64} per row
//                 ├────────────────┤
//                 │     Footer     │  {indexOffset, rowCount}
//                 └────────────────┘
//
// Rows are sorted ascending by key (raw byte order; column comparators are
// a per-row concern and play no part in row placement). Segment files are
// immutable once written.

var (
	// ErrRowNotFound reports that a segment holds no row for the key.
	ErrRowNotFound = errors.New("segment: row not found")

	// ErrKeyMismatch reports that the key framed on disk disagrees with
	// the row index. The segment is corrupt.
	ErrKeyMismatch = errors.New("segment: on-disk key mismatch")
)

// rowIndexEntry pins one row's position inside the segment file.
type rowIndexEntry struct {
	key    []byte
	offset uint64 // file offset of the row's key framing
	size   uint64 // body size in bytes
}

// Options configures an open segment.
type Options struct {
	// RowCacheSize bounds the key-to-position cache. Zero or negative
	// disables caching.
	RowCacheSize int
}

// DefaultOptions are the options used when Open receives none.
var DefaultOptions = Options{
	RowCacheSize: 128,
}

type Option func(*Options)

func WithRowCacheSize(n int) Option {
	return func(o *Options) {
		o.RowCacheSize = n
	}
}

// Table provides keyed access to the rows of an open segment file.
type Table struct {
	path  string
	file  *os.File
	index []rowIndexEntry
	cache *lru.Cache[string, rowIndexEntry]
}

// Open reads a segment file's footer and row index into memory.
func Open(path string, opts ...Option) (*Table, error) {
	o := DefaultOptions
	for _, fn := range opts {
		fn(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	index, err := loadRowIndex(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to load row index from %s: %w", path, err)
	}

	var cache *lru.Cache[string, rowIndexEntry]
	if o.RowCacheSize > 0 {
		cache, err = lru.New[string, rowIndexEntry](o.RowCacheSize)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	return &Table{path: path, file: f, index: index, cache: cache}, nil
}

// loadRowIndex reads and parses the footer and row index from an open
// segment file.
func loadRowIndex(f *os.File) ([]rowIndexEntry, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := stat.Size()

	if fileSize < footerSize {
		return nil, io.ErrUnexpectedEOF
	}

	footerOffset := fileSize - footerSize
	footerData := make([]byte, footerSize)
	if _, err := f.ReadAt(footerData, footerOffset); err != nil {
		return nil, err
	}

	ftr, err := decodeFooter(bytes.NewReader(footerData))
	if err != nil {
		return nil, err
	}

	indexSize := footerOffset - int64(ftr.indexOffset)
	if indexSize < 0 {
		return nil, io.ErrUnexpectedEOF
	}

	indexData := make([]byte, indexSize)
	if _, err := f.ReadAt(indexData, int64(ftr.indexOffset)); err != nil {
		return nil, err
	}

	r := bytes.NewReader(indexData)
	index := make([]rowIndexEntry, 0, ftr.rowCount)
	for i := uint64(0); i < ftr.rowCount; i++ {
		keyLen, err := common.ReadUint16(r)
		if err != nil {
			return nil, fmt.Errorf("row index entry %d: %w", i, err)
		}
		key, err := common.ReadBytes(r, uint64(keyLen))
		if err != nil {
			return nil, fmt.Errorf("row index entry %d: %w", i, err)
		}
		offset, err := common.ReadUint64(r)
		if err != nil {
			return nil, fmt.Errorf("row index entry %d: %w", i, err)
		}
		size, err := common.ReadUint64(r)
		if err != nil {
			return nil, fmt.Errorf("row index entry %d: %w", i, err)
		}
		index = append(index, rowIndexEntry{key: key, offset: offset, size: size})
	}
	return index, nil
}

// Len returns the number of rows in the segment.
func (t *Table) Len() int {
	return len(t.index)
}

// Path returns the segment file path.
func (t *Table) Path() string {
	return t.path
}

// RowInfo describes one row for listing purposes.
type RowInfo struct {
	Key  []byte
	Size uint64
}

// Rows lists the segment's rows in key order.
func (t *Table) Rows() []RowInfo {
	infos := make([]RowInfo, len(t.index))
	for i, e := range t.index {
		infos[i] = RowInfo{Key: e.key, Size: e.size}
	}
	return infos
}

// lookup finds the row index entry for key, consulting the position cache
// first.
func (t *Table) lookup(key []byte) (rowIndexEntry, bool) {
	if t.cache != nil {
		if e, ok := t.cache.Get(string(key)); ok {
			return e, true
		}
	}

	i := sort.Search(len(t.index), func(i int) bool {
		return bytes.Compare(t.index[i].key, key) >= 0
	})
	if i >= len(t.index) || !bytes.Equal(t.index[i].key, key) {
		return rowIndexEntry{}, false
	}

	if t.cache != nil {
		t.cache.Add(string(key), t.index[i])
	}
	return t.index[i], true
}

// RowInput opens a fresh handle positioned at the start of key's row body.
// The returned input is independent of every other reader and owns the
// handle, released by its Close. The on-disk key framing is verified
// against the request before the body is handed out.
func (t *Table) RowInput(key []byte) (*common.Input, error) {
	e, ok := t.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrRowNotFound, key, t.path)
	}

	// Each cursor drives its own handle so concurrent cursors over one
	// table never fight over a shared position.
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}

	framing := io.NewSectionReader(f, int64(e.offset), int64(2+len(e.key))+8)
	keyLen, err := common.ReadUint16(framing)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("row %q at offset %d in %s: %w", key, e.offset, t.path, err)
	}
	diskKey, err := common.ReadBytes(framing, uint64(keyLen))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("row %q at offset %d in %s: %w", key, e.offset, t.path, err)
	}
	if !bytes.Equal(diskKey, key) {
		f.Close()
		return nil, fmt.Errorf("%w: requested %q, found %q at offset %d in %s", ErrKeyMismatch, key, diskKey, e.offset, t.path)
	}
	bodySize, err := common.ReadUint64(framing)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("row %q at offset %d in %s: %w", key, e.offset, t.path, err)
	}
	if bodySize != e.size {
		f.Close()
		return nil, fmt.Errorf("segment: row %q: framed size %d disagrees with indexed size %d in %s", key, bodySize, e.size, t.path)
	}

	bodyOffset := int64(e.offset) + int64(2+keyLen) + 8
	body := io.NewSectionReader(f, bodyOffset, int64(bodySize))
	return common.NewOwnedInput(body, f), nil
}

// Close releases the table's file handle. Inputs handed out by RowInput
// carry their own handles and stay usable.
func (t *Table) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
