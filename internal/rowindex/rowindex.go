package rowindex

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"citrine/internal/common"
)

// Index Region Layout (one per row, ahead of the shell):
//
// ┌──────────────────┐
// │       size       │  uint32 - bytes after this field
// ├──────────────────┤
// │    numEntries    │  uint32 - number of column blocks
// ├──────────────────┤
// │     Entry 0      │
// ├──────────────────┤
// │       ...        │
// ├──────────────────┤
// │    Entry N-1     │
// └──────────────────┘
//
// Entry Layout:
//
// ┌──────────────────┐
// │     firstLen     │  uint16
// ├──────────────────┤
// │    firstName     │  []byte - smallest name in the block
// ├──────────────────┤
// │     lastLen      │  uint16
// ├──────────────────┤
// │     lastName     │  []byte - largest name in the block
// ├──────────────────┤
// │      offset      │  uint64 - relative to the first column byte
// ├──────────────────┤
// │      width       │  uint64 - block length in bytes
// └──────────────────┘
//
// Entries are sorted ascending by name and describe contiguous,
// non-overlapping runs of on-disk columns.

// Entry describes one contiguous block of columns.
type Entry struct {
	FirstName []byte
	LastName  []byte
	Offset    uint64
	Width     uint64
}

// Encode writes an index entry to the given writer.
func (e *Entry) Encode(w io.Writer) (int, error) {
	total := 0

	n, err := common.WriteUint16(w, uint16(len(e.FirstName)))
	total += n
	if err != nil {
		return total, err
	}
	n, err = common.WriteBytes(w, e.FirstName)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint16(w, uint16(len(e.LastName)))
	total += n
	if err != nil {
		return total, err
	}
	n, err = common.WriteBytes(w, e.LastName)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint64(w, e.Offset)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint64(w, e.Width)
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// DecodeEntry reads a single index entry from the reader.
func DecodeEntry(r io.Reader) (*Entry, error) {
	firstLen, err := common.ReadUint16(r)
	if err != nil {
		return nil, err
	}
	first, err := common.ReadBytes(r, uint64(firstLen))
	if err != nil {
		return nil, err
	}

	lastLen, err := common.ReadUint16(r)
	if err != nil {
		return nil, err
	}
	last, err := common.ReadBytes(r, uint64(lastLen))
	if err != nil {
		return nil, err
	}

	offset, err := common.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	width, err := common.ReadUint64(r)
	if err != nil {
		return nil, err
	}

	return &Entry{FirstName: first, LastName: last, Offset: offset, Width: width}, nil
}

// Write serializes the entry list as a complete region with size prefix.
// Returns the bytes written.
func Write(w io.Writer, entries []Entry) (int, error) {
	var body bytes.Buffer
	if _, err := common.WriteUint32(&body, uint32(len(entries))); err != nil {
		return 0, err
	}
	for i := range entries {
		if _, err := entries[i].Encode(&body); err != nil {
			return 0, err
		}
	}

	total := 0
	n, err := common.WriteUint32(w, uint32(body.Len()))
	total += n
	if err != nil {
		return total, err
	}
	n, err = common.WriteBytes(w, body.Bytes())
	total += n
	if err != nil {
		return total, err
	}
	return total, nil
}

// Read deserializes an index region from r.
func Read(r io.Reader) ([]Entry, error) {
	if _, err := common.ReadUint32(r); err != nil {
		return nil, fmt.Errorf("rowindex: read region size: %w", err)
	}
	count, err := common.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("rowindex: read entry count: %w", err)
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, err := DecodeEntry(r)
		if err != nil {
			return nil, fmt.Errorf("rowindex: decode entry %d of %d: %w", i, count, err)
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Skip advances in past the index region without decoding entries.
func Skip(in *common.Input) error {
	size, err := common.ReadUint32(in)
	if err != nil {
		return fmt.Errorf("rowindex: read region size: %w", err)
	}
	return in.SkipBytes(int64(size))
}

// Locate returns the position of the block where a scan for start begins.
// Entries must be sorted ascending by name.
//
// An empty start means "from the edge": the first entry going forward, the
// last going backward. Otherwise the result is the block whose name range
// contains start; when start falls between blocks, the result is the block
// visited first in the requested direction. Forward scans may get len
// (start sorts after every block) and reversed scans may get -1 (start
// sorts before every block); both positions read as "already exhausted".
func Locate(entries []Entry, start []byte, cmp common.Comparator, reversed bool) int {
	if len(start) == 0 {
		if reversed {
			return len(entries) - 1
		}
		return 0
	}

	if reversed {
		// Last block whose first name is <= start.
		i := sort.Search(len(entries), func(i int) bool {
			return cmp.Compare(entries[i].FirstName, start) > 0
		})
		return i - 1
	}

	// First block whose last name is >= start.
	return sort.Search(len(entries), func(i int) bool {
		return cmp.Compare(entries[i].LastName, start) >= 0
	})
}
