package slice

import (
	"fmt"

	"citrine/internal/common"
	"citrine/internal/filter"
	"citrine/internal/row"
	"citrine/internal/rowindex"
)

// indexedBlockReader walks the sparse block index: it locates the block
// where the slice begins, decodes and buffers whole blocks on demand, and
// stops the moment the index proves no further block can intersect the
// bounds. Columns are always stored name-ascending; a reversed scan
// reverses each decoded block so the buffer front is always the next
// column in iteration order.
type indexedBlockReader struct {
	in      *common.Input
	cmp     common.Comparator
	bounds  Bounds
	dir     Direction
	shell   row.Shell
	rowKey  []byte
	entries []rowindex.Entry
	cur     int // signed; leaves [0, len) once the scan is exhausted
	buf     []*common.Column
	base    common.Mark // first column byte; block offsets are relative to it
}

func newIndexedBlockReader(in *common.Input, rowKey []byte, cmp common.Comparator, bounds Bounds, dir Direction) (*indexedBlockReader, error) {
	if err := filter.Skip(in); err != nil {
		return nil, fmt.Errorf("row %q: skip filter region: %w", rowKey, err)
	}
	entries, err := rowindex.Read(in)
	if err != nil {
		return nil, fmt.Errorf("row %q: %w", rowKey, err)
	}
	shell, err := row.DecodeShell(in)
	if err != nil {
		return nil, fmt.Errorf("row %q: decode shell: %w", rowKey, err)
	}
	// The column count only matters to the sequential path; here it is
	// read to land the base mark on the first column byte.
	if _, err := common.ReadUint32(in); err != nil {
		return nil, fmt.Errorf("row %q: read column count: %w", rowKey, err)
	}
	base, err := in.Mark()
	if err != nil {
		return nil, err
	}

	return &indexedBlockReader{
		in:      in,
		cmp:     cmp,
		bounds:  bounds,
		dir:     dir,
		shell:   shell,
		rowKey:  rowKey,
		entries: entries,
		cur:     rowindex.Locate(entries, bounds.Start, cmp, dir == Reversed),
		base:    base,
	}, nil
}

func (r *indexedBlockReader) rowShell() row.Shell {
	return r.shell
}

func (r *indexedBlockReader) next() (*common.Column, error) {
	for {
		if len(r.buf) > 0 {
			col := r.buf[0]
			r.buf = r.buf[1:]
			if r.bounds.Needed(col.Name, r.cmp, r.dir) {
				return col, nil
			}
			continue
		}

		ok, err := r.loadNextBlock()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
}

// loadNextBlock decodes the current block into the buffer and advances the
// block position. Returns false when no block remains in range: blocks are
// contiguous and monotonic, so the first block proven disjoint from the
// bounds in the direction of travel ends the scan.
func (r *indexedBlockReader) loadNextBlock() (bool, error) {
	if r.cur < 0 || r.cur >= len(r.entries) {
		return false, nil
	}
	entry := r.entries[r.cur]

	// Check whether this read is necessary before touching any bytes.
	if r.dir == Reversed {
		if (len(r.bounds.Finish) > 0 && r.cmp.Compare(r.bounds.Finish, entry.LastName) > 0) ||
			(len(r.bounds.Start) > 0 && r.cmp.Compare(r.bounds.Start, entry.FirstName) < 0) {
			return false, nil
		}
	} else {
		if (len(r.bounds.Start) > 0 && r.cmp.Compare(r.bounds.Start, entry.LastName) > 0) ||
			(len(r.bounds.Finish) > 0 && r.cmp.Compare(r.bounds.Finish, entry.FirstName) < 0) {
			return false, nil
		}
	}

	if err := r.in.Reset(r.base); err != nil {
		return false, err
	}
	if err := r.in.SkipBytes(int64(entry.Offset)); err != nil {
		return false, err
	}

	block := r.buf[:0]
	end := entry.Offset + entry.Width
	for ordinal := 0; ; ordinal++ {
		past, err := r.in.BytesPastMark(r.base)
		if err != nil {
			return false, err
		}
		if uint64(past) >= end {
			break
		}

		col, err := common.DecodeColumn(r.in)
		if err != nil {
			return false, fmt.Errorf("row %q: block %d: decode column %d: %w", r.rowKey, r.cur, ordinal, err)
		}
		block = append(block, col)

		// A column at or past the near bound ends the block read early:
		// everything after it in storage order is farther out of range.
		if r.dir == Forward && len(r.bounds.Finish) > 0 && r.cmp.Compare(col.Name, r.bounds.Finish) >= 0 {
			break
		}
		if r.dir == Reversed && len(r.bounds.Start) > 0 && r.cmp.Compare(col.Name, r.bounds.Start) >= 0 {
			break
		}
	}

	if r.dir == Reversed {
		for i, j := 0, len(block)-1; i < j; i, j = i+1, j-1 {
			block[i], block[j] = block[j], block[i]
		}
		r.cur--
	} else {
		r.cur++
	}
	r.buf = block
	return true, nil
}
