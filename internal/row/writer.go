package row

import (
	"bytes"
	"fmt"
	"io"

	"citrine/internal/common"
	"citrine/internal/filter"
	"citrine/internal/rowindex"
)

// Row Body Layout:
//
//                ┌────────────────┐
//                │  Filter Region │  bloom filter over column names
//                ├────────────────┤
//                │  Index Region  │  {firstName, lastName, offset, width} per block
//                ├────────────────┤
//                │      Shell     │  row tombstone metadata
//                ├────────────────┤
//                │  columnCount   │  uint32
// offset 0 ───── ├────────────────┤
//                │ Column Block 0 │  up to columnsPerBlock columns, name-ascending
//                ├────────────────┤
//                │       ...      │
//                ├────────────────┤
//                │ Column Block N │
//                └────────────────┘
//
// Index offsets and widths are relative to the first column byte, the
// position right after columnCount.

// DefaultColumnsPerBlock is the number of columns summarized by one index
// entry. The last block of a row may hold fewer.
const DefaultColumnsPerBlock = 64

// bloomFalsePositiveRate is the target rate for the per-row name filter.
const bloomFalsePositiveRate = 0.01

// WriteResult contains metadata from serializing one row body.
type WriteResult struct {
	BytesWritten uint64
	ColumnCount  uint64
	BlockCount   uint64
}

// WriteRow serializes a complete row body from columns already sorted in
// strictly ascending comparator order. Empty or out-of-order names are
// rejected.
func WriteRow(w io.Writer, cmp common.Comparator, shell Shell, columns []*common.Column, columnsPerBlock int) (*WriteResult, error) {
	if columnsPerBlock <= 0 {
		columnsPerBlock = DefaultColumnsPerBlock
	}

	bloom := filter.New(filter.OptimalParams(uint32(len(columns)), bloomFalsePositiveRate))

	var data bytes.Buffer
	var entries []rowindex.Entry
	var blockStart uint64
	var firstName []byte
	blockLen := 0

	for i, col := range columns {
		if len(col.Name) == 0 {
			return nil, fmt.Errorf("row: column %d has an empty name", i)
		}
		if i > 0 && cmp.Compare(columns[i-1].Name, col.Name) >= 0 {
			return nil, fmt.Errorf("row: column %d name %q not above %q", i, col.Name, columns[i-1].Name)
		}

		bloom.Add(col.Name)

		if blockLen == 0 {
			blockStart = uint64(data.Len())
			firstName = col.Name
		}

		if _, err := col.Encode(&data); err != nil {
			return nil, err
		}
		blockLen++

		if blockLen >= columnsPerBlock {
			entries = append(entries, rowindex.Entry{
				FirstName: firstName,
				LastName:  col.Name,
				Offset:    blockStart,
				Width:     uint64(data.Len()) - blockStart,
			})
			blockLen = 0
		}
	}

	// Last partial block.
	if blockLen > 0 {
		entries = append(entries, rowindex.Entry{
			FirstName: firstName,
			LastName:  columns[len(columns)-1].Name,
			Offset:    blockStart,
			Width:     uint64(data.Len()) - blockStart,
		})
	}

	var total uint64

	n, err := filter.Write(w, bloom)
	total += uint64(n)
	if err != nil {
		return nil, err
	}

	n, err = rowindex.Write(w, entries)
	total += uint64(n)
	if err != nil {
		return nil, err
	}

	n, err = shell.Encode(w)
	total += uint64(n)
	if err != nil {
		return nil, err
	}

	n, err = common.WriteUint32(w, uint32(len(columns)))
	total += uint64(n)
	if err != nil {
		return nil, err
	}

	n, err = common.WriteBytes(w, data.Bytes())
	total += uint64(n)
	if err != nil {
		return nil, err
	}

	return &WriteResult{
		BytesWritten: total,
		ColumnCount:  uint64(len(columns)),
		BlockCount:   uint64(len(entries)),
	}, nil
}
