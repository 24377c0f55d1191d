package segment

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"citrine/internal/common"
)

// WriteResult contains metadata from writing a segment.
type WriteResult struct {
	BytesWritten uint64
	RowCount     uint64
	SmallestKey  []byte
	LargestKey   []byte
}

// Writer streams key-framed row bodies into a segment, then the row index
// and footer. Rows must arrive in strictly ascending key order.
type Writer struct {
	w      io.Writer
	offset uint64
	index  []rowIndexEntry
	done   bool
}

// NewWriter wraps w. The caller owns w and closes it after Finish.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Append writes one row. body is a serialized row body as produced by the
// row package.
func (sw *Writer) Append(key, body []byte) error {
	if sw.done {
		return fmt.Errorf("segment: writer already finished")
	}
	if len(key) == 0 {
		return fmt.Errorf("segment: empty row key")
	}
	if len(key) > math.MaxUint16 {
		return fmt.Errorf("segment: row key length %d exceeds %d", len(key), math.MaxUint16)
	}
	if n := len(sw.index); n > 0 && bytes.Compare(key, sw.index[n-1].key) <= 0 {
		return fmt.Errorf("segment: row key %q not above %q", key, sw.index[n-1].key)
	}

	sw.index = append(sw.index, rowIndexEntry{
		key:    bytes.Clone(key),
		offset: sw.offset,
		size:   uint64(len(body)),
	})

	n, err := common.WriteUint16(sw.w, uint16(len(key)))
	sw.offset += uint64(n)
	if err != nil {
		return err
	}
	n, err = common.WriteBytes(sw.w, key)
	sw.offset += uint64(n)
	if err != nil {
		return err
	}
	n, err = common.WriteUint64(sw.w, uint64(len(body)))
	sw.offset += uint64(n)
	if err != nil {
		return err
	}
	n, err = common.WriteBytes(sw.w, body)
	sw.offset += uint64(n)
	if err != nil {
		return err
	}
	return nil
}

// Finish writes the row index and footer. The writer accepts no more rows
// afterwards.
func (sw *Writer) Finish() (*WriteResult, error) {
	if sw.done {
		return nil, fmt.Errorf("segment: writer already finished")
	}
	sw.done = true

	indexOffset := sw.offset
	for _, e := range sw.index {
		n, err := common.WriteUint16(sw.w, uint16(len(e.key)))
		sw.offset += uint64(n)
		if err != nil {
			return nil, err
		}
		n, err = common.WriteBytes(sw.w, e.key)
		sw.offset += uint64(n)
		if err != nil {
			return nil, err
		}
		n, err = common.WriteUint64(sw.w, e.offset)
		sw.offset += uint64(n)
		if err != nil {
			return nil, err
		}
		n, err = common.WriteUint64(sw.w, e.size)
		sw.offset += uint64(n)
		if err != nil {
			return nil, err
		}
	}

	ftr := &footer{indexOffset: indexOffset, rowCount: uint64(len(sw.index))}
	n, err := ftr.encode(sw.w)
	sw.offset += uint64(n)
	if err != nil {
		return nil, err
	}

	result := &WriteResult{
		BytesWritten: sw.offset,
		RowCount:     uint64(len(sw.index)),
	}
	if len(sw.index) > 0 {
		result.SmallestKey = sw.index[0].key
		result.LargestKey = sw.index[len(sw.index)-1].key
	}
	return result, nil
}
