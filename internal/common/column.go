package common

import (
	"io"
)

// Column is one named unit of data inside a row. Ordering is defined
// solely by Name under the row's comparator; Timestamp and Value ride
// along as opaque payload.
type Column struct {
	Name      []byte
	Timestamp int64
	Value     []byte
}

// ColumnIterator produces a stream of columns. Next returns nil when the
// stream is exhausted. Implementations close underlying resources
// separately.
type ColumnIterator interface {
	Next() (*Column, error)
}

// Encode writes a column to the given writer.
// Format: nameLen(u16) + name + timestamp(8) + valueLen(u32) + value
// Returns the number of bytes written.
func (c *Column) Encode(w io.Writer) (int, error) {
	total := 0

	n, err := WriteUint16(w, uint16(len(c.Name)))
	total += n
	if err != nil {
		return total, err
	}

	n, err = WriteBytes(w, c.Name)
	total += n
	if err != nil {
		return total, err
	}

	n, err = WriteInt64(w, c.Timestamp)
	total += n
	if err != nil {
		return total, err
	}

	n, err = WriteUint32(w, uint32(len(c.Value)))
	total += n
	if err != nil {
		return total, err
	}

	n, err = WriteBytes(w, c.Value)
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// EncodedSize returns the number of bytes Encode will produce for c.
func (c *Column) EncodedSize() int {
	return 2 + len(c.Name) + 8 + 4 + len(c.Value)
}

// DecodeColumn reads a single column from the reader. Returns an error on
// truncated or malformed data.
func DecodeColumn(r io.Reader) (*Column, error) {
	nameLen, err := ReadUint16(r)
	if err != nil {
		return nil, err
	}

	name, err := ReadBytes(r, uint64(nameLen))
	if err != nil {
		return nil, err
	}

	ts, err := ReadInt64(r)
	if err != nil {
		return nil, err
	}

	valueLen, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}

	value, err := ReadBytes(r, uint64(valueLen))
	if err != nil {
		return nil, err
	}

	return &Column{Name: name, Timestamp: ts, Value: value}, nil
}
