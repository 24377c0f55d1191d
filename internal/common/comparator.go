package common

import (
	"bytes"
	"encoding/binary"
)

// Comparator defines the total order over column names for one row's
// schema. Every range decision in the read path goes through the injected
// comparator; byte-wise lexical order is just one family.
type Comparator interface {
	// Compare returns a negative number when a sorts before b, zero when
	// they compare equal, and a positive number when a sorts after b.
	Compare(a, b []byte) int
}

// BytesComparator orders names by raw byte comparison.
type BytesComparator struct{}

func (BytesComparator) Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// LongComparator orders 8-byte little-endian unsigned names numerically.
// Numeric order of little-endian integers disagrees with byte-lexical
// order, so this family exercises comparator injection for real. Names of
// unequal length sort shorter-first; non-8-byte names of equal length fall
// back to byte order.
type LongComparator struct{}

func (LongComparator) Compare(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	if len(a) != 8 {
		return bytes.Compare(a, b)
	}
	x := binary.LittleEndian.Uint64(a)
	y := binary.LittleEndian.Uint64(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
