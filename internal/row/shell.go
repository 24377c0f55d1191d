package row

import (
	"io"
	"math"

	"citrine/internal/common"
)

// Shell carries the row-level metadata that is independent of which
// columns a scan later touches: the row tombstone, if any. It is decoded
// once per cursor and shared read-only with callers.
type Shell struct {
	// MarkedForDeleteAt is the row tombstone timestamp, or math.MinInt64
	// when the row is live.
	MarkedForDeleteAt int64

	// LocalDeletionTime is the server-local unix time the tombstone was
	// written, zero when the row is live.
	LocalDeletionTime uint32
}

// LiveShell returns the shell of a row with no tombstone.
func LiveShell() Shell {
	return Shell{MarkedForDeleteAt: math.MinInt64}
}

// Deleted reports whether the whole row carries a tombstone.
func (s Shell) Deleted() bool {
	return s.MarkedForDeleteAt > math.MinInt64
}

// Encode writes the shell to the given writer.
// Format: markedForDeleteAt(8) + localDeletionTime(4)
func (s Shell) Encode(w io.Writer) (int, error) {
	total := 0

	n, err := common.WriteInt64(w, s.MarkedForDeleteAt)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint32(w, s.LocalDeletionTime)
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// DecodeShell reads a shell from the reader without touching any column.
func DecodeShell(r io.Reader) (Shell, error) {
	marked, err := common.ReadInt64(r)
	if err != nil {
		return Shell{}, err
	}
	ldt, err := common.ReadUint32(r)
	if err != nil {
		return Shell{}, err
	}
	return Shell{MarkedForDeleteAt: marked, LocalDeletionTime: ldt}, nil
}
