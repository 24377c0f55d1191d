package segment

import (
	"io"

	"citrine/internal/common"
)

const (
	// footerSize is the size of the footer in bytes.
	// footerOffset = len(segment) - footerSize
	footerSize = 16
)

// footer is the last 16 bytes of a segment file.
type footer struct {
	indexOffset uint64 // where the row index starts
	rowCount    uint64
}

func (f *footer) encode(w io.Writer) (int, error) {
	total := 0

	n, err := common.WriteUint64(w, f.indexOffset)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint64(w, f.rowCount)
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

func decodeFooter(r io.Reader) (*footer, error) {
	indexOffset, err := common.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	rowCount, err := common.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	return &footer{indexOffset: indexOffset, rowCount: rowCount}, nil
}
