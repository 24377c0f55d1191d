package slice

import (
	"fmt"

	"citrine/internal/common"
	"citrine/internal/filter"
	"citrine/internal/row"
	"citrine/internal/rowindex"
)

// fullScanReader decodes columns sequentially from the start of the column
// data, stopping at the first column past the finish bound. It never
// consults the block index, so it only serves unbounded-start forward
// scans, where storage order already is iteration order.
type fullScanReader struct {
	in       *common.Input
	cmp      common.Comparator
	finish   []byte
	shell    row.Shell
	rowKey   []byte
	columns  uint32
	produced uint32
	done     bool
	mark     common.Mark
}

func newFullScanReader(in *common.Input, rowKey []byte, cmp common.Comparator, finish []byte) (*fullScanReader, error) {
	if err := filter.Skip(in); err != nil {
		return nil, fmt.Errorf("row %q: skip filter region: %w", rowKey, err)
	}
	if err := rowindex.Skip(in); err != nil {
		return nil, fmt.Errorf("row %q: skip index region: %w", rowKey, err)
	}
	shell, err := row.DecodeShell(in)
	if err != nil {
		return nil, fmt.Errorf("row %q: decode shell: %w", rowKey, err)
	}
	columns, err := common.ReadUint32(in)
	if err != nil {
		return nil, fmt.Errorf("row %q: read column count: %w", rowKey, err)
	}
	mark, err := in.Mark()
	if err != nil {
		return nil, err
	}

	return &fullScanReader{
		in:      in,
		cmp:     cmp,
		finish:  finish,
		shell:   shell,
		rowKey:  rowKey,
		columns: columns,
		mark:    mark,
	}, nil
}

func (r *fullScanReader) rowShell() row.Shell {
	return r.shell
}

func (r *fullScanReader) next() (*common.Column, error) {
	if r.done || r.produced >= r.columns {
		r.done = true
		return nil, nil
	}

	// Re-sync to the mark recorded after the previous column: the handle
	// may be shared, so the position is re-derived on every call instead
	// of assumed to persist between calls.
	if err := r.in.Reset(r.mark); err != nil {
		return nil, err
	}

	col, err := common.DecodeColumn(r.in)
	if err != nil {
		r.done = true
		return nil, fmt.Errorf("row %q: decode column %d of %d: %w", r.rowKey, r.produced, r.columns, err)
	}
	r.produced++

	if len(r.finish) > 0 && r.cmp.Compare(col.Name, r.finish) > 0 {
		r.done = true
		return nil, nil
	}

	mark, err := r.in.Mark()
	if err != nil {
		return nil, err
	}
	r.mark = mark
	return col, nil
}
