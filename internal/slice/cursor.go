package slice

import (
	"errors"

	"citrine/internal/common"
	"citrine/internal/row"
	"citrine/internal/segment"
)

// ErrClosed reports a pull from a closed cursor.
var ErrClosed = errors.New("slice: cursor closed")

// columnReader is the strategy behind a cursor. The two implementations
// share no state and differ only in algorithm.
type columnReader interface {
	next() (*common.Column, error)
	rowShell() row.Shell
}

// Cursor is a one-shot, read-only iterator over the columns of a single
// row that fall inside Bounds, emitted in the order given by Direction.
// It is not restartable: re-scanning requires a new cursor. A cursor must
// be driven by one goroutine at a time and closed when done.
type Cursor struct {
	key    []byte
	in     *common.Input
	owns   bool
	reader columnReader
	closed bool
}

var _ common.ColumnIterator = (*Cursor)(nil)

// NewCursor opens the row's input from the table. The cursor owns the
// input and releases it on Close. A missing row surfaces the table's
// ErrRowNotFound unchanged.
func NewCursor(t *segment.Table, key []byte, cmp common.Comparator, bounds Bounds, dir Direction) (*Cursor, error) {
	in, err := t.RowInput(key)
	if err != nil {
		return nil, err
	}
	c, err := newCursor(in, true, key, cmp, bounds, dir)
	if err != nil {
		in.Close()
		return nil, err
	}
	return c, nil
}

// NewCursorOn borrows an already-positioned row input. The caller keeps
// ownership of the input: Close on the cursor never releases it.
func NewCursorOn(in *common.Input, key []byte, cmp common.Comparator, bounds Bounds, dir Direction) (*Cursor, error) {
	return newCursor(in, false, key, cmp, bounds, dir)
}

func newCursor(in *common.Input, owns bool, key []byte, cmp common.Comparator, bounds Bounds, dir Direction) (*Cursor, error) {
	var reader columnReader
	var err error
	if len(bounds.Start) == 0 && dir == Forward {
		reader, err = newFullScanReader(in, key, cmp, bounds.Finish)
	} else {
		reader, err = newIndexedBlockReader(in, key, cmp, bounds, dir)
	}
	if err != nil {
		return nil, err
	}

	return &Cursor{key: key, in: in, owns: owns, reader: reader}, nil
}

// Key returns the row key the cursor was opened with.
func (c *Cursor) Key() []byte {
	return c.key
}

// Shell returns the row-level metadata decoded at construction.
func (c *Cursor) Shell() row.Shell {
	return c.reader.rowShell()
}

// Next returns the next in-range column, or nil when the slice is
// exhausted. Errors are fatal for the cursor.
func (c *Cursor) Next() (*common.Column, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return c.reader.next()
}

// Close releases the underlying input if the cursor opened it. Borrowed
// inputs stay open and remain the caller's responsibility.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.owns {
		return c.in.Close()
	}
	return nil
}
