package row

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/btree"

	"citrine/internal/common"
)

// builderDegree is the btree branching factor for pending columns.
const builderDegree = 16

// Builder accumulates the columns of one row in comparator order before
// serialization. Adding a name twice replaces the earlier column.
type Builder struct {
	cmp   common.Comparator
	tree  *btree.BTreeG[*common.Column]
	shell Shell
}

// NewBuilder returns an empty builder ordering names with cmp.
func NewBuilder(cmp common.Comparator) *Builder {
	less := func(a, b *common.Column) bool {
		return cmp.Compare(a.Name, b.Name) < 0
	}
	return &Builder{
		cmp:   cmp,
		tree:  btree.NewG(builderDegree, less),
		shell: LiveShell(),
	}
}

// SetShell installs row-level deletion metadata.
func (b *Builder) SetShell(s Shell) {
	b.shell = s
}

// Add records a column, replacing any previous column with the same name.
func (b *Builder) Add(name []byte, timestamp int64, value []byte) error {
	if len(name) == 0 {
		return fmt.Errorf("row: empty column name")
	}
	b.tree.ReplaceOrInsert(&common.Column{
		Name:      bytes.Clone(name),
		Timestamp: timestamp,
		Value:     bytes.Clone(value),
	})
	return nil
}

// Len returns the number of pending columns.
func (b *Builder) Len() int {
	return b.tree.Len()
}

// Columns returns the pending columns in ascending comparator order.
func (b *Builder) Columns() []*common.Column {
	columns := make([]*common.Column, 0, b.tree.Len())
	b.tree.Ascend(func(c *common.Column) bool {
		columns = append(columns, c)
		return true
	})
	return columns
}

// WriteTo serializes the pending columns as a row body.
func (b *Builder) WriteTo(w io.Writer, columnsPerBlock int) (*WriteResult, error) {
	return WriteRow(w, b.cmp, b.shell, b.Columns(), columnsPerBlock)
}
