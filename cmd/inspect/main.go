package main

import (
	"fmt"
	"os"
	"time"

	"citrine/internal/common"
	"citrine/internal/filter"
	"citrine/internal/rowindex"
	"citrine/internal/segment"
	"citrine/internal/slice"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.seg>\n", os.Args[0])
		os.Exit(1)
	}

	path := os.Args[1]
	start := time.Now()

	table, err := segment.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open segment: %v\n", err)
		os.Exit(1)
	}
	defer table.Close()

	common.LogDuration(start, "opened %s: %d rows", path, table.Len())
	fmt.Println()

	for _, info := range table.Rows() {
		if err := inspectRow(table, info); err != nil {
			fmt.Fprintf(os.Stderr, "error inspecting row %q: %v\n", info.Key, err)
			os.Exit(1)
		}
	}
}

func inspectRow(table *segment.Table, info segment.RowInfo) error {
	fmt.Printf("row %q (%d bytes)\n", info.Key, info.Size)

	// Walk the metadata regions directly to show the block index.
	in, err := table.RowInput(info.Key)
	if err != nil {
		return err
	}
	if err := filter.Skip(in); err != nil {
		in.Close()
		return err
	}
	entries, err := rowindex.Read(in)
	if err != nil {
		in.Close()
		return err
	}
	in.Close()

	for i, e := range entries {
		fmt.Printf("  block %d: [%q, %q] offset=%d width=%d\n", i, e.FirstName, e.LastName, e.Offset, e.Width)
	}

	cursor, err := slice.NewCursor(table, info.Key, common.BytesComparator{}, slice.Bounds{}, slice.Forward)
	if err != nil {
		return err
	}
	defer cursor.Close()

	if shell := cursor.Shell(); shell.Deleted() {
		fmt.Printf("  tombstone: markedForDeleteAt=%d localDeletionTime=%d\n", shell.MarkedForDeleteAt, shell.LocalDeletionTime)
	}

	count := 0
	for {
		col, err := cursor.Next()
		if err != nil {
			return err
		}
		if col == nil {
			break
		}
		fmt.Printf("  %q @%d = %q\n", col.Name, col.Timestamp, col.Value)
		count++
	}
	fmt.Printf("  %d columns\n\n", count)
	return nil
}
