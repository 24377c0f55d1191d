package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterh/liner"

	"citrine/internal/common"
	"citrine/internal/row"
	"citrine/internal/segment"
	"citrine/internal/slice"
)

var seedColumns = [][2]string{
	{"apple", "artichoke"},
	{"banana", "broccoli"},
	{"cherry", "cabbage"},
	{"durian", "daikon"},
	{"elderberry", "eggplant"},
	{"fig", "fennel"},
	{"grapefruit", "ginger"},
	{"honeydew", "horseradish"},
	{"kiwi", "kale"},
	{"lime", "leek"},
	{"mango", "mushroom"},
	{"orange", "okra"},
	{"peach", "peas"},
	{"quince", "quinoa"},
	{"raspberry", "radish"},
	{"strawberry", "spinach"},
	{"tangerine", "tomato"},
	{"watermelon", "watercress"},
	{"yuzu", "yam"},
	{"zarzamora", "zucchini"},
}

type shell struct {
	comparator common.Comparator
	pending    map[string]*row.Builder // rows not yet written to a segment
	table      *segment.Table
}

func main() {
	fmt.Println("citrine segment shell")
	fmt.Println("commands: put <row> <column> <value> | seed <row> | write <file> | open <file> | rows | slice <row> <start|-> <finish|-> [rev] | exit")

	sh := &shell{
		comparator: common.BytesComparator{},
		pending:    make(map[string]*row.Builder),
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == "exit" || input == "quit" {
			break
		}
		if err := sh.dispatch(strings.Fields(input)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	if sh.table != nil {
		sh.table.Close()
	}
}

func (sh *shell) dispatch(args []string) error {
	switch args[0] {
	case "put":
		if len(args) != 4 {
			return fmt.Errorf("usage: put <row> <column> <value>")
		}
		return sh.builder(args[1]).Add([]byte(args[2]), time.Now().UnixMicro(), []byte(args[3]))

	case "seed":
		if len(args) != 2 {
			return fmt.Errorf("usage: seed <row>")
		}
		b := sh.builder(args[1])
		for _, kv := range seedColumns {
			if err := b.Add([]byte(kv[0]), time.Now().UnixMicro(), []byte(kv[1])); err != nil {
				return err
			}
		}
		fmt.Printf("seeded %d columns into row %q\n", len(seedColumns), args[1])
		return nil

	case "write":
		if len(args) != 2 {
			return fmt.Errorf("usage: write <file>")
		}
		return sh.write(args[1])

	case "open":
		if len(args) != 2 {
			return fmt.Errorf("usage: open <file>")
		}
		return sh.open(args[1])

	case "rows":
		if sh.table == nil {
			return fmt.Errorf("no segment open")
		}
		for _, info := range sh.table.Rows() {
			fmt.Printf("%q (%d bytes)\n", info.Key, info.Size)
		}
		return nil

	case "slice":
		if len(args) < 4 || len(args) > 5 {
			return fmt.Errorf("usage: slice <row> <start|-> <finish|-> [rev]")
		}
		return sh.slice(args)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (sh *shell) builder(key string) *row.Builder {
	b, ok := sh.pending[key]
	if !ok {
		b = row.NewBuilder(sh.comparator)
		sh.pending[key] = b
	}
	return b
}

func (sh *shell) write(path string) error {
	if len(sh.pending) == 0 {
		return fmt.Errorf("nothing to write")
	}

	keys := make([]string, 0, len(sh.pending))
	for k := range sh.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := time.Now()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := segment.NewWriter(f)
	for _, k := range keys {
		var body bytes.Buffer
		if _, err := sh.pending[k].WriteTo(&body, row.DefaultColumnsPerBlock); err != nil {
			return err
		}
		if err := w.Append([]byte(k), body.Bytes()); err != nil {
			return err
		}
	}
	result, err := w.Finish()
	if err != nil {
		return err
	}

	sh.pending = make(map[string]*row.Builder)
	common.LogDuration(start, "wrote %s: %d rows, %d bytes", path, result.RowCount, result.BytesWritten)
	return nil
}

func (sh *shell) open(path string) error {
	table, err := segment.Open(path)
	if err != nil {
		return err
	}
	if sh.table != nil {
		sh.table.Close()
	}
	sh.table = table
	fmt.Printf("opened %s: %d rows\n", path, table.Len())
	return nil
}

func (sh *shell) slice(args []string) error {
	if sh.table == nil {
		return fmt.Errorf("no segment open")
	}

	bounds := slice.Bounds{}
	if args[2] != "-" {
		bounds.Start = []byte(args[2])
	}
	if args[3] != "-" {
		bounds.Finish = []byte(args[3])
	}
	dir := slice.Forward
	if len(args) == 5 {
		if args[4] != "rev" {
			return fmt.Errorf("unknown modifier %q", args[4])
		}
		dir = slice.Reversed
	}

	start := time.Now()
	cursor, err := slice.NewCursor(sh.table, []byte(args[1]), sh.comparator, bounds, dir)
	if err != nil {
		return err
	}
	defer cursor.Close()

	count := 0
	for {
		col, err := cursor.Next()
		if err != nil {
			return err
		}
		if col == nil {
			break
		}
		fmt.Printf("%q = %q\n", col.Name, col.Value)
		count++
	}
	common.LogDuration(start, "%d columns (%s)", count, dir)
	return nil
}
