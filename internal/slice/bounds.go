package slice

import "citrine/internal/common"

// Direction selects the name order a slice is iterated in.
type Direction uint8

const (
	// Forward emits columns in ascending comparator order.
	Forward Direction = iota
	// Reversed emits columns in descending comparator order. The scan
	// runs from Start down to Finish, so Start is the high edge.
	Reversed
)

func (d Direction) String() string {
	if d == Reversed {
		return "reversed"
	}
	return "forward"
}

// Bounds brackets a slice by column name. A nil or empty bound leaves
// that side unconstrained; non-empty bounds are inclusive.
type Bounds struct {
	Start  []byte
	Finish []byte
}

// Needed reports whether a column named name belongs to the slice. Pure
// comparator arithmetic, no I/O.
func (b Bounds) Needed(name []byte, cmp common.Comparator, dir Direction) bool {
	switch {
	case len(b.Start) == 0 && len(b.Finish) == 0:
		return true
	case len(b.Start) == 0 && dir == Forward:
		return cmp.Compare(name, b.Finish) <= 0
	case len(b.Start) == 0:
		return cmp.Compare(name, b.Finish) >= 0
	case len(b.Finish) == 0 && dir == Forward:
		return cmp.Compare(name, b.Start) >= 0
	case len(b.Finish) == 0:
		return cmp.Compare(name, b.Start) <= 0
	case dir == Forward:
		return cmp.Compare(name, b.Start) >= 0 && cmp.Compare(name, b.Finish) <= 0
	default:
		return cmp.Compare(name, b.Start) <= 0 && cmp.Compare(name, b.Finish) >= 0
	}
}
