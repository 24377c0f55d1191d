package common

import "testing"

// RequireColumns drains iter and compares each column to the expected
// batch using testing.T helpers. Fails immediately on mismatch, then
// requires the iterator to be exhausted.
func RequireColumns(t *testing.T, iter ColumnIterator, expected []*Column) {
	t.Helper()

	for i := range expected {
		col, err := iter.Next()
		if err != nil {
			t.Fatalf("unexpected iterator error: %v", err)
		}
		if col == nil {
			t.Fatalf("iterator exhausted at index %d, want %q", i, expected[i].Name)
		}
		if !columnsEqual(col, expected[i]) {
			t.Fatalf("column mismatch at %d: got %+v want %+v", i, col, expected[i])
		}
	}

	col, err := iter.Next()
	if err != nil {
		t.Fatalf("unexpected iterator error at end: %v", err)
	}
	if col != nil {
		t.Fatalf("expected iterator to be exhausted, got %q", col.Name)
	}
}

func columnsEqual(a, b *Column) bool {
	return string(a.Name) == string(b.Name) && a.Timestamp == b.Timestamp && string(a.Value) == string(b.Value)
}
