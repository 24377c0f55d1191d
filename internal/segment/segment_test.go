package segment

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSegment(t *testing.T, path string, rows map[string][]byte, keys []string) *WriteResult {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := NewWriter(f)
	for _, key := range keys {
		require.NoError(t, w.Append([]byte(key), rows[key]))
	}
	result, err := w.Finish()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return result
}

func readAll(t *testing.T, tbl *Table, key string) []byte {
	t.Helper()
	in, err := tbl.RowInput([]byte(key))
	require.NoError(t, err)
	defer in.Close()
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	return data
}

func TestWriteOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	rows := map[string][]byte{
		"alpha": []byte("first body"),
		"beta":  {},
		"gamma": bytes.Repeat([]byte{0xab}, 4096),
	}
	keys := []string{"alpha", "beta", "gamma"}
	result := writeSegment(t, path, rows, keys)

	require.Equal(t, uint64(3), result.RowCount)
	require.Equal(t, []byte("alpha"), result.SmallestKey)
	require.Equal(t, []byte("gamma"), result.LargestKey)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, result.BytesWritten, uint64(stat.Size()))

	tbl, err := Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	require.Equal(t, 3, tbl.Len())
	require.Equal(t, path, tbl.Path())

	infos := tbl.Rows()
	require.Len(t, infos, 3)
	for i, key := range keys {
		require.Equal(t, []byte(key), infos[i].Key)
		require.Equal(t, uint64(len(rows[key])), infos[i].Size)
	}

	for _, key := range keys {
		require.Equal(t, rows[key], readAll(t, tbl, key))
	}
}

func TestRowNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	writeSegment(t, path, map[string][]byte{"only": []byte("x")}, []string{"only"})

	tbl, err := Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	_, err = tbl.RowInput([]byte("missing"))
	require.ErrorIs(t, err, ErrRowNotFound)
}

func TestRowInputVerifiesDiskKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	writeSegment(t, path, map[string][]byte{"abc": []byte("body")}, []string{"abc"})

	// The first row's key starts right after its u16 length prefix.
	// Flipping one key byte leaves the index intact but breaks the framing.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[2] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	tbl, err := Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	_, err = tbl.RowInput([]byte("abc"))
	require.ErrorIs(t, err, ErrKeyMismatch)
}

func TestRowInputsAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	body := []byte("0123456789")
	writeSegment(t, path, map[string][]byte{"k": body}, []string{"k"})

	tbl, err := Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	in1, err := tbl.RowInput([]byte("k"))
	require.NoError(t, err)
	defer in1.Close()
	in2, err := tbl.RowInput([]byte("k"))
	require.NoError(t, err)
	defer in2.Close()

	// Interleaved reads must not disturb each other's position.
	half := make([]byte, 5)
	_, err = io.ReadFull(in1, half)
	require.NoError(t, err)
	require.Equal(t, body[:5], half)

	full, err := io.ReadAll(in2)
	require.NoError(t, err)
	require.Equal(t, body, full)

	rest, err := io.ReadAll(in1)
	require.NoError(t, err)
	require.Equal(t, body[5:], rest)
}

func TestRowInputOutlivesTableClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	writeSegment(t, path, map[string][]byte{"k": []byte("still here")}, []string{"k"})

	tbl, err := Open(path)
	require.NoError(t, err)

	in, err := tbl.RowInput([]byte("k"))
	require.NoError(t, err)
	defer in.Close()

	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())

	data, err := io.ReadAll(in)
	require.NoError(t, err)
	require.Equal(t, []byte("still here"), data)
}

func TestWriterRejectsBadAppends(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	require.Error(t, w.Append(nil, []byte("x")), "empty key")
	require.NoError(t, w.Append([]byte("m"), []byte("x")))
	require.Error(t, w.Append([]byte("m"), []byte("x")), "duplicate key")
	require.Error(t, w.Append([]byte("a"), []byte("x")), "descending key")

	_, err := w.Finish()
	require.NoError(t, err)
	require.Error(t, w.Append([]byte("z"), []byte("x")), "append after finish")
	_, err = w.Finish()
	require.Error(t, err, "double finish")
}

func TestRowCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	rows := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	writeSegment(t, path, rows, []string{"a", "b"})

	tbl, err := Open(path, WithRowCacheSize(4))
	require.NoError(t, err)
	defer tbl.Close()

	require.NotNil(t, tbl.cache)
	require.Zero(t, tbl.cache.Len())

	readAll(t, tbl, "a")
	require.Equal(t, 1, tbl.cache.Len())

	// A repeat lookup is served from the cache and adds no entry.
	readAll(t, tbl, "a")
	require.Equal(t, 1, tbl.cache.Len())

	readAll(t, tbl, "b")
	require.Equal(t, 2, tbl.cache.Len())
}

func TestRowCacheDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.seg")
	writeSegment(t, path, map[string][]byte{"a": []byte("1")}, []string{"a"})

	tbl, err := Open(path, WithRowCacheSize(0))
	require.NoError(t, err)
	defer tbl.Close()

	require.Nil(t, tbl.cache)
	require.Equal(t, []byte("1"), readAll(t, tbl, "a"))
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.seg")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenEmptySegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.seg")
	result := writeSegment(t, path, nil, nil)
	require.Equal(t, uint64(0), result.RowCount)
	require.Nil(t, result.SmallestKey)

	tbl, err := Open(path)
	require.NoError(t, err)
	defer tbl.Close()

	require.Zero(t, tbl.Len())
	_, err = tbl.RowInput([]byte("any"))
	require.ErrorIs(t, err, ErrRowNotFound)
}
