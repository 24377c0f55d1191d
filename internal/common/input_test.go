package common

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	closed int
}

func (c *recordingCloser) Close() error {
	c.closed++
	return nil
}

func TestInputMarkResetIdempotent(t *testing.T) {
	in := NewInput(bytes.NewReader([]byte("abcdefgh")))

	m, err := in.Mark()
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = io.ReadFull(in, buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf))

	// Re-reading from the same mark yields the same bytes.
	for i := 0; i < 3; i++ {
		require.NoError(t, in.Reset(m))
		_, err = io.ReadFull(in, buf)
		require.NoError(t, err)
		require.Equal(t, "abc", string(buf))
	}
}

func TestInputSkipAndBytesPastMark(t *testing.T) {
	in := NewInput(bytes.NewReader([]byte("abcdefgh")))

	m, err := in.Mark()
	require.NoError(t, err)

	require.NoError(t, in.SkipBytes(5))
	past, err := in.BytesPastMark(m)
	require.NoError(t, err)
	require.Equal(t, int64(5), past)

	buf := make([]byte, 1)
	_, err = io.ReadFull(in, buf)
	require.NoError(t, err)
	require.Equal(t, "f", string(buf))

	past, err = in.BytesPastMark(m)
	require.NoError(t, err)
	require.Equal(t, int64(6), past)
}

func TestInputNegativeSkip(t *testing.T) {
	in := NewInput(bytes.NewReader([]byte("abc")))
	require.Error(t, in.SkipBytes(-1))
}

func TestInputCloseOwnership(t *testing.T) {
	borrowed := NewInput(bytes.NewReader([]byte("x")))
	require.NoError(t, borrowed.Close())

	closer := &recordingCloser{}
	owned := NewOwnedInput(bytes.NewReader([]byte("x")), closer)
	require.NoError(t, owned.Close())
	require.NoError(t, owned.Close())
	require.Equal(t, 1, closer.closed, "double close must release the handle once")
}
