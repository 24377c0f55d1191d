package common

import (
	"fmt"
	"io"
)

// Mark is a re-seekable bookmark into a row input. Row bytes are immutable
// once written, so resetting to a mark and re-reading is idempotent.
type Mark int64

// Input is a positioned view over one row's serialized bytes. Readers
// re-derive their position through marks and absolute skips instead of
// trusting the position to survive between calls, which keeps a handle
// shared with other readers safe to use.
type Input struct {
	rs     io.ReadSeeker
	closer io.Closer
}

// NewInput wraps an already-open ReadSeeker. The caller keeps ownership of
// any underlying handle; Close on the returned input leaves it open.
func NewInput(rs io.ReadSeeker) *Input {
	return &Input{rs: rs}
}

// NewOwnedInput wraps rs and attaches the handle that Close releases.
func NewOwnedInput(rs io.ReadSeeker, c io.Closer) *Input {
	return &Input{rs: rs, closer: c}
}

func (in *Input) Read(p []byte) (int, error) {
	return in.rs.Read(p)
}

// Mark returns a bookmark for the current position.
func (in *Input) Mark() (Mark, error) {
	off, err := in.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return Mark(off), nil
}

// Reset repositions the input to a previously recorded mark.
func (in *Input) Reset(m Mark) error {
	_, err := in.rs.Seek(int64(m), io.SeekStart)
	return err
}

// SkipBytes advances the position by n bytes without reading them.
func (in *Input) SkipBytes(n int64) error {
	if n < 0 {
		return fmt.Errorf("input: negative skip %d", n)
	}
	_, err := in.rs.Seek(n, io.SeekCurrent)
	return err
}

// BytesPastMark reports how far the current position is past m.
func (in *Input) BytesPastMark(m Mark) (int64, error) {
	off, err := in.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return off - int64(m), nil
}

// Close releases the attached handle, if the input owns one.
func (in *Input) Close() error {
	if in.closer == nil {
		return nil
	}
	err := in.closer.Close()
	in.closer = nil
	return err
}
