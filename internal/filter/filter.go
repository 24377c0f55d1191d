package filter

import (
	"fmt"
	"hash/fnv"
	"io"
	"math"

	"citrine/internal/bitmap"
	"citrine/internal/common"
)

// Filter is a bloom filter over the column names of one row. It can
// definitively say a name is absent; presence answers may be false
// positives, never false negatives.
//
// Filter Region Layout:
//
// ┌──────────────────┐
// │       size       │  uint32 - bytes after this field
// ├──────────────────┤
// │        k         │  uint32 - number of hash functions
// ├──────────────────┤
// │        m         │  uint32 - number of bits
// ├──────────────────┤
// │       bits       │  (m+7)/8 bytes
// └──────────────────┘
//
// The size prefix lets readers that only need the columns behind the
// filter skip the region without decoding it.
type Filter struct {
	bits *bitmap.Bitmap
	k    uint32
	m    uint32
}

// OptimalParams computes bloom filter parameters for n expected names at
// false positive rate p (e.g. 0.01 for 1%).
func OptimalParams(n uint32, p float64) (k uint32, m uint32) {
	if n < 1 {
		n = 1
	}

	// m = -n * ln(p) / (ln(2)^2)
	m = uint32(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))

	// k = (m/n) * ln(2)
	k = uint32(math.Ceil(float64(m) / float64(n) * math.Ln2))

	if k < 1 {
		k = 1
	}
	if m < 1 {
		m = 1
	}
	return k, m
}

// New creates an empty bloom filter with k hash functions over m bits.
func New(k, m uint32) *Filter {
	return &Filter{bits: bitmap.New(m), k: k, m: m}
}

// Add inserts a column name into the filter.
func (f *Filter) Add(name []byte) {
	h1, h2 := f.hash(name)
	for i := uint32(0); i < f.k; i++ {
		pos := uint32((h1 + uint64(i)*h2) % uint64(f.m))
		f.bits.Add(pos)
	}
}

// MayContain returns true if the name might be present in the row.
// Returns false if the name is definitely absent.
func (f *Filter) MayContain(name []byte) bool {
	h1, h2 := f.hash(name)
	for i := uint32(0); i < f.k; i++ {
		pos := uint32((h1 + uint64(i)*h2) % uint64(f.m))
		if !f.bits.Contains(pos) {
			return false
		}
	}
	return true
}

// hash computes two FNV-1a values for double hashing.
func (f *Filter) hash(name []byte) (uint64, uint64) {
	h1 := fnv.New64a()
	h1.Write(name)
	hash1 := h1.Sum64()

	h2 := fnv.New64a()
	h2.Write(name)
	h2.Write([]byte{0x01})
	hash2 := h2.Sum64()

	if hash2 == 0 {
		hash2 = 1
	}
	return hash1, hash2
}

// Write serializes a filter region to w. Returns the bytes written.
func Write(w io.Writer, f *Filter) (int, error) {
	total := 0
	size := uint32(4 + 4 + len(f.bits.Bytes()))

	n, err := common.WriteUint32(w, size)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint32(w, f.k)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint32(w, f.m)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteBytes(w, f.bits.Bytes())
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// Read deserializes a filter region from r.
func Read(r io.Reader) (*Filter, error) {
	size, err := common.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("filter: read region size: %w", err)
	}
	if size < 8 {
		return nil, fmt.Errorf("filter: region size %d too small", size)
	}

	k, err := common.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	m, err := common.ReadUint32(r)
	if err != nil {
		return nil, err
	}

	numBytes := uint64(size - 8)
	if numBytes != uint64((m+7)/8) {
		return nil, fmt.Errorf("filter: region holds %d bit bytes, want %d for m=%d", numBytes, (m+7)/8, m)
	}

	data, err := common.ReadBytes(r, numBytes)
	if err != nil {
		return nil, err
	}

	return &Filter{bits: bitmap.FromBytes(m, data), k: k, m: m}, nil
}

// Skip advances in past the filter region without decoding it.
func Skip(in *common.Input) error {
	size, err := common.ReadUint32(in)
	if err != nil {
		return fmt.Errorf("filter: read region size: %w", err)
	}
	return in.SkipBytes(int64(size))
}
