package bitmap

import "fmt"

// Bitmap is a fixed-size bit set. It backs the per-row bloom filter; the
// filter region codec carries the bit data, so the bitmap itself has no
// serialized form.
type Bitmap struct {
	data    []byte // each byte stores 8 bits
	numBits uint32
}

// New creates a bitmap with the given number of bits, all zero.
func New(numBits uint32) *Bitmap {
	return &Bitmap{
		data:    make([]byte, (numBits+7)/8),
		numBits: numBits,
	}
}

// FromBytes reconstructs a bitmap over previously serialized bit data.
// Short data is padded with zero bytes to the required size.
func FromBytes(numBits uint32, data []byte) *Bitmap {
	numBytes := (numBits + 7) / 8
	if uint32(len(data)) < numBytes {
		padded := make([]byte, numBytes)
		copy(padded, data)
		data = padded
	}
	return &Bitmap{data: data, numBits: numBits}
}

// Add sets the bit at position i.
func (b *Bitmap) Add(i uint32) {
	if i >= b.numBits {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.numBits))
	}
	b.data[i/8] |= 1 << (i % 8)
}

// Contains reports whether the bit at position i is set.
func (b *Bitmap) Contains(i uint32) bool {
	if i >= b.numBits {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.numBits))
	}
	return b.data[i/8]&(1<<(i%8)) != 0
}

// Bytes returns the backing byte array.
func (b *Bitmap) Bytes() []byte {
	return b.data
}

// NumBits returns the capacity of the bitmap in bits.
func (b *Bitmap) NumBits() uint32 {
	return b.numBits
}
