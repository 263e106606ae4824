// Package bitio provides sub-byte packing for the 32-byte PackedBoard
// format (spec.md §3): 32 four-bit piece codes packed two-per-byte.
//
// The accumulate-then-flush technique (hold bits in a register, flush
// whole bytes out, track how many bits are "used") is the same shape as
// the teacher codec's VP8L bit writer/reader; here the unit is a 4-bit
// nibble rather than an arbitrary bit run, because PackedBoard never
// needs anything finer than nibble granularity.
package bitio

// NibbleWriter packs 4-bit values two-per-byte, low nibble first, into a
// fixed-size destination buffer — the `pieces` field of PackedBoard is
// exactly 32 such nibbles in 16 bytes.
type NibbleWriter struct {
	dst     []byte
	pending uint8 // low nibble held until its high-nibble partner arrives
	have    bool
	pos     int
}

// NewNibbleWriter wraps dst, which must have enough capacity for the
// nibbles that will be written (len(dst)*2).
func NewNibbleWriter(dst []byte) *NibbleWriter {
	return &NibbleWriter{dst: dst}
}

// WriteNibble appends one 4-bit value (only the low 4 bits of v are used).
func (w *NibbleWriter) WriteNibble(v uint8) {
	v &= 0x0f
	if !w.have {
		w.pending = v
		w.have = true
		return
	}
	w.dst[w.pos] = w.pending | (v << 4)
	w.pos++
	w.have = false
}

// Flush writes a trailing half-filled byte, if any (the high nibble reads
// back as zero). PackedBoard writes one nibble per occupied square, so the
// count is odd whenever an odd number of squares is occupied; Pack calls
// Flush so that last nibble reaches the buffer.
func (w *NibbleWriter) Flush() {
	if w.have {
		w.dst[w.pos] = w.pending
		w.pos++
		w.have = false
	}
}

// NibbleReader reads back what NibbleWriter wrote.
type NibbleReader struct {
	src []byte
	idx int // nibble index, 0-based
}

// NewNibbleReader wraps src for nibble-at-a-time reads.
func NewNibbleReader(src []byte) *NibbleReader {
	return &NibbleReader{src: src}
}

// ReadNibble returns the next 4-bit value.
func (r *NibbleReader) ReadNibble() uint8 {
	b := r.src[r.idx/2]
	var v uint8
	if r.idx%2 == 0 {
		v = b & 0x0f
	} else {
		v = b >> 4
	}
	r.idx++
	return v
}

// Len returns the number of nibbles available in the wrapped buffer.
func (r *NibbleReader) Len() int { return len(r.src) * 2 }
