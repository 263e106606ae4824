package bitio

import "testing"

func TestNibbleRoundTrip(t *testing.T) {
	dst := make([]byte, 16)
	w := NewNibbleWriter(dst)
	var want [32]uint8
	for i := range want {
		want[i] = uint8(i*5+3) & 0x0f
		w.WriteNibble(want[i])
	}
	w.Flush()

	r := NewNibbleReader(dst)
	if r.Len() != 32 {
		t.Fatalf("Len() = %d, want 32", r.Len())
	}
	for i, wantVal := range want {
		got := r.ReadNibble()
		if got != wantVal {
			t.Errorf("nibble %d = %d, want %d", i, got, wantVal)
		}
	}
}

func TestNibbleWriterPacksTwoPerByte(t *testing.T) {
	dst := make([]byte, 1)
	w := NewNibbleWriter(dst)
	w.WriteNibble(0x3)
	w.WriteNibble(0xa)
	if dst[0] != 0xa3 {
		t.Errorf("dst[0] = %#x, want 0xa3", dst[0])
	}
}
