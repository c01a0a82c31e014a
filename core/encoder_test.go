package core

import "testing"

func TestWriteByteAllValues(t *testing.T) {
	var tr Trace
	for v := 0; v < 256; v++ {
		tr.Clear()
		WriteByte(&tr, byte(v))

		prims := tr.Primitives()
		if len(prims) != 8 {
			t.Fatalf("value 0x%02X: expected 8 pulses, got %d", v, len(prims))
		}
		for i, p := range prims {
			want := PrimBit0
			if v&(1<<(7-i)) != 0 {
				want = PrimBit1
			}
			if p != want {
				t.Errorf("value 0x%02X pulse %d: expected %s, got %s", v, i, want, p)
			}
		}
	}
}
