package core

import (
	"bytes"
	"testing"

	"rkws2812/protocol"
)

func TestWriteChainRedOnFirstLED(t *testing.T) {
	var tr Trace
	if err := WriteChain(&tr, 1, [3]byte{0xFF, 0x00, 0x00}, protocol.OrderGRB); err != nil {
		t.Fatalf("WriteChain failed: %v", err)
	}
	got, err := tr.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if expected := []byte{0x00, 0xFF, 0x00}; !bytes.Equal(got, expected) {
		t.Errorf("Expected % x, got % x", expected, got)
	}
}

func TestWriteChainZeroFill(t *testing.T) {
	color := [3]byte{0x12, 0x34, 0x56}
	for position := 1; position <= protocol.LEDMax; position++ {
		var tr Trace
		if err := WriteChain(&tr, position, color, protocol.OrderGRB); err != nil {
			t.Fatalf("position %d: WriteChain failed: %v", position, err)
		}
		got, err := tr.Bytes()
		if err != nil {
			t.Fatalf("position %d: %v", position, err)
		}

		zeros := 3 * (position - 1)
		if len(got) != zeros+3 {
			t.Fatalf("position %d: expected %d bytes, got %d", position, zeros+3, len(got))
		}
		for i := 0; i < zeros; i++ {
			if got[i] != 0 {
				t.Errorf("position %d: byte %d expected 0x00, got 0x%02X", position, i, got[i])
			}
		}
		if tail := got[zeros:]; !bytes.Equal(tail, []byte{0x34, 0x12, 0x56}) {
			t.Errorf("position %d: expected GRB 34 12 56, got % x", position, tail)
		}
	}
}

func TestWriteChainResetBounded(t *testing.T) {
	var tr Trace
	if err := WriteChain(&tr, 5, [3]byte{1, 2, 3}, protocol.OrderGRB); err != nil {
		t.Fatalf("WriteChain failed: %v", err)
	}
	prims := tr.Primitives()
	if prims[0] != PrimReset || prims[len(prims)-1] != PrimReset {
		t.Errorf("Expected frame to start and end with reset")
	}
	for i, p := range prims[1 : len(prims)-1] {
		if p == PrimReset {
			t.Errorf("Unexpected reset at pulse %d", i+1)
		}
	}
}

func TestWriteChainIdempotent(t *testing.T) {
	var first, second Trace
	WriteChain(&first, 7, [3]byte{9, 8, 7}, protocol.OrderGRB)
	WriteChain(&second, 7, [3]byte{9, 8, 7}, protocol.OrderGRB)
	a, b := first.Primitives(), second.Primitives()
	if len(a) != len(b) {
		t.Fatalf("Expected identical traces, got %d and %d pulses", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Traces differ at pulse %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestWriteChainRejectsPosition(t *testing.T) {
	for _, position := range []int{0, -1, protocol.LEDMax + 1} {
		var tr Trace
		if err := WriteChain(&tr, position, [3]byte{}, protocol.OrderGRB); err != protocol.ErrInvalidPosition {
			t.Errorf("position %d: expected ErrInvalidPosition, got %v", position, err)
		}
		if n := len(tr.Primitives()); n != 0 {
			t.Errorf("position %d: expected no pulses, got %d", position, n)
		}
	}
}

func TestWriteChainWireOrder(t *testing.T) {
	var tr Trace
	WriteChain(&tr, 1, [3]byte{0xAA, 0xBB, 0xCC}, protocol.OrderRGB)
	got, _ := tr.Bytes()
	if !bytes.Equal(got, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("Expected RGB order, got % x", got)
	}
}
