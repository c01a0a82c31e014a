package display

import (
	"errors"
	"image/color"
	"testing"

	"rkws2812/protocol"
)

type mockWriter struct {
	reqs []protocol.Request
	err  error
}

func (m *mockWriter) WriteRequest(r protocol.Request) error {
	if m.err != nil {
		return m.err
	}
	m.reqs = append(m.reqs, r)
	return nil
}

func TestStripSize(t *testing.T) {
	x, y := NewStrip(&mockWriter{}, 3, 26).Size()
	if x != protocol.LEDMax || y != 1 {
		t.Errorf("Expected %dx1, got %dx%d", protocol.LEDMax, x, y)
	}
}

func TestStripDisplay(t *testing.T) {
	w := &mockWriter{}
	s := NewStrip(w, 3, 26)

	s.SetPixel(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	s.SetPixel(4, 0, color.RGBA{G: 0x10, B: 0x20, A: 0xFF})
	s.SetPixel(protocol.LEDMax, 0, color.RGBA{R: 1})
	s.SetPixel(1, 1, color.RGBA{R: 1})
	if err := s.Display(); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	if err := s.Display(); err != nil {
		t.Fatalf("second Display failed: %v", err)
	}

	if len(w.reqs) != 1 {
		t.Fatalf("Expected 1 write, got %d", len(w.reqs))
	}
	want := protocol.Request{Bank: 3, Pin: 26, Position: 5, Color: [3]byte{0, 0x10, 0x20}}
	if w.reqs[0] != want {
		t.Errorf("Expected %v, got %v", want, w.reqs[0])
	}
}

func TestStripDisplayError(t *testing.T) {
	w := &mockWriter{err: errors.New("boom")}
	s := NewStrip(w, 0, 0)
	s.SetPixel(0, 0, color.RGBA{R: 1})
	if err := s.Display(); err == nil {
		t.Fatal("Expected error")
	}
	w.err = nil
	if err := s.Display(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(w.reqs) != 1 {
		t.Errorf("Expected the failed pixel to be retried, got %d writes", len(w.reqs))
	}
}
