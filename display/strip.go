// Package display adapts the LED driver to the tinygo drivers.Displayer
// interface so code written against TinyGo displays can drive it.
//
// The driver lights one LED per frame and darkens every LED before it, so a
// Strip is not a framebuffer: each Display shows only the pixel set last.
package display

import (
	"image/color"

	"tinygo.org/x/drivers"

	"rkws2812/protocol"
)

// RequestWriter is implemented by device.Device.
type RequestWriter interface {
	WriteRequest(r protocol.Request) error
}

// Strip is a 1-pixel-high display over one chain. The driver lights a single
// LED per update and darkens those before it, so only the most recently set
// pixel is shown by Display.
type Strip struct {
	w       RequestWriter
	bank    uint32
	pin     uint32
	pending protocol.Request
	dirty   bool
}

// NewStrip returns a Strip on the chain attached to bank and pin.
func NewStrip(w RequestWriter, bank, pin uint32) *Strip {
	return &Strip{w: w, bank: bank, pin: pin}
}

// Size implements drivers.Displayer.
func (s *Strip) Size() (x, y int16) {
	return protocol.LEDMax, 1
}

// SetPixel implements drivers.Displayer. Pixels outside the strip are
// ignored. Alpha is ignored.
func (s *Strip) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= protocol.LEDMax || y != 0 {
		return
	}
	s.pending = protocol.Request{
		Bank:     s.bank,
		Pin:      s.pin,
		Position: uint32(x) + 1,
		Color:    [3]byte{c.R, c.G, c.B},
	}
	s.dirty = true
}

// Display implements drivers.Displayer. It writes the pixel set last as one
// frame, which darkens all pixels before it; earlier SetPixel calls since the
// previous Display are dropped. It is a no-op when nothing changed.
func (s *Strip) Display() error {
	if !s.dirty {
		return nil
	}
	if err := s.w.WriteRequest(s.pending); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Pixel returns the request for the pixel set last.
func (s *Strip) Pixel() protocol.Request {
	return s.pending
}

var _ drivers.Displayer = (*Strip)(nil)
