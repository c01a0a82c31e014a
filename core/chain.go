package core

import (
	"rkws2812/protocol"
)

// WriteChain updates one LED on a chain and leaves every LED before it dark.
//
// The frame is: reset, three zero bytes per upstream LED, the color in wire
// order, reset. position is validated before the first pulse so a rejected
// request never puts a partial waveform on the line. There is no way to
// detect timing drift from here; a bad calibration shows up as wrong colors.
func WriteChain(p PulseGenerator, position int, color [3]byte, order protocol.ColorOrder) error {
	if position < 1 || position > protocol.LEDMax {
		return protocol.ErrInvalidPosition
	}
	wire := order.Wire(color)

	p.Reset()
	for i := 1; i < position; i++ {
		WriteByte(p, 0x00)
		WriteByte(p, 0x00)
		WriteByte(p, 0x00)
	}
	WriteByte(p, wire[0])
	WriteByte(p, wire[1])
	WriteByte(p, wire[2])
	p.Reset()
	return nil
}
