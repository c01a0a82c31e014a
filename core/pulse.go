package core

import "time"

// PulseGenerator emits the three WS2812 line primitives.
// Implementations must run to completion without blocking or yielding.
type PulseGenerator interface {
	// Bit0 emits a short high followed by a long low
	Bit0()

	// Bit1 emits a long high followed by a short low
	Bit1()

	// Reset holds the line low long enough for the chain to latch
	Reset()
}

// holder is implemented by registers that account for hold time themselves
// instead of having the pulser spin, such as WaveformRecorder.
type holder interface {
	Hold(d time.Duration)
}

// RegisterPulser shapes pulses by repeating writes to a level register.
type RegisterPulser struct {
	reg    Register
	mask   uint32
	shadow uint32 // last word issued to reg
	timing Timing
	hold   func(time.Duration)
}

// NewRegisterPulser drives bit of reg. shadow is the register word to build
// on; other pins' bits in it are reissued untouched on every write.
func NewRegisterPulser(reg Register, bit uint, shadow uint32, t Timing) *RegisterPulser {
	p := &RegisterPulser{
		reg:    reg,
		mask:   1 << bit,
		shadow: shadow,
		timing: t,
		hold:   spin,
	}
	if h, ok := reg.(holder); ok {
		p.hold = h.Hold
	}
	return p
}

// Shadow returns the last word written to the level register.
func (p *RegisterPulser) Shadow() uint32 {
	return p.shadow
}

func (p *RegisterPulser) Bit0() {
	p.pulse(p.timing.Bit0High, p.timing.Bit0Low)
}

func (p *RegisterPulser) Bit1() {
	p.pulse(p.timing.Bit1High, p.timing.Bit1Low)
}

func (p *RegisterPulser) Reset() {
	p.shadow &^= p.mask
	p.reg.Write(p.shadow)
	p.hold(p.timing.Reset)
}

func (p *RegisterPulser) pulse(high, low int) {
	p.shadow |= p.mask
	for i := 0; i < high; i++ {
		p.reg.Write(p.shadow)
	}
	p.shadow &^= p.mask
	for i := 0; i < low; i++ {
		p.reg.Write(p.shadow)
	}
}

// spin busy-waits for d. It never sleeps so the goroutine keeps its thread.
func spin(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
