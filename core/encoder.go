package core

// WriteByte emits the eight bits of b, most significant first.
func WriteByte(p PulseGenerator, b byte) {
	for i := 0; i < 8; i++ {
		if (b<<i)&0x80 != 0 {
			p.Bit1()
		} else {
			p.Bit0()
		}
	}
}
