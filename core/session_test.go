package core

import (
	"errors"
	"testing"

	"rkws2812/protocol"
)

func TestSessionOpenConfiguresPin(t *testing.T) {
	m := newMockMapper()
	b, _ := RK356x.Resolve(3, 26)
	m.reg(b.Dir).value = 0x0000_0001
	m.reg(b.Level).value = 0x0000_0004

	s, err := Open(m, RK356x, 3, 26, DefaultTiming)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if want := uint32(0x0000_0001 | 1<<26 | 1<<10); m.reg(b.Dir).value != want {
		t.Errorf("Expected dir 0x%08X, got 0x%08X", want, m.reg(b.Dir).value)
	}
	if want := uint32(0x0000_0004 | 1<<26 | 1<<10); m.reg(b.Level).value != want {
		t.Errorf("Expected level 0x%08X, got 0x%08X", want, m.reg(b.Level).value)
	}
	if s.Binding() != b {
		t.Errorf("Expected binding %s, got %s", b, s.Binding())
	}
}

func TestSessionOpenRejectsAddress(t *testing.T) {
	m := newMockMapper()
	if _, err := Open(m, RK356x, 9, 0, DefaultTiming); !errors.Is(err, protocol.ErrInvalidAddress) {
		t.Errorf("Expected ErrInvalidAddress, got %v", err)
	}
	if len(m.regs) != 0 {
		t.Errorf("Expected nothing mapped, got %d registers", len(m.regs))
	}
}

func TestSessionOpenMapFailure(t *testing.T) {
	m := newMockMapper()
	b, _ := RK356x.Resolve(1, 2)
	m.fail[b.Level] = true

	_, err := Open(m, RK356x, 1, 2, DefaultTiming)
	if !errors.Is(err, ErrMapFailed) {
		t.Fatalf("Expected ErrMapFailed, got %v", err)
	}
	if !errors.Is(err, errMockMap) {
		t.Errorf("Expected cause to be kept, got %v", err)
	}
	if m.reg(b.Dir).closed != 1 {
		t.Errorf("Expected direction register released once, got %d", m.reg(b.Dir).closed)
	}
	if m.reg(b.Dir).writes != 0 {
		t.Errorf("Expected no writes before both registers were mapped")
	}
}

func TestSessionCloseOnce(t *testing.T) {
	m := newMockMapper()
	s, err := Open(m, RK356x, 2, 3, DefaultTiming)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	b := s.Binding()
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if m.reg(b.Dir).closed != 1 || m.reg(b.Level).closed != 1 {
		t.Errorf("Expected each register released exactly once, got dir=%d level=%d",
			m.reg(b.Dir).closed, m.reg(b.Level).closed)
	}
	if err := s.Write(1, [3]byte{}, protocol.OrderGRB); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestSessionWriteWaveform(t *testing.T) {
	rm := NewRecordingMapper(newMockMapper())
	s, err := Open(rm, RK356x, 3, 26, DefaultTiming)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	b := s.Binding()
	rec := rm.Recorder(b.Level)
	rec.Clear()

	color := [3]byte{0xFF, 0x00, 0x81}
	if err := s.Write(2, color, protocol.OrderGRB); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	phases := rec.Phases(b.Bit, DefaultTiming.Tick)
	if phases[0].High || phases[0].Duration <= ResetMin {
		t.Fatalf("Expected leading reset, got %+v", phases[0])
	}
	last := phases[len(phases)-1]
	if last.High || last.Duration <= ResetMin {
		t.Fatalf("Expected trailing reset, got %+v", last)
	}

	// Decode bits from the high phase widths.
	var got []byte
	var cur byte
	nbits := 0
	for i, ph := range phases {
		if !ph.High {
			continue
		}
		switch {
		case Bit1HighBand.Contains(ph.Duration):
			cur = cur<<1 | 1
			if low := phases[i+1]; !Bit1LowBand.Contains(low.Duration) && i+2 != len(phases) {
				t.Errorf("phase %d: T1L %s out of band", i+1, low.Duration)
			}
		case Bit0HighBand.Contains(ph.Duration):
			cur <<= 1
			if low := phases[i+1]; !Bit0LowBand.Contains(low.Duration) && i+2 != len(phases) {
				t.Errorf("phase %d: T0L %s out of band", i+1, low.Duration)
			}
		default:
			t.Fatalf("phase %d: high time %s matches no bit", i, ph.Duration)
		}
		nbits++
		if nbits%8 == 0 {
			got = append(got, cur)
			cur = 0
		}
	}
	expected := []byte{0, 0, 0, 0x00, 0xFF, 0x81}
	if string(got) != string(expected) {
		t.Errorf("Expected % x on the wire, got % x", expected, got)
	}
}

func TestSessionConsecutiveWritesKeepOtherPins(t *testing.T) {
	m := newMockMapper()
	b, _ := RK356x.Resolve(0, 4)
	const others = 0x0000_8003
	m.reg(b.Level).value = others

	for i := 0; i < 2; i++ {
		s, err := Open(m, RK356x, 0, 4, DefaultTiming)
		if err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		if err := s.Write(1, [3]byte{0xFF, 0xFF, 0xFF}, protocol.OrderGRB); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
		s.Close()

		final := m.reg(b.Level).value
		if final&^(1<<4|1<<(16+4)) != others {
			t.Errorf("write %d: other pins changed: 0x%08X", i, final)
		}
		if final&(1<<4) != 0 {
			t.Errorf("write %d: expected line low after trailing reset", i)
		}
	}
}
