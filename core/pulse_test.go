package core

import (
	"testing"
	"time"
)

func newRecordedPulser(shadow uint32, bit uint) (*RegisterPulser, *WaveformRecorder) {
	rec := NewWaveformRecorder(&mockRegister{value: shadow})
	return NewRegisterPulser(rec, bit, shadow, DefaultTiming), rec
}

func TestPulsePhases(t *testing.T) {
	tick := DefaultTiming.Tick
	testCases := []struct {
		name      string
		emit      func(p *RegisterPulser)
		high, low Band
	}{
		{"bit0", (*RegisterPulser).Bit0, Bit0HighBand, Bit0LowBand},
		{"bit1", (*RegisterPulser).Bit1, Bit1HighBand, Bit1LowBand},
	}

	for _, tc := range testCases {
		p, rec := newRecordedPulser(0, 5)
		tc.emit(p)
		phases := rec.Phases(5, tick)
		if len(phases) != 2 {
			t.Fatalf("%s: expected 2 phases, got %+v", tc.name, phases)
		}
		if !phases[0].High || phases[1].High {
			t.Errorf("%s: expected high then low, got %+v", tc.name, phases)
		}
		if !tc.high.Contains(phases[0].Duration) {
			t.Errorf("%s: high phase %s outside %s-%s", tc.name, phases[0].Duration, tc.high.Min, tc.high.Max)
		}
		if !tc.low.Contains(phases[1].Duration) {
			t.Errorf("%s: low phase %s outside %s-%s", tc.name, phases[1].Duration, tc.low.Min, tc.low.Max)
		}
	}
}

func TestResetHoldsLow(t *testing.T) {
	p, rec := newRecordedPulser(1<<3, 3)
	p.Reset()
	phases := rec.Phases(3, DefaultTiming.Tick)
	if len(phases) != 1 || phases[0].High {
		t.Fatalf("Expected one low phase, got %+v", phases)
	}
	if phases[0].Duration <= ResetMin {
		t.Errorf("Reset low of %s does not exceed %s", phases[0].Duration, ResetMin)
	}
}

func TestPulsePreservesOtherBits(t *testing.T) {
	const others = 0x00F0_0F01 &^ (1 << 9)
	p, rec := newRecordedPulser(others, 9)
	p.Reset()
	p.Bit1()
	p.Bit0()
	p.Reset()
	for i, s := range rec.Samples() {
		if s.Value&^(1<<9) != others {
			t.Fatalf("sample %d: other bits changed: 0x%08X", i, s.Value)
		}
	}
	if p.Shadow() != others {
		t.Errorf("Expected shadow 0x%08X after reset, got 0x%08X", uint32(others), p.Shadow())
	}
}

func TestSpinWaits(t *testing.T) {
	start := time.Now()
	spin(200 * time.Microsecond)
	if elapsed := time.Since(start); elapsed < 200*time.Microsecond {
		t.Errorf("spin returned after %s", elapsed)
	}
}
