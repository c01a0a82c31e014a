package core

import (
	"errors"
	"fmt"
	"time"
)

// Primitive is one entry of a Trace
type Primitive uint8

const (
	PrimReset Primitive = iota
	PrimBit0
	PrimBit1
)

func (p Primitive) String() string {
	switch p {
	case PrimReset:
		return "reset"
	case PrimBit0:
		return "0"
	case PrimBit1:
		return "1"
	}
	return fmt.Sprintf("Primitive(%d)", uint8(p))
}

// ErrMalformedTrace is returned when a trace is not one reset-bounded frame.
var ErrMalformedTrace = errors.New("malformed trace")

// Trace is a PulseGenerator that records primitives instead of touching
// hardware.
type Trace struct {
	prims []Primitive
}

func (t *Trace) Bit0() { t.prims = append(t.prims, PrimBit0) }
func (t *Trace) Bit1() { t.prims = append(t.prims, PrimBit1) }
func (t *Trace) Reset() { t.prims = append(t.prims, PrimReset) }

// Primitives returns everything recorded so far.
func (t *Trace) Primitives() []Primitive {
	return t.prims
}

// Clear drops the recording.
func (t *Trace) Clear() {
	t.prims = t.prims[:0]
}

// Bytes decodes a single frame: a reset, whole bytes of bit pulses sent MSB
// first, and a closing reset with no reset in between.
func (t *Trace) Bytes() ([]byte, error) {
	n := len(t.prims)
	if n < 2 || t.prims[0] != PrimReset || t.prims[n-1] != PrimReset {
		return nil, fmt.Errorf("%w: frame must start and end with a reset", ErrMalformedTrace)
	}
	bits := t.prims[1 : n-1]
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bit pulses is not whole bytes", ErrMalformedTrace, len(bits))
	}
	out := make([]byte, 0, len(bits)/8)
	var b byte
	for i, p := range bits {
		switch p {
		case PrimBit1:
			b = b<<1 | 1
		case PrimBit0:
			b <<= 1
		default:
			return nil, fmt.Errorf("%w: %s at pulse %d", ErrMalformedTrace, p, i+1)
		}
		if i%8 == 7 {
			out = append(out, b)
			b = 0
		}
	}
	return out, nil
}

// Sample is one recorded register access: a write, or a hold after it.
type Sample struct {
	Value uint32
	Hold  time.Duration // zero for plain writes
}

// Phase is a run of constant line level.
type Phase struct {
	High     bool
	Writes   int
	Duration time.Duration // Writes*tick plus any holds
}

// WaveformRecorder wraps a register and records every word written to it.
// It implements Hold so a RegisterPulser records reset time rather than
// spinning.
type WaveformRecorder struct {
	MappedRegister
	samples []Sample
}

// NewWaveformRecorder records writes before passing them to inner.
func NewWaveformRecorder(inner MappedRegister) *WaveformRecorder {
	return &WaveformRecorder{MappedRegister: inner}
}

func (w *WaveformRecorder) Write(v uint32) {
	w.samples = append(w.samples, Sample{Value: v})
	w.MappedRegister.Write(v)
}

// Hold records a low hold of d following the last write.
func (w *WaveformRecorder) Hold(d time.Duration) {
	var v uint32
	if n := len(w.samples); n > 0 {
		v = w.samples[n-1].Value
	}
	w.samples = append(w.samples, Sample{Value: v, Hold: d})
}

// Samples returns every recorded access.
func (w *WaveformRecorder) Samples() []Sample {
	return w.samples
}

// Clear drops the recording.
func (w *WaveformRecorder) Clear() {
	w.samples = w.samples[:0]
}

// Phases folds the recording into runs of constant level on bit, estimating
// each run's length as one tick per write.
func (w *WaveformRecorder) Phases(bit uint, tick time.Duration) []Phase {
	var out []Phase
	mask := uint32(1) << bit
	for _, s := range w.samples {
		high := s.Value&mask != 0
		if len(out) == 0 || out[len(out)-1].High != high {
			out = append(out, Phase{High: high})
		}
		ph := &out[len(out)-1]
		if s.Hold > 0 {
			ph.Duration += s.Hold
			continue
		}
		ph.Writes++
		ph.Duration += tick
	}
	return out
}

// RecordingMapper wraps every register it maps in a WaveformRecorder.
type RecordingMapper struct {
	Mapper
	recorders map[uint64]*WaveformRecorder
}

// NewRecordingMapper records through m.
func NewRecordingMapper(m Mapper) *RecordingMapper {
	return &RecordingMapper{Mapper: m, recorders: make(map[uint64]*WaveformRecorder)}
}

func (r *RecordingMapper) Map(addr uint64) (MappedRegister, error) {
	reg, err := r.Mapper.Map(addr)
	if err != nil {
		return nil, err
	}
	rec := NewWaveformRecorder(reg)
	r.recorders[addr] = rec
	return rec, nil
}

// Recorder returns the recorder of the most recent mapping of addr.
func (r *RecordingMapper) Recorder(addr uint64) *WaveformRecorder {
	return r.recorders[addr]
}
