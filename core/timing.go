package core

import (
	"errors"
	"fmt"
	"time"
)

// Band is an inclusive tolerance window for one pulse phase.
type Band struct {
	Min, Max time.Duration
}

// Contains reports whether d falls inside the band.
func (b Band) Contains(d time.Duration) bool {
	return d >= b.Min && d <= b.Max
}

// WS2812 phase tolerances
var (
	Bit0HighBand = Band{220 * time.Nanosecond, 380 * time.Nanosecond}
	Bit0LowBand  = Band{580 * time.Nanosecond, 1600 * time.Nanosecond}
	Bit1HighBand = Band{580 * time.Nanosecond, 1000 * time.Nanosecond}
	Bit1LowBand  = Band{220 * time.Nanosecond, 420 * time.Nanosecond}

	// ResetMin is the low time after which the chain latches.
	ResetMin = 280 * time.Microsecond
)

// ErrTimingBand reports repetition counts that miss a tolerance window.
var ErrTimingBand = errors.New("pulse timing outside WS2812 tolerance")

// Timing holds the per-platform repetition counts of each pulse phase.
//
// Pulses are shaped by writing the same level word several times in a row;
// each write costs roughly one Tick. The counts are calibration constants:
// Tick moves with CPU clock, bus latency and compiler output, so every target
// board needs its own values. Use Calibrate and SuggestTiming to derive them.
type Timing struct {
	Bit0High int // writes holding the line high for a 0 bit
	Bit0Low  int // writes holding the line low for a 0 bit
	Bit1High int // writes holding the line high for a 1 bit
	Bit1Low  int // writes holding the line low for a 1 bit

	Reset time.Duration // low hold that separates frames
	Tick  time.Duration // measured cost of one register write
}

// DefaultTiming is calibrated on an RK3568 at 1.992GHz where an uncached
// write to the GPIO block costs about 100ns:
//
//	T0H 3 writes ~300ns   T0L 8 writes ~800ns
//	T1H 8 writes ~800ns   T1L 3 writes ~300ns
var DefaultTiming = Timing{
	Bit0High: 3,
	Bit0Low:  8,
	Bit1High: 8,
	Bit1Low:  3,
	Reset:    300 * time.Microsecond,
	Tick:     100 * time.Nanosecond,
}

// Validate checks the counts against the tolerance windows using Tick.
func (t Timing) Validate() error {
	if t.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", ErrTimingBand)
	}
	phases := []struct {
		name string
		n    int
		band Band
	}{
		{"T0H", t.Bit0High, Bit0HighBand},
		{"T0L", t.Bit0Low, Bit0LowBand},
		{"T1H", t.Bit1High, Bit1HighBand},
		{"T1L", t.Bit1Low, Bit1LowBand},
	}
	for _, p := range phases {
		if p.n < 1 {
			return fmt.Errorf("%w: %s needs at least one write", ErrTimingBand, p.name)
		}
		if d := time.Duration(p.n) * t.Tick; !p.band.Contains(d) {
			return fmt.Errorf("%w: %s is %d writes (%s), want %s-%s",
				ErrTimingBand, p.name, p.n, d, p.band.Min, p.band.Max)
		}
	}
	if t.Reset <= ResetMin {
		return fmt.Errorf("%w: reset %s must exceed %s", ErrTimingBand, t.Reset, ResetMin)
	}
	return nil
}

// SuggestTiming picks, for a measured tick, the write counts closest to the
// middle of each tolerance window.
func SuggestTiming(tick time.Duration) (Timing, error) {
	t := Timing{Reset: DefaultTiming.Reset, Tick: tick}
	if tick <= 0 {
		return t, fmt.Errorf("%w: tick must be positive", ErrTimingBand)
	}
	var ok bool
	for _, p := range []struct {
		n    *int
		band Band
	}{
		{&t.Bit0High, Bit0HighBand},
		{&t.Bit0Low, Bit0LowBand},
		{&t.Bit1High, Bit1HighBand},
		{&t.Bit1Low, Bit1LowBand},
	} {
		if *p.n, ok = bandCount(p.band, tick); !ok {
			return t, fmt.Errorf("%w: tick %s is too coarse for %s-%s", ErrTimingBand, tick, p.band.Min, p.band.Max)
		}
	}
	return t, nil
}

// bandCount returns the write count whose duration is nearest the band
// center, if any count fits.
func bandCount(b Band, tick time.Duration) (int, bool) {
	lo := int((b.Min + tick - 1) / tick)
	hi := int(b.Max / tick)
	if lo < 1 {
		lo = 1
	}
	if lo > hi {
		return 0, false
	}
	mid := (b.Min + b.Max) / 2
	best := lo
	for n := lo + 1; n <= hi; n++ {
		if absDuration(time.Duration(n)*tick-mid) < absDuration(time.Duration(best)*tick-mid) {
			best = n
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
