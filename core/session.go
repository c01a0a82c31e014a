package core

import (
	"errors"
	"fmt"

	"rkws2812/protocol"
)

// Session owns the registers of one pin for the length of a chain update.
// Sessions are not safe for concurrent use and only one should be live per
// pin at a time.
type Session struct {
	binding Binding
	dir     MappedRegister // nil once released
	level   MappedRegister // nil once released
	pulser  *RegisterPulser
}

// Open resolves bank and pin on platform, maps both registers and configures
// the pin as an output idling high. Nothing is left mapped on failure.
func Open(m Mapper, platform Platform, bank, pin uint32, t Timing) (*Session, error) {
	b, err := platform.Resolve(bank, pin)
	if err != nil {
		return nil, err
	}

	s := &Session{binding: b}
	if s.dir, err = m.Map(b.Dir); err != nil {
		return nil, fmt.Errorf("%w: direction register 0x%X: %w", ErrMapFailed, b.Dir, err)
	}
	if s.level, err = m.Map(b.Level); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: level register 0x%X: %w", ErrMapFailed, b.Level, err)
	}

	MaskedSet(s.dir, b.Bit, true)
	shadow := MaskedSet(s.level, b.Bit, true)
	s.pulser = NewRegisterPulser(s.level, b.Bit, shadow, t)
	return s, nil
}

// Binding returns the resolved register addresses.
func (s *Session) Binding() Binding {
	return s.binding
}

// Write runs one complete chain update. Once the first reset is on the line
// the frame always runs to the trailing reset.
func (s *Session) Write(position int, color [3]byte, order protocol.ColorOrder) error {
	if s.level == nil {
		return ErrClosed
	}
	if position < 1 || position > protocol.LEDMax {
		return protocol.ErrInvalidPosition
	}
	enterCritical()
	defer exitCritical()
	return WriteChain(s.pulser, position, color, order)
}

// Close releases both registers. It is safe to call more than once; only the
// first call unmaps.
func (s *Session) Close() error {
	var errs []error
	if s.level != nil {
		errs = append(errs, s.level.Close())
		s.level = nil
	}
	if s.dir != nil {
		errs = append(errs, s.dir.Close())
		s.dir = nil
	}
	s.pulser = nil
	return errors.Join(errs...)
}
