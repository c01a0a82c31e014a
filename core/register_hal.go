package core

import (
	"errors"
	"io"
)

// Register is one 32-bit memory-mapped hardware register.
// Implementations must not coalesce or drop repeated writes of the same value.
type Register interface {
	// Read returns the current register word
	Read() uint32

	// Write stores a full register word
	Write(v uint32)
}

// MappedRegister is a Register that owns its mapping.
// Close releases the mapping; calling it again is a no-op.
type MappedRegister interface {
	Register
	io.Closer
}

// Mapper maps physical register addresses into the process.
// Platform-specific implementations handle the actual mapping.
type Mapper interface {
	// Map returns a handle on the 32-bit register at a physical address.
	// Returns error if the address is out of range or already in use.
	Map(addr uint64) (MappedRegister, error)
}

var (
	// ErrMapFailed wraps any failure to acquire a register mapping.
	ErrMapFailed = errors.New("register mapping failed")
	// ErrClosed is returned by operations on a released session.
	ErrClosed = errors.New("session closed")
)

// writeEnableShift is the distance from a pin's bit to its write-enable bit.
// Registers of this family ignore the low half bit unless its mask bit in the
// high half is set in the same write.
const writeEnableShift = 16

// MaskedSet sets or clears one pin bit with the masked-write convention and
// returns the word written. Bits of other pins are preserved.
func MaskedSet(r Register, bit uint, high bool) uint32 {
	v := r.Read()
	v |= 1 << (writeEnableShift + bit)
	if high {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	r.Write(v)
	return v
}
