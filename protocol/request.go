package protocol

import (
	"encoding/binary"
	"fmt"
)

// Request selects one LED on a chain hanging off a GPIO pin and the color to
// give it. Color is stored R, G, B; the wire order is decided at write time.
type Request struct {
	Bank     uint32  // GPIO bank (gpiochip) number
	Pin      uint32  // Pin within the bank
	Position uint32  // 1-based LED position, 1 is nearest the pin
	Color    [3]byte // R, G, B
}

// Validate checks the request fields against the bank, pin and chain limits.
// Fields are unsigned so only upper bounds and the position floor apply.
func (r Request) Validate() error {
	if r.Bank > BankMax {
		return ErrInvalidBank
	}
	if r.Pin > PinMax {
		return ErrInvalidPin
	}
	if r.Position < 1 || r.Position > LEDMax {
		return ErrInvalidPosition
	}
	return nil
}

// MarshalBinary encodes the request in its fixed little-endian layout.
func (r Request) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RequestSize)
	binary.LittleEndian.PutUint32(buf[0:], r.Bank)
	binary.LittleEndian.PutUint32(buf[4:], r.Pin)
	binary.LittleEndian.PutUint32(buf[8:], r.Position)
	copy(buf[12:15], r.Color[:])
	return buf, nil
}

// UnmarshalBinary decodes a request record. Trailing bytes past RequestSize
// are ignored; the pad byte is never inspected.
func (r *Request) UnmarshalBinary(data []byte) error {
	if len(data) < RequestSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortRequest, len(data), RequestSize)
	}
	r.Bank = binary.LittleEndian.Uint32(data[0:])
	r.Pin = binary.LittleEndian.Uint32(data[4:])
	r.Position = binary.LittleEndian.Uint32(data[8:])
	copy(r.Color[:], data[12:15])
	return nil
}

// DecodeRequest decodes and validates a request record.
func DecodeRequest(data []byte) (Request, error) {
	var r Request
	if err := r.UnmarshalBinary(data); err != nil {
		return Request{}, err
	}
	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (r Request) String() string {
	return fmt.Sprintf("bank=%d pin=%d led=%d color=%02x%02x%02x",
		r.Bank, r.Pin, r.Position, r.Color[0], r.Color[1], r.Color[2])
}
