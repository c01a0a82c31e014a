// Package protocol defines the WS2812 request record written by callers and
// the framing used to carry it over a serial link.
package protocol

import "errors"

// Version represents the rkws2812 release
const Version = "0.1.0"

// Request limits
const (
	LEDMax  = 20 // Longest chain a single request may address
	BankMax = 4  // GPIO banks 0-4
	PinMax  = 31 // Pins 0-31 within a bank

	// RequestSize is the encoded size of a Request: three u32 fields, three
	// color bytes and one pad byte.
	RequestSize = 16
)

var (
	// ErrInvalidRequest is wrapped by every validation failure.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidAddress reports a bank or pin that cannot be resolved to a
	// register.
	ErrInvalidAddress = errors.New("invalid address parameters")

	ErrInvalidBank     = wrapErr(ErrInvalidAddress, "bank must be <= 4")
	ErrInvalidPin      = wrapErr(ErrInvalidAddress, "pin must be <= 31")
	ErrInvalidPosition = wrapErr(ErrInvalidRequest, "position must be >= 1 && <= 20")
	ErrShortRequest    = wrapErr(ErrInvalidRequest, "short request record")
)

// sentinel is an error that matches its parent with errors.Is.
type sentinel struct {
	parent error
	msg    string
}

func wrapErr(parent error, msg string) error {
	return &sentinel{parent: parent, msg: msg}
}

func (e *sentinel) Error() string { return e.parent.Error() + ": " + e.msg }

func (e *sentinel) Unwrap() error { return e.parent }
