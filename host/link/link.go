// Package link carries request records over a serial line, one frame per
// request and one status frame per reply.
package link

import (
	"errors"
	"fmt"

	"rkws2812/core"
	"rkws2812/device"
	"rkws2812/protocol"
)

var (
	// ErrRejected is returned by Client.Send when the server refused the
	// request as invalid.
	ErrRejected = errors.New("request rejected")
	// ErrRemoteIO is returned when the server could not bind the pin.
	ErrRemoteIO = errors.New("remote register mapping failed")
)

// StatusFor maps a device error to its reply status.
func StatusFor(err error) byte {
	switch {
	case err == nil:
		return protocol.StatusOK
	case errors.Is(err, protocol.ErrInvalidRequest), errors.Is(err, protocol.ErrInvalidAddress):
		return protocol.StatusInvalid
	case errors.Is(err, device.ErrBusy), errors.Is(err, device.ErrNotOpen):
		return protocol.StatusBusy
	case errors.Is(err, core.ErrMapFailed):
		return protocol.StatusIOError
	}
	return protocol.StatusIOError
}

// statusError is the client side inverse of StatusFor.
func statusError(status byte) error {
	switch status {
	case protocol.StatusOK:
		return nil
	case protocol.StatusInvalid:
		return ErrRejected
	case protocol.StatusBusy:
		return device.ErrBusy
	case protocol.StatusIOError:
		return ErrRemoteIO
	}
	return fmt.Errorf("unknown reply status %d", status)
}
