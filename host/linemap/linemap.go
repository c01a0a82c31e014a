// Package linemap turns gpiochip line names into the bank and pin numbers
// used by request records.
package linemap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rkws2812/protocol"
)

var (
	// ErrNotChip is returned when a chip name is not of the form gpiochipN.
	ErrNotChip = errors.New("not a gpiochip name")
	// ErrLineNotFound is returned by Lookup when no chip has the line.
	ErrLineNotFound = errors.New("line not found")
)

const chipPrefix = "gpiochip"

// Line is a resolved GPIO line.
type Line struct {
	Name string
	Chip string
	Bank uint32
	Pin  uint32
}

func (l Line) String() string {
	return fmt.Sprintf("%s: %s line %d (bank=%d pin=%d)", l.Name, l.Chip, l.Pin, l.Bank, l.Pin)
}

// ParseChip gives the bank number of a gpiochip. A leading /dev/ is accepted.
// On RK356x and RK3588 gpiochipN is GPIO bank N.
func ParseChip(chip string) (uint32, error) {
	name := strings.TrimPrefix(chip, "/dev/")
	if !strings.HasPrefix(name, chipPrefix) {
		return 0, fmt.Errorf("%w: %q", ErrNotChip, chip)
	}
	n, err := strconv.ParseUint(name[len(chipPrefix):], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotChip, chip)
	}
	if n > protocol.BankMax {
		return 0, fmt.Errorf("%s: %w", chip, protocol.ErrInvalidBank)
	}
	return uint32(n), nil
}

func newLine(name, chip string, offset int) (Line, error) {
	bank, err := ParseChip(chip)
	if err != nil {
		return Line{}, err
	}
	if offset < 0 || offset > protocol.PinMax {
		return Line{}, fmt.Errorf("%s line %d: %w", chip, offset, protocol.ErrInvalidPin)
	}
	return Line{Name: name, Chip: chip, Bank: bank, Pin: uint32(offset)}, nil
}
