//go:build linux

package linemap

import (
	"fmt"

	"github.com/warthog618/gpiod"
)

// Lookup searches every gpiochip for a line called name.
func Lookup(name string) (Line, error) {
	for _, chip := range gpiod.Chips() {
		offset, err := findOffset(chip, name)
		if err != nil {
			return Line{}, err
		}
		if offset >= 0 {
			return newLine(name, chip, offset)
		}
	}
	return Line{}, fmt.Errorf("%w: %q", ErrLineNotFound, name)
}

// findOffset returns the offset of the line called name on chip, or -1.
func findOffset(chip, name string) (int, error) {
	c, err := gpiod.NewChip(chip)
	if err != nil {
		return -1, fmt.Errorf("failed to open %s: %w", chip, err)
	}
	defer c.Close()

	for o := 0; o < c.Lines(); o++ {
		info, err := c.LineInfo(o)
		if err != nil {
			return -1, fmt.Errorf("%s line %d: %w", chip, o, err)
		}
		if info.Name == name {
			return o, nil
		}
	}
	return -1, nil
}
