package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ColorOrder is the order the three color channels are shifted onto the
// wire. WS2812 parts expect green first.
type ColorOrder uint8

const (
	OrderGRB ColorOrder = iota // WS2812, WS2812B
	OrderRGB
	OrderBRG
	OrderRBG
	OrderGBR
	OrderBGR
)

// channel indices into an R, G, B triple, per order
var orderIndex = [...][3]uint8{
	OrderGRB: {1, 0, 2},
	OrderRGB: {0, 1, 2},
	OrderBRG: {2, 0, 1},
	OrderRBG: {0, 2, 1},
	OrderGBR: {1, 2, 0},
	OrderBGR: {2, 1, 0},
}

const orderName = "GRBRGBBRGRBGGBRBGR"

func (o ColorOrder) String() string {
	if int(o) >= len(orderIndex) {
		return fmt.Sprintf("ColorOrder(%d)", o)
	}
	return orderName[3*o : 3*o+3]
}

// Wire reorders an R, G, B triple into transmission order.
func (o ColorOrder) Wire(c [3]byte) [3]byte {
	if int(o) >= len(orderIndex) {
		o = OrderGRB
	}
	idx := orderIndex[o]
	return [3]byte{c[idx[0]], c[idx[1]], c[idx[2]]}
}

// ParseColorOrder parses names like "grb" or "RGB". The empty string is GRB.
func ParseColorOrder(s string) (ColorOrder, error) {
	if s == "" {
		return OrderGRB, nil
	}
	s = strings.ToUpper(s)
	for i := range orderIndex {
		if ColorOrder(i).String() == s {
			return ColorOrder(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color order %q", s)
}

// ParseColor parses a 6 digit hex color, with or without a leading '#'.
func ParseColor(s string) ([3]byte, error) {
	var c [3]byte
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return c, fmt.Errorf("color %q must be 6 hex digits", s)
	}
	if _, err := hex.Decode(c[:], []byte(s)); err != nil {
		return c, fmt.Errorf("color %q: %w", s, err)
	}
	return c, nil
}
