package device

import (
	"go.uber.org/zap"

	"rkws2812/core"
	"rkws2812/protocol"
)

// Config holds the device configuration.
type Config struct {
	// Platform selects the bank base address table
	Platform core.Platform

	// Timing holds the pulse repetition counts for the platform
	Timing core.Timing

	// Order is the wire order of the color channels
	Order protocol.ColorOrder

	// Logger receives request and binding logs (optional)
	Logger *zap.Logger
}

func defaultConfig() Config {
	return Config{
		Platform: core.RK356x,
		Timing:   core.DefaultTiming,
		Order:    protocol.OrderGRB,
		Logger:   zap.NewNop(),
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithPlatform selects the SoC register layout.
func WithPlatform(p core.Platform) Option {
	return func(c *Config) {
		c.Platform = p
	}
}

// WithTiming overrides the pulse calibration.
func WithTiming(t core.Timing) Option {
	return func(c *Config) {
		c.Timing = t
	}
}

// WithColorOrder changes the channel order on the wire. Most WS2812 parts
// want GRB, some clones want RGB.
func WithColorOrder(o protocol.ColorOrder) Option {
	return func(c *Config) {
		c.Order = o
	}
}

// WithLogger sets a logger for device operations.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}
