// Package config loads the driver configuration from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rkws2812/core"
	"rkws2812/device"
	"rkws2812/protocol"
)

// Config is the on-disk driver configuration.
type Config struct {
	Platform   string       `json:"platform"`    // rk356x or rk3588
	MemDevice  string       `json:"mem_device"`  // physical memory device
	ColorOrder string       `json:"color_order"` // wire order, grb by default
	Timing     TimingConfig `json:"timing"`
	Serial     SerialConfig `json:"serial"`
}

// TimingConfig holds the pulse calibration. Zero counts take the RK3568
// defaults.
type TimingConfig struct {
	Bit0High int `json:"bit0_high"`
	Bit0Low  int `json:"bit0_low"`
	Bit1High int `json:"bit1_high"`
	Bit1Low  int `json:"bit1_low"`
	ResetUS  int `json:"reset_us"`
	TickNS   int `json:"tick_ns"`
}

// SerialConfig is the UART used by serve and send.
type SerialConfig struct {
	Device string `json:"device"`
	Baud   int    `json:"baud"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// LoadFile reads and parses the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Platform == "" {
		config.Platform = core.RK356x.Name
	}
	if config.MemDevice == "" {
		config.MemDevice = "/dev/mem"
	}
	if config.ColorOrder == "" {
		config.ColorOrder = protocol.OrderGRB.String()
	}

	// Pulse calibration
	t := &config.Timing
	if t.Bit0High == 0 {
		t.Bit0High = core.DefaultTiming.Bit0High
	}
	if t.Bit0Low == 0 {
		t.Bit0Low = core.DefaultTiming.Bit0Low
	}
	if t.Bit1High == 0 {
		t.Bit1High = core.DefaultTiming.Bit1High
	}
	if t.Bit1Low == 0 {
		t.Bit1Low = core.DefaultTiming.Bit1Low
	}
	if t.ResetUS == 0 {
		t.ResetUS = int(core.DefaultTiming.Reset / time.Microsecond)
	}
	if t.TickNS == 0 {
		t.TickNS = int(core.DefaultTiming.Tick / time.Nanosecond)
	}

	if config.Serial.Baud == 0 {
		config.Serial.Baud = 115200
	}
}

// CoreTiming converts the calibration to core.Timing.
func (t TimingConfig) CoreTiming() core.Timing {
	return core.Timing{
		Bit0High: t.Bit0High,
		Bit0Low:  t.Bit0Low,
		Bit1High: t.Bit1High,
		Bit1Low:  t.Bit1Low,
		Reset:    time.Duration(t.ResetUS) * time.Microsecond,
		Tick:     time.Duration(t.TickNS) * time.Nanosecond,
	}
}

// DeviceOptions resolves the platform, calibration and color order into
// device options. Calibrations outside the WS2812 tolerances are rejected.
func (c *Config) DeviceOptions() ([]device.Option, error) {
	platform, err := core.PlatformByName(c.Platform)
	if err != nil {
		return nil, err
	}
	timing := c.Timing.CoreTiming()
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	order, err := protocol.ParseColorOrder(c.ColorOrder)
	if err != nil {
		return nil, err
	}
	return []device.Option{
		device.WithPlatform(platform),
		device.WithTiming(timing),
		device.WithColorOrder(order),
	}, nil
}
