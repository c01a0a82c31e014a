// Package device exposes the LED driver the way a character device would:
// one opener at a time, fixed-size request records written to it, and the
// pin released on close.
package device

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rkws2812/core"
	"rkws2812/protocol"
)

var (
	// ErrBusy is returned by Open while another user holds the device.
	ErrBusy = errors.New("device busy")
	// ErrNotOpen is returned by Write before Open or after Close.
	ErrNotOpen = errors.New("device not open")
)

// Device serializes chain updates onto one pin at a time.
type Device struct {
	mu      sync.Mutex
	mapper  core.Mapper
	cfg     Config
	log     *zap.Logger
	open    bool
	session *core.Session // binding of the last write, released on Close
}

// New creates a Device that maps its registers through m.
func New(m core.Mapper, opts ...Option) *Device {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Device{
		mapper: m,
		cfg:    cfg,
		log:    cfg.Logger.With(zap.String("platform", cfg.Platform.Name)),
	}
}

// Open claims the device. It fails with ErrBusy if it is already open.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return ErrBusy
	}
	d.open = true
	return nil
}

// Write decodes one request record from p and runs a full chain update. p
// must hold at least protocol.RequestSize bytes; anything past the record is
// ignored.
func (d *Device) Write(p []byte) (int, error) {
	req, err := protocol.DecodeRequest(p)
	if err != nil {
		d.log.Warn("rejected request", zap.Error(err))
		return 0, err
	}
	if err := d.WriteRequest(req); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteRequest validates req and writes it to the chain. Any binding left
// from the previous write is released first, then the pin is mapped afresh.
func (d *Device) WriteRequest(req protocol.Request) error {
	if err := req.Validate(); err != nil {
		d.log.Warn("rejected request", zap.Stringer("request", req), zap.Error(err))
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrNotOpen
	}
	if err := d.releaseLocked(); err != nil {
		return err
	}

	s, err := core.Open(d.mapper, d.cfg.Platform, req.Bank, req.Pin, d.cfg.Timing)
	if err != nil {
		d.log.Error("failed to bind pin", zap.Stringer("request", req), zap.Error(err))
		return fmt.Errorf("bank %d pin %d: %w", req.Bank, req.Pin, err)
	}
	d.log.Debug("pin bound",
		zap.Uint32("bank", req.Bank),
		zap.Uint32("pin", req.Pin),
		zap.Stringer("binding", s.Binding()))

	if err := s.Write(int(req.Position), req.Color, d.cfg.Order); err != nil {
		s.Close()
		return err
	}
	d.session = s
	d.log.Debug("write over", zap.Stringer("request", req))
	return nil
}

// Close releases the pin binding and the device. Closing a closed device is
// a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return d.releaseLocked()
}

func (d *Device) releaseLocked() error {
	if d.session == nil {
		return nil
	}
	err := d.session.Close()
	d.session = nil
	if err != nil {
		d.log.Error("failed to release pin", zap.Error(err))
	}
	return err
}
