//go:build linux

package regmap

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"rkws2812/core"
)

// DefaultDevice is the physical memory device.
const DefaultDevice = "/dev/mem"

// DevMem maps registers out of physical memory. It needs CAP_SYS_RAWIO and a
// kernel that does not restrict /dev/mem for the GPIO range.
type DevMem struct {
	f        *os.File
	pageSize uint64
	claims   claims
}

// OpenDevMem opens path (normally /dev/mem) for synchronous, uncached access.
func OpenDevMem(path string) (*DevMem, error) {
	if path == "" {
		path = DefaultDevice
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &DevMem{f: f, pageSize: uint64(unix.Getpagesize())}, nil
}

// Map maps the page holding addr and returns a handle on the word at addr.
func (d *DevMem) Map(addr uint64) (core.MappedRegister, error) {
	if addr&3 != 0 {
		return nil, fmt.Errorf("0x%X: %w", addr, ErrUnaligned)
	}
	if err := d.claims.claim(addr); err != nil {
		return nil, fmt.Errorf("0x%X: %w", addr, err)
	}
	base := addr &^ (d.pageSize - 1)
	mem, err := unix.Mmap(int(d.f.Fd()), int64(base), int(d.pageSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		d.claims.release(addr)
		return nil, fmt.Errorf("failed to mmap 0x%X: %w", base, err)
	}
	off := addr - base
	return &Handle{
		word: word{p: (*uint32)(unsafe.Pointer(&mem[off]))},
		release: func() error {
			defer d.claims.release(addr)
			return unix.Munmap(mem)
		},
	}, nil
}

// Live returns how many handles are still mapped.
func (d *DevMem) Live() int {
	return d.claims.count()
}

// Close closes the device. Handles already mapped stay valid until closed.
func (d *DevMem) Close() error {
	return d.f.Close()
}

// Handle owns the mapping of one register.
type Handle struct {
	word
	once    sync.Once
	release func() error
	err     error
}

// Close unmaps the register. Only the first call does anything; the handle
// must not be used afterwards.
func (h *Handle) Close() error {
	h.once.Do(func() {
		h.err = h.release()
	})
	return h.err
}

var _ core.Mapper = (*DevMem)(nil)
