// Package regmap maps 32-bit hardware registers into the process.
//
// DevMem maps physical addresses through /dev/mem. Memory is an in-process
// stand-in with the same semantics, for tests and dry runs.
package regmap

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrInUse is returned when an address already has a live mapping.
	ErrInUse = errors.New("register already mapped")
	// ErrUnaligned is returned for addresses that are not 32-bit aligned.
	ErrUnaligned = errors.New("register address not 32-bit aligned")
)

// word is a volatile 32-bit cell. Loads and stores go through sync/atomic so
// the compiler never folds repeated stores of the same value; pulse widths
// depend on every store reaching the bus.
type word struct {
	p *uint32
}

func (w word) Read() uint32 {
	return atomic.LoadUint32(w.p)
}

func (w word) Write(v uint32) {
	atomic.StoreUint32(w.p, v)
}

// claims tracks live mappings by address
type claims struct {
	mu   sync.Mutex
	live map[uint64]bool
}

func (c *claims) claim(addr uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		c.live = make(map[uint64]bool)
	}
	if c.live[addr] {
		return ErrInUse
	}
	c.live[addr] = true
	return nil
}

func (c *claims) release(addr uint64) {
	c.mu.Lock()
	delete(c.live, addr)
	c.mu.Unlock()
}

func (c *claims) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}
