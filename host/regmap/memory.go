package regmap

import (
	"errors"
	"fmt"
	"sync"

	"rkws2812/core"
)

// ErrUnavailable is returned by Memory for addresses marked with Fail.
var ErrUnavailable = errors.New("address unavailable")

// Memory is a sparse in-process register file. Values written survive unmap
// so a later mapping of the same address reads them back, as hardware would.
type Memory struct {
	mu     sync.Mutex
	words  map[uint64]*uint32
	fail   map[uint64]bool
	unmaps map[uint64]int
	claims claims
}

// NewMemory returns an empty register file.
func NewMemory() *Memory {
	return &Memory{
		words:  make(map[uint64]*uint32),
		fail:   make(map[uint64]bool),
		unmaps: make(map[uint64]int),
	}
}

// Fail makes every later Map of addr fail.
func (m *Memory) Fail(addr uint64) {
	m.mu.Lock()
	m.fail[addr] = true
	m.mu.Unlock()
}

// Poke sets a register value without mapping it.
func (m *Memory) Poke(addr uint64, v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cell(addr).Write(v)
}

// Peek reads a register value without mapping it.
func (m *Memory) Peek(addr uint64) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cell(addr).Read()
}

// Unmaps returns how many times addr has been released.
func (m *Memory) Unmaps(addr uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmaps[addr]
}

// Live returns how many handles are still mapped.
func (m *Memory) Live() int {
	return m.claims.count()
}

func (m *Memory) cell(addr uint64) word {
	p, ok := m.words[addr]
	if !ok {
		p = new(uint32)
		m.words[addr] = p
	}
	return word{p: p}
}

// Map returns a handle on addr.
func (m *Memory) Map(addr uint64) (core.MappedRegister, error) {
	if addr&3 != 0 {
		return nil, fmt.Errorf("0x%X: %w", addr, ErrUnaligned)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[addr] {
		return nil, fmt.Errorf("0x%X: %w", addr, ErrUnavailable)
	}
	if err := m.claims.claim(addr); err != nil {
		return nil, fmt.Errorf("0x%X: %w", addr, err)
	}
	return &MemHandle{word: m.cell(addr), addr: addr, m: m}, nil
}

// MemHandle is a mapped Memory register.
type MemHandle struct {
	word
	addr   uint64
	m      *Memory
	closed bool // guarded by m.mu
}

// Close releases the handle; later calls are no-ops.
func (h *MemHandle) Close() error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.m.unmaps[h.addr]++
	h.m.claims.release(h.addr)
	return nil
}

var _ core.Mapper = (*Memory)(nil)
