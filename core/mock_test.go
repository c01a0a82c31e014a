package core

import "errors"

// mockRegister is a test implementation of MappedRegister
type mockRegister struct {
	value  uint32
	writes int
	closed int
}

func (r *mockRegister) Read() uint32 {
	return r.value
}

func (r *mockRegister) Write(v uint32) {
	r.value = v
	r.writes++
}

func (r *mockRegister) Close() error {
	r.closed++
	return nil
}

// mockMapper hands out one mockRegister per address
type mockMapper struct {
	regs map[uint64]*mockRegister
	fail map[uint64]bool
}

var errMockMap = errors.New("mock: address unavailable")

func newMockMapper() *mockMapper {
	return &mockMapper{
		regs: make(map[uint64]*mockRegister),
		fail: make(map[uint64]bool),
	}
}

func (m *mockMapper) Map(addr uint64) (MappedRegister, error) {
	if m.fail[addr] {
		return nil, errMockMap
	}
	r, ok := m.regs[addr]
	if !ok {
		r = &mockRegister{}
		m.regs[addr] = r
	}
	return r, nil
}

func (m *mockMapper) reg(addr uint64) *mockRegister {
	if _, ok := m.regs[addr]; !ok {
		m.regs[addr] = &mockRegister{}
	}
	return m.regs[addr]
}
