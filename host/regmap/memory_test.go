package regmap

import (
	"errors"
	"sync"
	"testing"
)

func TestMemoryMapReadWrite(t *testing.T) {
	m := NewMemory()
	m.Poke(0x1000, 0xA5)

	r, err := m.Map(0x1000)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if v := r.Read(); v != 0xA5 {
		t.Errorf("Expected 0xA5, got 0x%X", v)
	}
	r.Write(0x5A)
	if v := m.Peek(0x1000); v != 0x5A {
		t.Errorf("Expected 0x5A, got 0x%X", v)
	}
}

func TestMemoryInUse(t *testing.T) {
	m := NewMemory()
	r, err := m.Map(0x2000)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if _, err := m.Map(0x2000); !errors.Is(err, ErrInUse) {
		t.Errorf("Expected ErrInUse, got %v", err)
	}
	r.Close()
	r2, err := m.Map(0x2000)
	if err != nil {
		t.Fatalf("Map after Close failed: %v", err)
	}
	r2.Close()
}

func TestMemoryCloseOnce(t *testing.T) {
	m := NewMemory()
	r, _ := m.Map(0x3000)
	r.Close()
	r.Close()
	if n := m.Unmaps(0x3000); n != 1 {
		t.Errorf("Expected 1 unmap, got %d", n)
	}
	if n := m.Live(); n != 0 {
		t.Errorf("Expected no live mappings, got %d", n)
	}
}

func TestMemoryCloseConcurrent(t *testing.T) {
	m := NewMemory()
	r, _ := m.Map(0x3100)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Close()
		}()
	}
	wg.Wait()
	if n := m.Unmaps(0x3100); n != 1 {
		t.Errorf("Expected 1 unmap from concurrent closes, got %d", n)
	}
}

func TestMemoryFailures(t *testing.T) {
	m := NewMemory()
	m.Fail(0x4000)
	if _, err := m.Map(0x4000); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
	if _, err := m.Map(0x4002); !errors.Is(err, ErrUnaligned) {
		t.Errorf("Expected ErrUnaligned, got %v", err)
	}
	if n := m.Live(); n != 0 {
		t.Errorf("Expected failed maps to leave nothing live, got %d", n)
	}
}
