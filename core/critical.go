package core

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// critical tracks nested and overlapping critical sections. The GC setting
// is process wide: the first section in saves it, the last one out restores
// it.
var critical struct {
	mu        sync.Mutex
	depth     int
	gcPercent int
}

// enterCritical pins the calling goroutine to its OS thread and pauses the
// garbage collector so no stop-the-world lands inside a frame.
//
// Kernel interrupts and other processes can still preempt the thread. For
// reliable colors run on an isolated core (isolcpus, taskset).
func enterCritical() {
	runtime.LockOSThread()
	critical.mu.Lock()
	if critical.depth == 0 {
		critical.gcPercent = debug.SetGCPercent(-1)
	}
	critical.depth++
	critical.mu.Unlock()
}

// exitCritical undoes one enterCritical. Every call must pair with an
// enterCritical on the same goroutine.
func exitCritical() {
	critical.mu.Lock()
	critical.depth--
	if critical.depth == 0 {
		debug.SetGCPercent(critical.gcPercent)
	}
	critical.mu.Unlock()
	runtime.UnlockOSThread()
}
