package core

import "time"

// Calibrate estimates the cost of one write to r by timing n writes of its
// current value. Run it on the level register of the target pin, with the
// same CPU governor and core pinning as production, and feed the result to
// SuggestTiming.
func Calibrate(r Register, n int) time.Duration {
	if n <= 0 {
		return 0
	}
	v := r.Read()
	enterCritical()
	start := time.Now()
	for i := 0; i < n; i++ {
		r.Write(v)
	}
	elapsed := time.Since(start)
	exitCritical()
	return elapsed / time.Duration(n)
}
