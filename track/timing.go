package track

import (
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/chebsolve/check"
)

// Timer records wall-clock elapsed time for one solve, when useTimer is
// enabled. It is a plain struct, not a singleton, so multiple solves can
// run concurrently in one process each with their own Timer.
type Timer struct {
	start time.Time
	stop  time.Time
}

// NewTimer starts a Timer immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop records the current time as the Timer's end point.
func (t *Timer) Stop() {
	t.stop = time.Now()
}

// Elapsed returns the recorded duration; if Stop has not been called yet
// it measures up to now instead.
func (t *Timer) Elapsed() time.Duration {
	if t.stop.IsZero() {
		return time.Since(t.start)
	}
	return t.stop.Sub(t.start)
}

// WriteTimingTXT writes a short plain-text summary: elapsed time, thread
// count, how many roots were found, and a breakdown of discharged
// subcells by method.
func WriteTimingTXT(w io.Writer, elapsed time.Duration, numThreads, rootCount int, byMethod map[check.Method]int) error {
	if _, err := fmt.Fprintf(w, "elapsed: %s\n", elapsed); err != nil {
		return fmt.Errorf("track: writing timing.txt: %w", err)
	}
	if _, err := fmt.Fprintf(w, "threads: %d\n", numThreads); err != nil {
		return fmt.Errorf("track: writing timing.txt: %w", err)
	}
	if _, err := fmt.Fprintf(w, "roots: %d\n", rootCount); err != nil {
		return fmt.Errorf("track: writing timing.txt: %w", err)
	}
	for _, m := range []check.Method{
		check.MethodConstantTerm, check.MethodQuadratic, check.MethodBounding,
		check.MethodLinearSolve, check.MethodTooDeep,
	} {
		if n, ok := byMethod[m]; ok {
			if _, err := fmt.Fprintf(w, "%s: %d\n", m, n); err != nil {
				return fmt.Errorf("track: writing timing.txt: %w", err)
			}
		}
	}
	return nil
}
