package track

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/check"
)

// Interval is one subcell discharged without producing a root.
type Interval struct {
	Box    box.Box
	Level  int
	Method check.Method
}

// IntervalTracker accumulates discharged subcells across every worker
// goroutine, for the optional intervals.txt diagnostic output
// (trackIntervals).
type IntervalTracker struct {
	mu  sync.Mutex
	all []Interval
}

// NewIntervalTracker builds an empty tracker.
func NewIntervalTracker() *IntervalTracker {
	return &IntervalTracker{}
}

// AddInterval implements schedule.IntervalSink.
func (t *IntervalTracker) AddInterval(b box.Box, level int, method check.Method) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.all = append(t.all, Interval{Box: b, Level: level, Method: method})
}

// Intervals returns a snapshot of every discharged subcell recorded so far.
func (t *IntervalTracker) Intervals() []Interval {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Interval(nil), t.all...)
}

// CountByMethod tallies how many subcells were discharged by each Method,
// for the progress line and the timing summary.
func (t *IntervalTracker) CountByMethod() map[check.Method]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts := make(map[check.Method]int)
	for _, iv := range t.all {
		counts[iv.Method]++
	}
	return counts
}

// WriteIntervalsTXT writes one tab-aligned line per discharged subcell:
// its level, the method that discharged it, and its world-space bounds.
func (t *IntervalTracker) WriteIntervalsTXT(w io.Writer) error {
	intervals := t.Intervals()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Level\tMethod\tLo\tHi\n"); err != nil {
		return fmt.Errorf("track: writing intervals.txt header: %w", err)
	}
	for _, iv := range intervals {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%v\t%v\n", iv.Level, iv.Method, iv.Box.Lo, iv.Box.Hi); err != nil {
			return fmt.Errorf("track: writing intervals.txt row: %w", err)
		}
	}
	return tw.Flush()
}
