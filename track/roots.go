// Package track implements the trackers the scheduler reports into: an
// append-only, thread-safe accumulator for found roots and one for
// discharged intervals, plus their CSV/text serialisation and an optional
// progress line. None of this package is on the algorithmic core's
// critical path -- it only ever receives finished results.
package track

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/fn"
)

// Root is one accepted solution, recorded in world coordinates.
type Root struct {
	Point     []float64
	Condition float64
	Box       box.Box
	Level     int
}

// RootTracker accumulates roots across every worker goroutine. Appends are
// guarded by a mutex rather than a lock-free structure: spec.md 5 only
// requires the trackers to be internally thread-safe, not lock-free, since
// root discovery is rare compared to subcell churn.
type RootTracker struct {
	rank int
	mu   sync.Mutex
	all  []Root
}

// NewRootTracker builds a tracker for functions of the given rank.
func NewRootTracker(rank int) *RootTracker {
	return &RootTracker{rank: rank}
}

// AddRoot implements schedule.RootSink. A point within L-infinity distance
// goodZerosTol of an already-recorded root is treated as the same root
// rediscovered from a neighbouring subcell and is dropped rather than
// appended, so a root sitting on a shared subcell boundary is never
// reported twice.
func (t *RootTracker) AddRoot(point []float64, condition float64, b box.Box, level int, goodZerosTol float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.all {
		if linfDistance(existing.Point, point) < goodZerosTol {
			return
		}
	}
	t.all = append(t.all, Root{Point: append([]float64(nil), point...), Condition: condition, Box: b, Level: level})
}

// linfDistance returns the L-infinity (Chebyshev) distance between a and b.
func linfDistance(a, b []float64) float64 {
	dist := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > dist {
			dist = d
		}
	}
	return dist
}

// Roots returns a snapshot of every root recorded so far.
func (t *RootTracker) Roots() []Root {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Root(nil), t.all...)
}

// Len reports how many roots have been recorded so far.
func (t *RootTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.all)
}

// WriteRootsCSV writes one row per root: its world coordinates followed by
// its condition number, to the roots.csv layout.
func (t *RootTracker) WriteRootsCSV(w io.Writer) error {
	roots := t.Roots()
	cw := csv.NewWriter(w)

	header := make([]string, t.rank+1)
	for i := 0; i < t.rank; i++ {
		header[i] = fmt.Sprintf("x%d", i+1)
	}
	header[t.rank] = "condition"
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("track: writing roots.csv header: %w", err)
	}

	row := make([]string, t.rank+1)
	for _, r := range roots {
		for i, v := range r.Point {
			row[i] = fmt.Sprintf("%.17g", v)
		}
		row[t.rank] = fmt.Sprintf("%.6g", r.Condition)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("track: writing roots.csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResidualsCSV writes one row per root: f_1(x)...f_n(x) evaluated at
// the root's world coordinates, for independent verification of accepted
// roots against the original functions.
func (t *RootTracker) WriteResidualsCSV(w io.Writer, funcs []fn.Function) error {
	roots := t.Roots()
	cw := csv.NewWriter(w)

	header := make([]string, len(funcs))
	for i := range funcs {
		header[i] = fmt.Sprintf("f%d", i+1)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("track: writing residuals.csv header: %w", err)
	}

	row := make([]string, len(funcs))
	for _, r := range roots {
		for i, f := range funcs {
			v, _ := f.Evaluate(r.Point)
			row[i] = fmt.Sprintf("%.17g", v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("track: writing residuals.csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
