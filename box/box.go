// Package box implements the axis-aligned search box used throughout the
// solver: the domain handed to the scheduler, subdivided by the subdivision
// solver, and shrunk by the interval bounder.
package box

import "fmt"

// Box is an ordered pair of equal-length coordinate vectors (Lo, Hi) with
// Lo[i] < Hi[i] for every i. Once created a Box is never mutated; child
// boxes produced by subdivision or bounding are always new values.
type Box struct {
	Lo, Hi []float64
	area   float64
}

// New builds a Box from lo/hi vectors, validating that they are
// equal-length and that every lower bound is strictly less than its upper
// bound. The returned Box caches its area (product of widths).
func New(lo, hi []float64) (Box, error) {
	if len(lo) != len(hi) {
		return Box{}, fmt.Errorf("box: lo/hi length mismatch: %d vs %d", len(lo), len(hi))
	}
	area := 1.0
	for i := range lo {
		if !(lo[i] < hi[i]) {
			return Box{}, fmt.Errorf("box: dimension %d: lo (%v) must be < hi (%v)", i, lo[i], hi[i])
		}
		area *= hi[i] - lo[i]
	}
	return Box{Lo: lo, Hi: hi, area: area}, nil
}

// Rank returns the dimensionality of the box.
func (b Box) Rank() int { return len(b.Lo) }

// Width returns hi[i]-lo[i].
func (b Box) Width(i int) float64 { return b.Hi[i] - b.Lo[i] }

// Center returns the midpoint of dimension i.
func (b Box) Center(i int) float64 { return 0.5 * (b.Lo[i] + b.Hi[i]) }

// Area returns the cached product of the box's widths.
func (b Box) Area() float64 { return b.area }

// Contains reports whether x lies within the closed box.
func (b Box) Contains(x []float64) bool {
	for i, v := range x {
		if v < b.Lo[i] || v > b.Hi[i] {
			return false
		}
	}
	return true
}

// ToWorld maps a point in the reference cube [-1,1]^n to this box's
// coordinates: world[i] = center[i] + unit[i]*width[i]/2.
func (b Box) ToWorld(unit []float64, out []float64) []float64 {
	if out == nil {
		out = make([]float64, len(unit))
	}
	for i, u := range unit {
		out[i] = b.Center(i) + u*0.5*b.Width(i)
	}
	return out
}

// FromWorld maps a world-coordinate point into the reference cube [-1,1]^n
// of this box.
func (b Box) FromWorld(world []float64, out []float64) []float64 {
	if out == nil {
		out = make([]float64, len(world))
	}
	for i, w := range world {
		out[i] = 2 * (w - b.Center(i)) / b.Width(i)
	}
	return out
}

// Sub returns the child box obtained by restricting dimension axis to
// [lo,hi] expressed in the local reference cube [-1,1] of b.
func (b Box) Sub(axis int, lo, hi float64) (Box, error) {
	newLo := append([]float64(nil), b.Lo...)
	newHi := append([]float64(nil), b.Hi...)
	worldLo := b.Center(axis) + lo*0.5*b.Width(axis)
	worldHi := b.Center(axis) + hi*0.5*b.Width(axis)
	newLo[axis] = worldLo
	newHi[axis] = worldHi
	return New(newLo, newHi)
}

// WithBounds returns the box obtained by replacing each dimension's
// reference-cube bounds [lo[i],hi[i]] (in [-1,1]) with their world-space
// equivalent. lo and hi must each hold one entry per dimension of b.
func WithBounds(b Box, lo, hi []float64) (Box, error) {
	newLo := make([]float64, b.Rank())
	newHi := make([]float64, b.Rank())
	for i := range newLo {
		newLo[i] = b.Center(i) + lo[i]*0.5*b.Width(i)
		newHi[i] = b.Center(i) + hi[i]*0.5*b.Width(i)
	}
	return New(newLo, newHi)
}
