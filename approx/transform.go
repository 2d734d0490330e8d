package approx

import "github.com/cwbudde/chebsolve/internal/vecmath"

// transformInPlace realises the rank-n DCT-I as a global 1/d^n sample
// normalisation followed by n sequential 1-D passes over t's active
// corner, one per axis, each delegating to dct1D. Because the type-I DCT's
// even-reflection, FFT normalisation and boundary halving are all
// separable operations, normalising once up front and then applying
// dct1D's relative weighting successively along every axis is exactly
// equivalent to reflecting the whole corner to a 2*degree-sided tensor and
// running a single rank-n transform -- it just avoids ever materialising
// that larger tensor, and lets the 1/d^n scaling run as one contiguous
// SIMD-dispatched pass over the sample buffer instead of being folded
// invisibly into each axis.
func transformInPlace(cache *planCache, samples []float64, t *Tensor) {
	t.SetCorner(samples)

	d := t.Degree
	line := make([]float64, d+1)
	out := make([]float64, d+1)
	for axis := 0; axis < t.Rank; axis++ {
		forEachMultiIndexExcept(t.Rank, axis, d, func(idx []int) {
			t.line(axis, idx, line)
			dct1D(cache, line, out)
			t.setLine(axis, idx, out)
		})
	}
}

// normalizeSamples scales samples in place by 1/d^rank, the Interval
// Approximator's "divide all samples by d^n" normalisation step, applied
// once to the contiguous partial-grid buffer before it is scattered into
// the coefficient tensor and transformed.
func normalizeSamples(samples []float64, d, rank int) {
	if d == 0 {
		return
	}
	scale := 1.0
	for range rank {
		scale /= float64(d)
	}
	vecmath.ScaleBlockInPlace(samples, scale)
}
