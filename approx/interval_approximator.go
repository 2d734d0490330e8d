package approx

import (
	"fmt"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/fn"
	"github.com/cwbudde/chebsolve/internal/vecmath"
)

// Options controls which optional quantities Approximate also computes
// while it is already walking the sample grid.
type Options struct {
	InfNorm    bool
	SignChange bool
}

// Result carries the optional per-call outputs of Approximate.
type Result struct {
	InfNorm    float64
	SignChange bool
}

// IntervalApproximator samples a function on a box's Chebyshev-Gauss-
// Lobatto grid at one fixed degree and writes its Chebyshev coefficients.
// One instance is owned per worker thread (see the Threaded Solver) so its
// plan and grid caches are never shared across goroutines.
type IntervalApproximator struct {
	rank      int
	planCache *planCache
	gridCache *gridCache

	axisPoints [][]float64
	samples    []float64
}

// NewIntervalApproximator builds an approximator for functions of the
// given rank.
func NewIntervalApproximator(rank int) *IntervalApproximator {
	return &IntervalApproximator{
		rank:      rank,
		planCache: newPlanCache(),
		gridCache: newGridCache(),
	}
}

// Approximate samples f on b's degree-d Chebyshev grid and writes the
// resulting coefficients into out (which is reset to rank/degree first).
func (ia *IntervalApproximator) Approximate(f fn.Function, b box.Box, degree int, opts Options, out *Tensor) (Result, error) {
	if degree < 0 {
		return Result{}, fmt.Errorf("approx: negative degree %d", degree)
	}
	if b.Rank() != ia.rank {
		return Result{}, fmt.Errorf("approx: box rank %d does not match approximator rank %d", b.Rank(), ia.rank)
	}

	unit := ia.gridCache.points(degree)
	if cap(ia.axisPoints) < ia.rank {
		ia.axisPoints = make([][]float64, ia.rank)
	}
	ia.axisPoints = ia.axisPoints[:ia.rank]
	for i := 0; i < ia.rank; i++ {
		if cap(ia.axisPoints[i]) < degree+1 {
			ia.axisPoints[i] = make([]float64, degree+1)
		}
		axis := ia.axisPoints[i][:degree+1]
		for k, u := range unit {
			axis[k] = toWorldAxis(u, b.Lo[i], b.Hi[i])
		}
		ia.axisPoints[i] = axis
	}

	n := pow(degree+1, ia.rank)
	if cap(ia.samples) < n {
		ia.samples = make([]float64, n)
	}
	samples := ia.samples[:n]
	f.EvaluateGrid(ia.axisPoints, samples)

	var res Result
	if opts.InfNorm {
		res.InfNorm = vecmath.MaxAbs(samples)
	}
	if opts.SignChange {
		sawPos, sawNeg := false, false
		for _, v := range samples {
			switch {
			case v > 0:
				sawPos = true
			case v < 0:
				sawNeg = true
			}
		}
		res.SignChange = sawPos && sawNeg
	}

	normalizeSamples(samples, degree, ia.rank)
	out.Reset(ia.rank, degree)
	transformInPlace(ia.planCache, samples, out)
	return res, nil
}
