package approx

import (
	"math"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/fn"
)

// ChebyshevApproximator drives a pair of Interval Approximator calls
// (degree d and degree 2d) to produce an Approximation together with an
// estimate of its approximation error, infinity norm and sign-change
// status. One instance is owned per worker thread.
type ChebyshevApproximator struct {
	rank int
	ia   *IntervalApproximator

	fine   *Tensor
	shells *shellCache

	randPoint []float64
}

// NewChebyshevApproximator builds an approximator for functions of the
// given rank.
func NewChebyshevApproximator(rank int) *ChebyshevApproximator {
	return &ChebyshevApproximator{
		rank:      rank,
		ia:        NewIntervalApproximator(rank),
		fine:      NewTensor(rank, 1),
		shells:    newShellCache(),
		randPoint: make([]float64, rank),
	}
}

// Prewarm pre-instantiates FFT plans for every degree the solver expects to
// reach (1..2*maxDegree) so subdivision never pays plan-construction cost
// mid-solve.
func (ca *ChebyshevApproximator) Prewarm(maxDegree int) {
	for d := 1; d <= 2*maxDegree; d++ {
		ca.ia.planCache.get(2 * d)
	}
}

// AbsApproxTol returns an absolute error budget for f on b: 10x the
// evaluation error f itself reports at a fixed pseudo-random point in b.
func (ca *ChebyshevApproximator) AbsApproxTol(f fn.Function, b box.Box) float64 {
	pseudoRandomPoint(b, ca.randPoint)
	_, errBound := f.Evaluate(ca.randPoint)
	return 10 * errBound
}

// Approximate produces a degree-d Chebyshev Approximation of f on b.
func (ca *ChebyshevApproximator) Approximate(f fn.Function, b box.Box, degree int) (*Approximation, error) {
	coarse := NewTensor(ca.rank, degree)
	if _, err := ca.ia.Approximate(f, b, degree, Options{}, coarse); err != nil {
		return nil, err
	}

	ca.fine.Reset(ca.rank, 2*degree)
	res, err := ca.ia.Approximate(f, b, 2*degree, Options{InfNorm: true, SignChange: true}, ca.fine)
	if err != nil {
		return nil, err
	}

	approxErr := l1Difference(coarse, ca.fine)
	return newApproximation(coarse, res.InfNorm, res.SignChange, approxErr, ca.shells), nil
}

// l1Difference sums |fine - coarse| over fine's full [0,2d]^rank corner,
// treating coarse as zero outside its own [0,d]^rank corner.
func l1Difference(coarse, fine *Tensor) float64 {
	d := coarse.Degree
	sum := 0.0
	fine.ForEachCorner(func(idx []int, v float64) {
		cv := 0.0
		within := true
		for _, k := range idx {
			if k > d {
				within = false
				break
			}
		}
		if within {
			cv = coarse.At(idx)
		}
		sum += math.Abs(v - cv)
	})
	return sum
}

// pseudoRandomPoint fills out with a fixed (not time- or RNG-seeded) point
// inside b, generated by an additive golden-ratio recurrence so repeated
// calls for the same box are reproducible across runs and platforms.
func pseudoRandomPoint(b box.Box, out []float64) {
	const golden = 0.6180339887498949
	frac := 0.3728610
	for i := range out {
		frac = math.Mod(frac+golden, 1)
		out[i] = b.Lo[i] + frac*(b.Hi[i]-b.Lo[i])
	}
}
