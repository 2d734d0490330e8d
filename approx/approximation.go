package approx

import (
	"math"

	"github.com/cwbudde/chebsolve/internal/vecmath"
)

// Approximation is the Chebyshev Approximation value object: a coefficient
// tensor plus the running quantities the checker, trimmer and subdivision
// solver consult. GoodDegree is the current working degree, which only
// ever shrinks (via TrimCoefficients) from the construction degree the
// Chebyshev Approximator built the tensor at.
type Approximation struct {
	Tensor             *Tensor
	InfNorm            float64
	SignChange         bool
	ApproximationError float64
	GoodDegree         int

	shells    *shellCache
	sumAbsVal float64
	sumValid  bool
}

// newApproximation builds an Approximation at its construction degree
// (Tensor.Degree), sharing shells with every other Approximation the same
// Chebyshev Approximator produces.
func newApproximation(t *Tensor, infNorm float64, signChange bool, approxErr float64, shells *shellCache) *Approximation {
	return &Approximation{
		Tensor:             t,
		InfNorm:            infNorm,
		SignChange:         signChange,
		ApproximationError: approxErr,
		GoodDegree:         t.Degree,
		shells:             shells,
	}
}

// SumAbsValues returns the sum of absolute coefficient values over the
// active [0,GoodDegree]^rank corner, memoised until the next trim.
func (a *Approximation) SumAbsValues() float64 {
	if a.sumValid {
		return a.sumAbsVal
	}
	var sum float64
	if a.Tensor.Rank == 1 {
		// The rank-1 active corner is a contiguous prefix of the backing
		// array, so the reduction runs through the SIMD-dispatched block
		// sum rather than a scalar loop.
		line := a.Tensor.Data[:a.GoodDegree+1]
		abs := make([]float64, len(line))
		for i, v := range line {
			abs[i] = math.Abs(v)
		}
		sum = vecmath.Sum(abs)
	} else {
		a.Tensor.ForEachUpTo(a.GoodDegree, func(_ []int, v float64) {
			sum += math.Abs(v)
		})
	}
	a.sumAbsVal = sum
	a.sumValid = true
	return sum
}

// IsGoodApproximation reports whether the recorded error fits within the
// given absolute/relative tolerance budget.
func (a *Approximation) IsGoodApproximation(absTol, relTol float64) bool {
	return a.ApproximationError < absTol+relTol*a.InfNorm
}

// IsLinear reports whether the working degree has been trimmed to 1.
func (a *Approximation) IsLinear() bool {
	return a.GoodDegree == 1
}

// TrimCoefficients repeatedly decrements the working degree toward
// targetDegree, absorbing each discarded coefficient shell's absolute sum
// into ApproximationError. It returns false, leaving GoodDegree at the
// last degree that still fit the tolerance, as soon as absorbing the next
// shell would push the error past absTol+relTol*InfNorm; it returns true
// once GoodDegree reaches targetDegree without exceeding the budget.
func (a *Approximation) TrimCoefficients(absTol, relTol float64, targetDegree int) bool {
	for a.GoodDegree > targetDegree {
		shell := a.shells.get(a.Tensor.Rank, a.Tensor.SideLength, a.GoodDegree)
		shellSum := 0.0
		for _, off := range shell {
			shellSum += math.Abs(a.Tensor.Data[off])
		}
		newError := a.ApproximationError + shellSum
		if newError > absTol+relTol*a.InfNorm {
			return false
		}
		a.ApproximationError = newError
		a.GoodDegree--
		a.sumValid = false
	}
	return true
}
