package check

import (
	"math"

	"github.com/cwbudde/chebsolve/approx"
)

// KeepConstantTerm reports whether a subcell survives the constant-term
// sign test for one function's approximation: the approximation can only
// be everywhere of one sign, bounded away from zero, when
// sumAbsVal+approximationError <= 2*|c0|. It returns true (keep the
// subcell) whenever that bound fails to hold.
func KeepConstantTerm(a *approx.Approximation) bool {
	zero := make([]int, a.Tensor.Rank)
	c0 := a.Tensor.At(zero)
	return a.SumAbsValues()+a.ApproximationError > 2*math.Abs(c0)
}
