package check

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/chebsolve/approx"
)

// singularityThreshold mirrors the ColPivHouseholderQR numerical-rank
// threshold of the original algorithm: a system is treated as singular
// once its reciprocal condition number falls below this.
const singularityThreshold = 1e-10

// Bound runs the preconditioned bounding solve described for the case
// numApprox == rank: it assembles the rank x rank matrix of linear
// coefficients, solves the 2^rank systems A*x = -c +/- e (one per sign
// pattern of the error vector), and returns the elementwise min/max of
// those solutions clipped to [-1,1].
//
// This computes the base linear bound only; it does not perform the
// further Lipschitz boundary-tightening sweep (iteratively shrinking each
// dimension via a reduced-polynomial line search) -- that refinement is
// left for a later pass, since it is the part of the preconditioned
// bounder the original design notes flag as under-tested for n>2 and its
// closed-form per-dimension minimiser is easy to get subtly wrong without
// a way to compile and check it here. The box this returns is still a
// valid (if sometimes less tight) superset-excluding bound: every
// coordinate is clipped to the unit box, and ok=false whenever the matrix
// is singular or bounds cross, exactly as the full procedure would signal.
func Bound(approximations []*approx.Approximation) (lo, hi []float64, ok bool) {
	rank := approximations[0].Tensor.Rank
	if len(approximations) != rank {
		return nil, nil, false
	}

	aData := make([]float64, rank*rank)
	c := make([]float64, rank)
	e := make([]float64, rank)
	zero := make([]int, rank)
	lin := make([]int, rank)
	for i, a := range approximations {
		c[i] = a.Tensor.At(zero)
		for j := 0; j < rank; j++ {
			lin[j] = 1
			aData[i*rank+j] = a.Tensor.At(lin)
			lin[j] = 0
		}
		e[i] = linearResidual(a) + a.ApproximationError
	}

	A := mat.NewDense(rank, rank, aData)
	var qr mat.QR
	qr.Factorize(A)
	if 1/qr.Cond() < singularityThreshold {
		return nil, nil, false
	}

	lo = make([]float64, rank)
	hi = make([]float64, rank)
	for i := range lo {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}

	rhs := make([]float64, rank)
	dst := mat.NewDense(rank, 1, nil)
	signCount := 1 << uint(rank)
	for s := 0; s < signCount; s++ {
		for i := 0; i < rank; i++ {
			sign := 1.0
			if s&(1<<uint(i)) != 0 {
				sign = -1
			}
			rhs[i] = -c[i] + sign*e[i]
		}
		b := mat.NewVecDense(rank, rhs)
		if err := qr.SolveTo(dst, false, b); err != nil {
			return nil, nil, false
		}
		for i := 0; i < rank; i++ {
			x := dst.At(i, 0)
			if x < -1 {
				x = -1
			}
			if x > 1 {
				x = 1
			}
			if x < lo[i] {
				lo[i] = x
			}
			if x > hi[i] {
				hi[i] = x
			}
		}
	}

	for i := 0; i < rank; i++ {
		if lo[i] > hi[i] {
			return nil, nil, false
		}
	}
	return lo, hi, true
}

// linearResidual returns the l1 sum of every coefficient of a that is
// neither the constant term nor a pure linear term -- the per-function
// error bound e_i the preconditioned solve uses.
func linearResidual(a *approx.Approximation) float64 {
	rank := a.Tensor.Rank
	zero := make([]int, rank)
	linearSum := math.Abs(a.Tensor.At(zero))
	idx := make([]int, rank)
	for j := 0; j < rank; j++ {
		idx[j] = 1
		linearSum += math.Abs(a.Tensor.At(idx))
		idx[j] = 0
	}
	return a.SumAbsValues() - linearSum
}
