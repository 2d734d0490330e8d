// Package linear implements the closed-form endgame: once every function's
// approximation has been trimmed to degree one, the system reduces to a
// linear solve whose unique root (if accepted) is a candidate root of the
// original functions.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/chebsolve/approx"
	"github.com/cwbudde/chebsolve/box"
)

// Tolerances bundles the parameters that decide whether a linear solve's
// root is accepted.
type Tolerances struct {
	GoodZerosFactor float64
	MinGoodZerosTol float64
}

// GoodZerosTol computes goodZerosTol = max(minGoodZerosTol,
// goodZerosFactor * sum(approximationError)) from the trimmed
// approximations' recorded errors.
func (tol Tolerances) GoodZerosTol(approximations []*approx.Approximation) float64 {
	sum := 0.0
	for _, a := range approximations {
		sum += a.ApproximationError
	}
	v := tol.GoodZerosFactor * sum
	if v < tol.MinGoodZerosTol {
		v = tol.MinGoodZerosTol
	}
	return v
}

// Root is an accepted solution in the subcell's reference cube, not yet
// mapped back to world coordinates.
type Root struct {
	Point     []float64
	Condition float64
}

// Solve builds the rank x rank linear system L*x = -c from each
// approximation's (constant, linear) coefficients, with every row
// normalised by that function's infinity norm, and solves it via QR. The
// root is accepted iff every real part lies within 1+goodZerosTol of the
// reference cube and every imaginary part (always zero for a real linear
// solve, kept for symmetry with the documented acceptance rule) is within
// goodZerosTol of zero.
func Solve(approximations []*approx.Approximation, tol Tolerances) (Root, bool) {
	rank := approximations[0].Tensor.Rank
	if len(approximations) != rank {
		return Root{}, false
	}

	lData := make([]float64, rank*rank)
	c := make([]float64, rank)
	zero := make([]int, rank)
	idx := make([]int, rank)
	for i, a := range approximations {
		norm := a.InfNorm
		if norm == 0 {
			norm = 1
		}
		c[i] = a.Tensor.At(zero) / norm
		for j := 0; j < rank; j++ {
			idx[j] = 1
			lData[i*rank+j] = a.Tensor.At(idx) / norm
			idx[j] = 0
		}
	}

	L := mat.NewDense(rank, rank, lData)
	var qr mat.QR
	qr.Factorize(L)
	if 1/qr.Cond() < 1e-10 {
		return Root{}, false
	}

	rhs := mat.NewVecDense(rank, negate(c))
	dst := mat.NewDense(rank, 1, nil)
	if err := qr.SolveTo(dst, false, rhs); err != nil {
		return Root{}, false
	}

	goodZerosTol := tol.GoodZerosTol(approximations)
	x := make([]float64, rank)
	for i := 0; i < rank; i++ {
		v := dst.At(i, 0)
		if math.Abs(v) > 1+goodZerosTol {
			return Root{}, false
		}
		x[i] = v
	}

	return Root{Point: x, Condition: qr.Cond()}, true
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

// ToWorld maps a root found in b's reference cube to world coordinates.
func ToWorld(r Root, b box.Box) []float64 {
	return b.ToWorld(r.Point, nil)
}
