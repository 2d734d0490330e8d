package check

import (
	"math"

	"github.com/cwbudde/chebsolve/approx"
)

// subintervalR and subintervalM give the fixed irrational split point m = 2r-1 with
// r chosen away from coincidental zeros of the quadratic part.
const subintervalR = 0.5139303900908738

var subintervalM = 2*subintervalR - 1

// quadTerm is one surviving coefficient of an approximation's total-degree
// <=2 truncation: idx are the per-axis Chebyshev orders (each 0, 1, or 2),
// coeff is the tensor's coefficient at that multi-index.
type quadTerm struct {
	idx   []int
	coeff float64
}

// extractQuadratic collects every coefficient of a with total degree <= 2,
// and the l1 sum of every coefficient with total degree > 2 (the part the
// quadratic model cannot see, which must be folded into the error bound).
func extractQuadratic(a *approx.Approximation) (terms []quadTerm, residual float64) {
	rank := a.Tensor.Rank
	bound := min(2, a.GoodDegree)
	idx := make([]int, rank)
	var rec func(pos int)
	rec = func(pos int) {
		if pos == rank {
			sum := 0
			for _, v := range idx {
				sum += v
			}
			if sum <= 2 {
				terms = append(terms, quadTerm{idx: append([]int(nil), idx...), coeff: a.Tensor.At(idx)})
			}
			return
		}
		for v := 0; v <= bound; v++ {
			idx[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)

	quadSum := 0.0
	for _, term := range terms {
		quadSum += math.Abs(term.coeff)
	}
	residual = a.SumAbsValues() - quadSum + a.ApproximationError
	return terms, residual
}

func chebBasisValue(k int, x float64) float64 {
	switch k {
	case 0:
		return 1
	case 1:
		return x
	case 2:
		return 2*x*x - 1
	default:
		return 0
	}
}

func evalQuadratic(terms []quadTerm, x []float64) float64 {
	sum := 0.0
	for _, term := range terms {
		v := term.coeff
		for i, k := range term.idx {
			v *= chebBasisValue(k, x[i])
		}
		sum += v
	}
	return sum
}

// quadraticCoeffsAlongAxis collapses terms to a 1-D quadratic A*t^2+B*t+C in
// axis d's coordinate, holding every other axis fixed at other[i].
func quadraticCoeffsAlongAxis(terms []quadTerm, other []float64, d int) (a, b, c float64) {
	for _, term := range terms {
		factor := 1.0
		for i, k := range term.idx {
			if i == d {
				continue
			}
			factor *= chebBasisValue(k, other[i])
		}
		switch term.idx[d] {
		case 0:
			c += factor * term.coeff
		case 1:
			b += factor * term.coeff
		case 2:
			a += 2 * factor * term.coeff
			c -= factor * term.coeff
		}
	}
	return
}

// boundQuadratic returns the min/max of the quadratic model over the box
// [lo,hi], sampled at the 3^rank grid of {lo,mid,hi} per axis together with
// each axis's interior critical point (holding the others at the box
// center), which is exact for any polynomial of total degree <= 2.
func boundQuadratic(terms []quadTerm, lo, hi []float64) (float64, float64) {
	rank := len(lo)
	mid := make([]float64, rank)
	for i := range mid {
		mid[i] = 0.5 * (lo[i] + hi[i])
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	consider := func(v float64) {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	choices := make([][3]float64, rank)
	for i := range choices {
		choices[i] = [3]float64{lo[i], mid[i], hi[i]}
	}
	idx := make([]int, rank)
	x := make([]float64, rank)
	var walk func(pos int)
	walk = func(pos int) {
		if pos == rank {
			for i := range x {
				x[i] = choices[i][idx[i]]
			}
			consider(evalQuadratic(terms, x))
			return
		}
		for k := 0; k < 3; k++ {
			idx[pos] = k
			walk(pos + 1)
		}
	}
	walk(0)

	for d := 0; d < rank; d++ {
		a, b, _ := quadraticCoeffsAlongAxis(terms, mid, d)
		if a == 0 {
			continue
		}
		tCrit := -b / (2 * a)
		if tCrit > lo[d] && tCrit < hi[d] {
			xc := append([]float64(nil), mid...)
			xc[d] = tCrit
			consider(evalQuadratic(terms, xc))
		}
	}

	return minV, maxV
}

// QuadraticCheck partitions the unit box into 2^rank subintervals at the
// fixed split m = 2r-1 on every axis and reports, for each subinterval
// (indexed by a bitmask where bit i set means axis i takes the high half),
// whether it survives: it is eliminated as soon as any one function's
// quadratic model is sign-definite there with slack exceeding that
// function's residual error bound.
func QuadraticCheck(approximations []*approx.Approximation) []bool {
	rank := approximations[0].Tensor.Rank
	subCount := 1 << uint(rank)
	keep := make([]bool, subCount)
	for i := range keep {
		keep[i] = true
	}

	for _, a := range approximations {
		terms, residual := extractQuadratic(a)
		for pattern := 0; pattern < subCount; pattern++ {
			if !keep[pattern] {
				continue
			}
			lo := make([]float64, rank)
			hi := make([]float64, rank)
			for axis := 0; axis < rank; axis++ {
				if pattern&(1<<uint(axis)) == 0 {
					lo[axis], hi[axis] = -1, subintervalM
				} else {
					lo[axis], hi[axis] = subintervalM, 1
				}
			}
			minV, maxV := boundQuadratic(terms, lo, hi)
			if minV-residual > 0 || maxV+residual < 0 {
				keep[pattern] = false
			}
		}
	}
	return keep
}

// SubintervalBounds returns the [lo,hi] reference-cube bounds of
// subinterval pattern, as produced by QuadraticCheck's indexing.
func SubintervalBounds(rank, pattern int) (lo, hi []float64) {
	lo = make([]float64, rank)
	hi = make([]float64, rank)
	for axis := 0; axis < rank; axis++ {
		if pattern&(1<<uint(axis)) == 0 {
			lo[axis], hi[axis] = -1, subintervalM
		} else {
			lo[axis], hi[axis] = subintervalM, 1
		}
	}
	return lo, hi
}
