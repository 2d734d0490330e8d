package approx

import (
	"testing"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/internal/testutil"
)

// polyFunction evaluates a 1-D or 2-D polynomial given as a callback,
// satisfying fn.Function directly without going through the expression
// parser.
type polyFunction struct {
	rank int
	eval func(point []float64) float64
}

func (p polyFunction) Rank() int { return p.rank }

func (p polyFunction) Evaluate(point []float64) (float64, float64) {
	return p.eval(point), 0
}

func (p polyFunction) EvaluateGrid(axisPoints [][]float64, out []float64) {
	idx := make([]int, p.rank)
	point := make([]float64, p.rank)
	pos := 0
	for {
		for d := range p.rank {
			point[d] = axisPoints[d][idx[d]]
		}
		out[pos] = p.eval(point)
		pos++
		axis := p.rank - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < len(axisPoints[axis]) {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

func mustBox(t *testing.T, lo, hi []float64) box.Box {
	t.Helper()
	b, err := box.New(lo, hi)
	if err != nil {
		t.Fatalf("box.New: %v", err)
	}
	return b
}

func TestIntervalApproximatorReproducesLowDegreePolynomial(t *testing.T) {
	// f(x) = 3 - 2x + 5x^3 has tensor degree 3; a degree-3 interval
	// approximation must reproduce its own Chebyshev coefficients exactly
	// (up to floating point noise), independent of what f looks like off
	// the sampled grid.
	f := polyFunction{rank: 1, eval: func(p []float64) float64 {
		x := p[0]
		return 3 - 2*x + 5*x*x*x
	}}
	b := mustBox(t, []float64{-1}, []float64{1})

	ia := NewIntervalApproximator(1)
	out := NewTensor(1, 3)
	if _, err := ia.Approximate(f, b, 3, Options{}, out); err != nil {
		t.Fatalf("Approximate: %v", err)
	}

	// Reconstruct f at a handful of off-grid points from the coefficients
	// and compare against the analytic polynomial.
	xs := []float64{-0.8, -0.2, 0.1, 0.6, 0.95}
	got := make([]float64, len(xs))
	want := make([]float64, len(xs))
	for i, x := range xs {
		got[i] = evalChebyshev1D(out, x)
		want[i] = 3 - 2*x + 5*x*x*x
	}
	testutil.RequireFinite(t, got)
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-8)
}

// evalChebyshev1D evaluates a rank-1 coefficient tensor's Chebyshev series
// at x via the Clenshaw recurrence, for test verification only.
func evalChebyshev1D(t *Tensor, x float64) float64 {
	d := t.Degree
	coeffs := make([]float64, d+1)
	for k := 0; k <= d; k++ {
		coeffs[k] = t.At([]int{k})
	}
	bk1, bk2 := 0.0, 0.0
	for k := d; k >= 1; k-- {
		bk0 := 2*x*bk1 - bk2 + coeffs[k]
		bk2 = bk1
		bk1 = bk0
	}
	return x*bk1 - bk2 + coeffs[0]
}

func TestChebyshevApproximatorErrorVanishesForExactLowDegreePoly(t *testing.T) {
	f := polyFunction{rank: 1, eval: func(p []float64) float64 {
		x := p[0]
		return 1 + 2*x - x*x
	}}
	b := mustBox(t, []float64{-2}, []float64{3})

	ca := NewChebyshevApproximator(1)
	appx, err := ca.Approximate(f, b, 4)
	if err != nil {
		t.Fatalf("Approximate: %v", err)
	}
	if appx.ApproximationError > 1e-8 {
		t.Fatalf("approximation error = %v, want ~0 for an exact degree-2 polynomial at construction degree 4", appx.ApproximationError)
	}
	if appx.GoodDegree != 4 {
		t.Fatalf("GoodDegree = %d, want 4 before any trim", appx.GoodDegree)
	}
}

func TestTrimCoefficientsStopsWhenBudgetExceeded(t *testing.T) {
	f := polyFunction{rank: 1, eval: func(p []float64) float64 {
		x := p[0]
		return 1 + 2*x - x*x
	}}
	b := mustBox(t, []float64{-2}, []float64{3})

	ca := NewChebyshevApproximator(1)
	appx, err := ca.Approximate(f, b, 8)
	if err != nil {
		t.Fatalf("Approximate: %v", err)
	}
	// A quadratic genuinely needs its degree-2 shell: trimming all the way
	// to degree 1 under a tight budget must fail and stop at degree 2.
	if ok := appx.TrimCoefficients(1e-9, 1e-9, 1); ok {
		t.Fatalf("TrimCoefficients succeeded reaching degree 1 for a true quadratic under a tight budget")
	}
	if appx.GoodDegree != 2 {
		t.Fatalf("GoodDegree = %d, want 2 (trim should stop where the quadratic shell is still needed)", appx.GoodDegree)
	}

	// The same quadratic trims down to degree 2 cleanly under the same
	// tight budget, since degrees above 2 carry no energy at all.
	appx2, err := ca.Approximate(f, b, 8)
	if err != nil {
		t.Fatalf("Approximate: %v", err)
	}
	if ok := appx2.TrimCoefficients(1e-9, 1e-9, 2); !ok {
		t.Fatalf("TrimCoefficients failed to reach degree 2, which should cost nothing for a true quadratic")
	}

	// With a generous budget, trimming all the way to degree 1 succeeds by
	// absorbing the quadratic term's energy into the error estimate.
	appx3, err := ca.Approximate(f, b, 8)
	if err != nil {
		t.Fatalf("Approximate: %v", err)
	}
	if ok := appx3.TrimCoefficients(10, 0, 1); !ok {
		t.Fatalf("TrimCoefficients failed to reach degree 1 under a generous budget")
	}
	if appx3.GoodDegree != 1 {
		t.Fatalf("GoodDegree = %d, want 1", appx3.GoodDegree)
	}
}

func TestSumAbsValuesMemoised(t *testing.T) {
	f := polyFunction{rank: 1, eval: func(p []float64) float64 { return p[0] }}
	b := mustBox(t, []float64{-1}, []float64{1})
	ca := NewChebyshevApproximator(1)
	appx, err := ca.Approximate(f, b, 2)
	if err != nil {
		t.Fatalf("Approximate: %v", err)
	}
	first := appx.SumAbsValues()
	second := appx.SumAbsValues()
	if first != second {
		t.Fatalf("memoised SumAbsValues changed: %v vs %v", first, second)
	}
}

func TestIsLinearAfterTrimToOne(t *testing.T) {
	f := polyFunction{rank: 1, eval: func(p []float64) float64 { return 1 + 2*p[0] }}
	b := mustBox(t, []float64{-1}, []float64{1})
	ca := NewChebyshevApproximator(1)
	appx, err := ca.Approximate(f, b, 3)
	if err != nil {
		t.Fatalf("Approximate: %v", err)
	}
	if !appx.TrimCoefficients(1e-9, 1e-9, 1) {
		t.Fatalf("expected trim to succeed for an exact linear function")
	}
	if !appx.IsLinear() {
		t.Fatalf("expected IsLinear() after trimming an exact linear function to degree 1")
	}
}

func Test2DApproximationMatchesProduct(t *testing.T) {
	f := polyFunction{rank: 2, eval: func(p []float64) float64 {
		return p[0]*p[0]*p[1] - 2*p[1] + 3
	}}
	b := mustBox(t, []float64{-1, -1}, []float64{1, 1})

	ia := NewIntervalApproximator(2)
	out := NewTensor(2, 3)
	if _, err := ia.Approximate(f, b, 3, Options{}, out); err != nil {
		t.Fatalf("Approximate: %v", err)
	}

	pts := [][2]float64{{0.3, -0.4}, {-0.9, 0.1}, {0.6, 0.6}}
	got := make([]float64, len(pts))
	want := make([]float64, len(pts))
	for i, pt := range pts {
		got[i] = evalChebyshev2D(out, pt[0], pt[1])
		want[i] = pt[0]*pt[0]*pt[1] - 2*pt[1] + 3
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-7)
}

func evalChebyshev2D(t *Tensor, x, y float64) float64 {
	tx := chebyshevBasis(x, t.Degree)
	ty := chebyshevBasis(y, t.Degree)
	sum := 0.0
	for i := 0; i <= t.Degree; i++ {
		for j := 0; j <= t.Degree; j++ {
			sum += t.At([]int{i, j}) * tx[i] * ty[j]
		}
	}
	return sum
}

func chebyshevBasis(x float64, degree int) []float64 {
	b := make([]float64, degree+1)
	if degree >= 0 {
		b[0] = 1
	}
	if degree >= 1 {
		b[1] = x
	}
	for k := 2; k <= degree; k++ {
		b[k] = 2*x*b[k-1] - b[k-2]
	}
	return b
}
