package fn

import (
	"math"
	"testing"
)

func compile(t *testing.T, vars []string, src string) Function {
	t.Helper()
	env := NewEnv(vars)
	f, err := env.Compile(src)
	if err != nil {
		t.Fatalf("compile(%q): %v", src, err)
	}
	return f
}

func TestEvaluateArithmetic(t *testing.T) {
	f := compile(t, []string{"x", "y"}, "x^2 + 3*y - 1")
	v, _ := f.Evaluate([]float64{2, 5})
	want := 4 + 15 - 1
	if math.Abs(v-float64(want)) > 1e-12 {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestEvaluateTrigAndConstants(t *testing.T) {
	f := compile(t, []string{"x"}, "sin(pi*x)")
	v, _ := f.Evaluate([]float64{0.5})
	if math.Abs(v-1) > 1e-9 {
		t.Fatalf("sin(pi/2) = %v, want ~1", v)
	}
}

func TestChebyshevBasis(t *testing.T) {
	f := compile(t, []string{"x"}, "T3(x)")
	// T3(x) = 4x^3 - 3x
	for _, x := range []float64{-1, -0.3, 0, 0.7, 1} {
		v, _ := f.Evaluate([]float64{x})
		want := 4*x*x*x - 3*x
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("T3(%v) = %v, want %v", x, v, want)
		}
	}
}

func TestNamedSubFunction(t *testing.T) {
	env := NewEnv([]string{"x", "y"})
	if err := env.Define("r2", "x^2+y^2"); err != nil {
		t.Fatal(err)
	}
	f, err := env.Compile("r2 - 1")
	if err != nil {
		t.Fatal(err)
	}
	v, _ := f.Evaluate([]float64{1, 1})
	if math.Abs(v-1) > 1e-12 {
		t.Fatalf("got %v, want 1", v)
	}
}

func TestEvaluateGridOrdering(t *testing.T) {
	f := compile(t, []string{"x", "y"}, "x + 10*y")
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1}
	out := make([]float64, len(xs)*len(ys))
	f.EvaluateGrid([][]float64{xs, ys}, out)
	// Row-major: out[i*len(ys)+j] = f(xs[i], ys[j])
	for i, x := range xs {
		for j, y := range ys {
			want := x + 10*y
			got := out[i*len(ys)+j]
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("out[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestUnknownIdentifierErrors(t *testing.T) {
	env := NewEnv([]string{"x"})
	if _, err := env.Compile("x + bogus"); err == nil {
		t.Fatalf("expected error for unknown identifier")
	}
}

func TestErrorBoundAccumulates(t *testing.T) {
	f := compile(t, []string{"x"}, "exp(x) + sin(x)")
	_, e := f.Evaluate([]float64{1.0})
	if e < 0 {
		t.Fatalf("error bound should be non-negative, got %v", e)
	}
}
