package fn

import "math"

// node is one element of a parsed expression tree. eval returns the value
// at point together with a simple absolute error bound, propagated by
// standard first-order rules (the error-tracking "number type" spec.md's
// Design Notes call for); this is intentionally a coarse estimate, not a
// certified interval bound -- good enough to drive AbsApproxTol and
// residual reporting, which is all the core asks of it.
type node interface {
	eval(point []float64) (value, errBound float64)
}

const machineEps = 2.220446049250313e-16

type numNode struct{ v float64 }

func (n numNode) eval([]float64) (float64, float64) { return n.v, 0 }

type varNode struct {
	index int
	name  string
}

func (n varNode) eval(point []float64) (float64, float64) {
	return point[n.index], 0
}

type constNode struct{ v float64 }

func (n constNode) eval([]float64) (float64, float64) { return n.v, 0 }

type negNode struct{ child node }

func (n negNode) eval(point []float64) (float64, float64) {
	v, e := n.child.eval(point)
	return -v, e
}

type binOp byte

const (
	opAdd binOp = '+'
	opSub binOp = '-'
	opMul binOp = '*'
	opDiv binOp = '/'
	opPow binOp = '^'
)

type binNode struct {
	op   binOp
	l, r node
}

func (n binNode) eval(point []float64) (float64, float64) {
	a, ea := n.l.eval(point)
	b, eb := n.r.eval(point)
	switch n.op {
	case opAdd:
		v := a + b
		return v, ea + eb + machineEps*math.Abs(v)
	case opSub:
		v := a - b
		return v, ea + eb + machineEps*math.Abs(v)
	case opMul:
		v := a * b
		e := math.Abs(a)*eb + math.Abs(b)*ea + ea*eb + machineEps*math.Abs(v)
		return v, e
	case opDiv:
		if b == 0 {
			return math.Inf(int(math.Copysign(1, a))), math.MaxFloat64
		}
		v := a / b
		e := (ea + math.Abs(v)*eb) / math.Abs(b)
		return v, e + machineEps*math.Abs(v)
	case opPow:
		v := math.Pow(a, b)
		// First-order propagation via d(a^b) = b*a^(b-1)*da + a^b*ln(a)*db.
		var dFda, dFdb float64
		if a != 0 {
			dFda = b * math.Pow(a, b-1)
		}
		if a > 0 {
			dFdb = v * math.Log(a)
		}
		e := math.Abs(dFda)*ea + math.Abs(dFdb)*eb + machineEps*math.Abs(v)
		return v, e
	}
	return math.NaN(), math.MaxFloat64
}

type callKind int

const (
	callSin callKind = iota
	callCos
	callTan
	callSinh
	callCosh
	callTanh
	callExp
	callSqrt
	callLog
	callLog2
	callLog10
)

var callNames = map[string]callKind{
	"sin": callSin, "cos": callCos, "tan": callTan,
	"sinh": callSinh, "cosh": callCosh, "tanh": callTanh,
	"exp": callExp, "sqrt": callSqrt,
	"log": callLog, "log2": callLog2, "log10": callLog10,
}

type callNode struct {
	kind callKind
	arg  node
}

func (n callNode) eval(point []float64) (float64, float64) {
	a, ea := n.arg.eval(point)
	var v, deriv float64
	switch n.kind {
	case callSin:
		v, deriv = math.Sin(a), math.Cos(a)
	case callCos:
		v, deriv = math.Cos(a), -math.Sin(a)
	case callTan:
		v = math.Tan(a)
		deriv = 1 + v*v
	case callSinh:
		v, deriv = math.Sinh(a), math.Cosh(a)
	case callCosh:
		v, deriv = math.Cosh(a), math.Sinh(a)
	case callTanh:
		v = math.Tanh(a)
		deriv = 1 - v*v
	case callExp:
		v = math.Exp(a)
		deriv = v
	case callSqrt:
		v = math.Sqrt(a)
		if v != 0 {
			deriv = 0.5 / v
		}
	case callLog:
		v = math.Log(a)
		if a != 0 {
			deriv = 1 / a
		}
	case callLog2:
		v = math.Log2(a)
		if a != 0 {
			deriv = 1 / (a * math.Ln2)
		}
	case callLog10:
		v = math.Log10(a)
		if a != 0 {
			deriv = 1 / (a * math.Ln10)
		}
	}
	e := math.Abs(deriv)*ea + machineEps*math.Abs(v)
	return v, e
}

// chebNode evaluates the Chebyshev basis polynomial T_k(arg) via the
// Clenshaw-free closed recurrence T_k = 2*x*T_{k-1} - T_{k-2}.
type chebNode struct {
	k   int
	arg node
}

func (n chebNode) eval(point []float64) (float64, float64) {
	x, ex := n.arg.eval(point)
	if n.k == 0 {
		return 1, 0
	}
	if n.k == 1 {
		return x, ex
	}
	tPrev, tCur := 1.0, x
	for i := 2; i <= n.k; i++ {
		tPrev, tCur = tCur, 2*x*tCur-tPrev
	}
	// Error grows roughly linearly in k for the recurrence; this is a
	// conservative bound, not a tight one.
	return tCur, ex * float64(n.k) * (1 + math.Abs(tCur))
}
