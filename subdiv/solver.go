package subdiv

import (
	"github.com/cwbudde/chebsolve/approx"
	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/check"
	"github.com/cwbudde/chebsolve/fn"
	"github.com/cwbudde/chebsolve/linear"
)

// Tolerances bundles every numeric/boolean knob the Subdivision Solver
// algorithm reads from the parsed PARAMETERS block.
type Tolerances struct {
	AbsApproxTol    float64
	RelApproxTol    float64
	GoodZerosFactor float64
	MinGoodZerosTol float64
	MaxLevel        int
	MaxDegree       int
	CheckEvalError  bool
}

func (tol Tolerances) linearTolerances() linear.Tolerances {
	return linear.Tolerances{GoodZerosFactor: tol.GoodZerosFactor, MinGoodZerosTol: tol.MinGoodZerosTol}
}

// Sink is how a Solver hands work back to its owning worker: new subcells
// are pushed onto the shared task stack, discharged subcells and accepted
// roots are recorded on the trackers. A Solver never touches the stack or
// the trackers directly, so it stays agnostic of how they are threaded.
type Sink interface {
	// NewTask borrows a Task from the caller's pool; a recycled Task keeps
	// its old contents until Reset.
	NewTask() *Task
	// Push publishes t onto the shared task stack.
	Push(t *Task)
	// RecordRoot records an accepted root in world coordinates, alongside
	// the goodZerosTol it was accepted under (spec.md 4.6: max(minGoodZerosTol,
	// goodZerosFactor*sum(approximationError))), so a tracker can dedup
	// against roots discharged from neighbouring subcells.
	RecordRoot(point []float64, condition float64, b box.Box, level int, goodZerosTol float64)
	// RecordInterval records why a subcell was discharged without a root.
	RecordInterval(b box.Box, level int, method check.Method)
}

// boundAreaThreshold is the area a preconditioned bound must undercut,
// relative to the unit box's area of 2^rank, before it is accepted in place
// of pushing every quadratic-surviving subinterval: spec.md's "min(2^rank
// subintervals kept, 1.5^rank)".
func boundAreaThreshold(rank, keptSubintervals int) float64 {
	full := 1.0
	for i := 0; i < rank; i++ {
		full *= 2
	}
	capped := 1.0
	for i := 0; i < rank; i++ {
		capped *= 1.5
	}
	budget := float64(keptSubintervals)
	if capped < budget {
		budget = capped
	}
	return budget / full
}

// Solver drives one worker thread's Subdivision Solver: it owns a single
// Chebyshev Approximator (and therefore its FFT plans) and runs the
// algorithm of spec.md 4.6 against whatever Task its caller pops off the
// stack.
type Solver struct {
	rank int
	ca   *approx.ChebyshevApproximator
	tol  Tolerances
}

// NewSolver builds a Solver for functions of the given rank.
func NewSolver(rank int, tol Tolerances) *Solver {
	return &Solver{rank: rank, ca: approx.NewChebyshevApproximator(rank), tol: tol}
}

// Prewarm pre-instantiates every FFT plan the solver's lifetime could reach.
func (s *Solver) Prewarm(maxDegree int) { s.ca.Prewarm(maxDegree) }

// Solve runs the Subdivision Solver algorithm on task against funcs,
// pushing child tasks or recording a discharge/root through sink. funcs
// must all share the Solver's rank and be given in a fixed, stable order
// (goodDegrees is indexed positionally against it).
func (s *Solver) Solve(task *Task, funcs []fn.Function, sink Sink) {
	if task.Level > s.tol.MaxLevel {
		sink.RecordInterval(task.Box, task.Level, check.MethodTooDeep)
		return
	}

	approximations := make([]*approx.Approximation, len(funcs))
	goodDegrees := append([]int(nil), task.GoodDegrees...)

	for i, f := range funcs {
		absTol := s.tol.AbsApproxTol
		if s.tol.CheckEvalError {
			if floor := s.ca.AbsApproxTol(f, task.Box); floor > absTol {
				absTol = floor
			}
		}

		a, err := s.ca.Approximate(f, task.Box, goodDegrees[i])
		if err != nil {
			panic(err)
		}
		approximations[i] = a

		if !a.IsGoodApproximation(absTol, s.tol.RelApproxTol) {
			goodDegrees[i] = min(goodDegrees[i]+1, s.tol.MaxDegree)
			s.pushChild(task.Box, task.Level, goodDegrees, sink)
			return
		}

		if !a.SignChange && !check.KeepConstantTerm(a) {
			sink.RecordInterval(task.Box, task.Level, check.MethodConstantTerm)
			return
		}

		// Shrink the degree hint toward the minimum this function actually
		// needed, so a sibling subcell visited next does not redo work at
		// the full construction degree.
		a.TrimCoefficients(absTol, s.tol.RelApproxTol, 1)
		goodDegrees[i] = a.GoodDegree + 1
	}

	for _, a := range approximations {
		if !a.TrimCoefficients(s.tol.AbsApproxTol, s.tol.RelApproxTol, 1) {
			childDegrees := make([]int, len(approximations))
			for i, ap := range approximations {
				childDegrees[i] = min(ap.GoodDegree+1, s.tol.MaxDegree)
			}
			s.subdivide(approximations, task.Box, task.Level, childDegrees, sink)
			return
		}
	}

	allLinear := true
	for _, a := range approximations {
		if !a.IsLinear() {
			allLinear = false
			break
		}
	}

	if allLinear {
		root, ok := linear.Solve(approximations, s.tol.linearTolerances())
		if !ok {
			sink.RecordInterval(task.Box, task.Level, check.MethodLinearSolve)
			return
		}
		world := linear.ToWorld(root, task.Box)
		goodZerosTol := s.tol.linearTolerances().GoodZerosTol(approximations)
		sink.RecordRoot(world, root.Condition, task.Box, task.Level, goodZerosTol)
		return
	}

	childDegrees := make([]int, len(approximations))
	for i, a := range approximations {
		childDegrees[i] = min(a.GoodDegree+1, s.tol.MaxDegree)
	}
	s.subdivide(approximations, task.Box, task.Level, childDegrees, sink)
}

// pushChild requeues the same box and level with an updated degree hint:
// this is the "bump the degree and retry" path (spec.md 4.6 step 2c), which
// intentionally does not split the box, since the function that triggered
// it has not yet produced a trustworthy approximation to split on.
func (s *Solver) pushChild(b box.Box, level int, goodDegrees []int, sink Sink) {
	t := sink.NewTask()
	t.Reset(b, level, goodDegrees)
	sink.Push(t)
}

// subdivide runs the interval checker/bounder decision procedure of
// spec.md 4.4 over approximations and pushes whatever child subcells
// result, one level deeper than b.
//
// When approximations covers every function (numApprox == rank), the
// preconditioned bound is tried first; if it is non-singular and shrinks
// the box below boundAreaThreshold, the single shrunken box is pushed in
// place of the quadratic check's subintervals. Otherwise every subinterval
// the quadratic check does not eliminate is pushed; if the quadratic check
// eliminates all of them, the subcell is discharged as a quadratic-check
// miss (this can only happen if every function's quadratic model proved
// sign-definite on every subinterval, which the constant-term check above
// would ordinarily have already caught for a single function -- it is kept
// here as a safety net for the general n case).
func (s *Solver) subdivide(approximations []*approx.Approximation, b box.Box, level int, goodDegrees []int, sink Sink) {
	rank := s.rank

	if len(approximations) == rank {
		if lo, hi, ok := check.Bound(approximations); ok {
			kept := 0
			for _, k := range check.QuadraticCheck(approximations) {
				if k {
					kept++
				}
			}
			area := 1.0
			for i := 0; i < rank; i++ {
				area *= (hi[i] - lo[i]) / 2
			}
			if area < boundAreaThreshold(rank, kept) {
				if childBox, err := box.WithBounds(b, lo, hi); err == nil {
					s.pushChild(childBox, level+1, goodDegrees, sink)
					return
				}
			}
		}
	}

	keep := check.QuadraticCheck(approximations)
	pushed := false
	for pattern, k := range keep {
		if !k {
			continue
		}
		lo, hi := check.SubintervalBounds(rank, pattern)
		childBox, err := box.WithBounds(b, lo, hi)
		if err != nil {
			continue
		}
		s.pushChild(childBox, level+1, goodDegrees, sink)
		pushed = true
	}
	if !pushed {
		sink.RecordInterval(b, level, check.MethodQuadratic)
	}
}
