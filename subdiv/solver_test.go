package subdiv

import (
	"math"
	"testing"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/check"
	"github.com/cwbudde/chebsolve/fn"
)

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

type rootRecord struct {
	point        []float64
	condition    float64
	box          box.Box
	level        int
	goodZerosTol float64
}

type intervalRecord struct {
	box    box.Box
	level  int
	method check.Method
}

type fakeSink struct {
	pushed    []*Task
	roots     []rootRecord
	intervals []intervalRecord
}

func (s *fakeSink) NewTask() *Task { return &Task{} }
func (s *fakeSink) Push(t *Task)   { s.pushed = append(s.pushed, t) }
func (s *fakeSink) RecordRoot(point []float64, condition float64, b box.Box, level int, goodZerosTol float64) {
	s.roots = append(s.roots, rootRecord{point: append([]float64(nil), point...), condition: condition, box: b, level: level, goodZerosTol: goodZerosTol})
}
func (s *fakeSink) RecordInterval(b box.Box, level int, method check.Method) {
	s.intervals = append(s.intervals, intervalRecord{box: b, level: level, method: method})
}

func mustBox(t *testing.T, lo, hi []float64) box.Box {
	t.Helper()
	b, err := box.New(lo, hi)
	if err != nil {
		t.Fatalf("box.New: %v", err)
	}
	return b
}

func defaultTolerances() Tolerances {
	return Tolerances{
		AbsApproxTol:    1e-9,
		RelApproxTol:    1e-9,
		GoodZerosFactor: 10,
		MinGoodZerosTol: 1e-9,
		MaxLevel:        12,
		MaxDegree:       16,
	}
}

func TestSolveFindsRootForAlreadyLinearFunction(t *testing.T) {
	s := NewSolver(1, defaultTolerances())
	b := mustBox(t, []float64{-1}, []float64{1})
	funcs := []fn.Function{polyFunction{rank: 1, eval: func(p []float64) float64 { return p[0] - 0.3 }}}
	task := &Task{Box: b, Level: 0, GoodDegrees: []int{1}}

	sink := &fakeSink{}
	s.Solve(task, funcs, sink)

	if len(sink.roots) != 1 {
		t.Fatalf("expected one root, got %d (intervals=%v, pushed=%d)", len(sink.roots), sink.intervals, len(sink.pushed))
	}
	if math.Abs(sink.roots[0].point[0]-0.3) > 1e-7 {
		t.Fatalf("root = %v, want 0.3", sink.roots[0].point)
	}
}

func TestSolveBumpsDegreeWithoutSplittingBox(t *testing.T) {
	s := NewSolver(1, defaultTolerances())
	b := mustBox(t, []float64{-1}, []float64{1})
	funcs := []fn.Function{polyFunction{rank: 1, eval: func(p []float64) float64 { return p[0]*p[0]*p[0] - 0.5 }}}
	task := &Task{Box: b, Level: 3, GoodDegrees: []int{1}}

	sink := &fakeSink{}
	s.Solve(task, funcs, sink)

	if len(sink.pushed) != 1 {
		t.Fatalf("expected exactly one requeued task, got %d", len(sink.pushed))
	}
	got := sink.pushed[0]
	if got.Level != 3 {
		t.Fatalf("expected the same level on a degree bump, got %d", got.Level)
	}
	if got.Box.Lo[0] != b.Lo[0] || got.Box.Hi[0] != b.Hi[0] {
		t.Fatalf("expected the same box on a degree bump, got %v", got.Box)
	}
	if got.GoodDegrees[0] != 2 {
		t.Fatalf("expected the degree hint bumped to 2, got %d", got.GoodDegrees[0])
	}
}

func TestSolveRecordsTooDeepPastMaxLevel(t *testing.T) {
	tol := defaultTolerances()
	tol.MaxLevel = 2
	s := NewSolver(1, tol)
	b := mustBox(t, []float64{-1}, []float64{1})
	task := &Task{Box: b, Level: 3, GoodDegrees: []int{1}}

	sink := &fakeSink{}
	s.Solve(task, nil, sink)

	if len(sink.intervals) != 1 || sink.intervals[0].method != check.MethodTooDeep {
		t.Fatalf("expected a single TooDeep interval, got %v", sink.intervals)
	}
}

func TestSolveDiscardsConstantFunctionViaConstantTermCheck(t *testing.T) {
	s := NewSolver(1, defaultTolerances())
	b := mustBox(t, []float64{-1}, []float64{1})
	funcs := []fn.Function{polyFunction{rank: 1, eval: func(p []float64) float64 { return 5 }}}
	task := &Task{Box: b, Level: 0, GoodDegrees: []int{1}}

	sink := &fakeSink{}
	s.Solve(task, funcs, sink)

	if len(sink.intervals) != 1 || sink.intervals[0].method != check.MethodConstantTerm {
		t.Fatalf("expected a single ConstantTermCheck interval, got roots=%v intervals=%v pushed=%d", sink.roots, sink.intervals, len(sink.pushed))
	}
}
