// Package subdiv implements the Subdivision Solver: the per-task algorithm
// that approximates every function on one subcell, runs the cheap interval
// checks, trims to degree one where possible, and either delegates to the
// linear endgame or pushes child subcells for further work.
package subdiv

import "github.com/cwbudde/chebsolve/box"

// Task is one node of the work graph: a subcell box, its subdivision depth,
// and the starting approximation degree the Chebyshev Approximator should
// try for each function, learned from the parent task. Task is always
// borrowed from a per-thread pool.Pool[Task] and reset in place rather than
// allocated fresh, so pointers handed to the task stack stay valid for the
// pool's lifetime.
type Task struct {
	Box         box.Box
	Level       int
	GoodDegrees []int
}

// Reset overwrites t in place for reuse: b/level are copied directly,
// GoodDegrees is copied into t's existing backing array when it already has
// enough capacity (the common case once the pool's slabs have warmed up).
func (t *Task) Reset(b box.Box, level int, goodDegrees []int) {
	t.Box = b
	t.Level = level
	if cap(t.GoodDegrees) >= len(goodDegrees) {
		t.GoodDegrees = t.GoodDegrees[:len(goodDegrees)]
	} else {
		t.GoodDegrees = make([]int, len(goodDegrees))
	}
	copy(t.GoodDegrees, goodDegrees)
}
