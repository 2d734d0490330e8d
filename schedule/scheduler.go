// Package schedule implements the Threaded Solver (spec.md 4.7): a pool of
// worker goroutines draining a single lock-free task stack, each running
// its own Subdivision Solver, Chebyshev/Interval Approximators and FFT
// plans, with termination detected via a shared pending-task counter.
package schedule

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/check"
	"github.com/cwbudde/chebsolve/fn"
	"github.com/cwbudde/chebsolve/internal/pool"
	"github.com/cwbudde/chebsolve/subdiv"
)

// ErrWorkerPanic wraps whatever a worker goroutine recovered from; Run
// never lets a panic escape the package.
var ErrWorkerPanic = errors.New("schedule: worker panicked")

// RootSink receives accepted roots in world coordinates. Implementations
// must be safe for concurrent calls from every worker goroutine.
type RootSink interface {
	AddRoot(point []float64, condition float64, b box.Box, level int, goodZerosTol float64)
}

// IntervalSink receives every subcell discharged without a root.
// Implementations must be safe for concurrent calls from every worker
// goroutine.
type IntervalSink interface {
	AddInterval(b box.Box, level int, method check.Method)
}

// Config bundles the scheduler's thread count and the tolerances every
// worker's Subdivision Solver is built with.
type Config struct {
	NumThreads    int // <=0 means runtime.NumCPU()
	Rank          int
	Tolerances    subdiv.Tolerances
	InitialDegree int
}

func (c Config) numWorkers() int {
	if c.NumThreads > 0 {
		return c.NumThreads
	}
	return runtime.NumCPU()
}

// Scheduler owns the shared task stack and the bookkeeping needed to
// detect when every worker has run out of work.
type Scheduler struct {
	cfg       Config
	stack     *pool.Stack[subdiv.Task]
	pending   atomic.Int64
	killed    atomic.Bool
	errOnce   sync.Once
	err       error
	roots     RootSink
	intervals IntervalSink
}

// NewScheduler builds a Scheduler that will report accepted roots and
// discharged intervals to roots/intervals.
func NewScheduler(cfg Config, roots RootSink, intervals IntervalSink) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		stack:     pool.NewStack[subdiv.Task](),
		roots:     roots,
		intervals: intervals,
	}
}

// Run seeds the task stack with one subcell (b, level 0, every function
// starting at cfg.InitialDegree), spawns cfg.numWorkers() workers, and
// blocks until the stack is drained and every worker has exited. It
// returns the first misuse error (ErrWorkerPanic-wrapped) any worker
// raised, if any.
func (s *Scheduler) Run(funcs []fn.Function, b box.Box) error {
	goodDegrees := make([]int, len(funcs))
	for i := range goodDegrees {
		goodDegrees[i] = s.cfg.InitialDegree
	}

	seedTasks := pool.New[subdiv.Task](1)
	seedNodes := pool.NewNodePool[subdiv.Task](1)
	seed := seedTasks.Get()
	seed.Reset(b, 0, goodDegrees)
	s.pending.Add(1)
	s.stack.Push(seedNodes, seed)

	numWorkers := s.cfg.numWorkers()
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			s.runWorker(funcs)
		}()
	}
	wg.Wait()

	return s.err
}

// runWorker is one goroutine's pop/solve/release loop (spec.md 4.7): it
// owns its own task pool, stack-node pool, and Subdivision Solver (and
// therefore its own FFT plans), so no mutable state but the stack, the
// pending-task counter and the kill flag is ever touched by more than one
// goroutine.
func (s *Scheduler) runWorker(funcs []fn.Function) {
	defer func() {
		if r := recover(); r != nil {
			s.killed.Store(true)
			s.errOnce.Do(func() {
				if e, ok := r.(error); ok {
					s.err = fmt.Errorf("%w: %w", ErrWorkerPanic, e)
				} else {
					s.err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
				}
			})
		}
	}()

	taskPool := pool.New[subdiv.Task](16)
	nodePool := pool.NewNodePool[subdiv.Task](16)
	solver := subdiv.NewSolver(s.cfg.Rank, s.cfg.Tolerances)
	solver.Prewarm(s.cfg.Tolerances.MaxDegree)

	sink := &workerSink{
		taskPool:  taskPool,
		nodePool:  nodePool,
		stack:     s.stack,
		pending:   &s.pending,
		roots:     s.roots,
		intervals: s.intervals,
	}

	for {
		if s.killed.Load() {
			return
		}
		task := s.stack.Pop(nodePool)
		if task == nil {
			if s.pending.Load() == 0 {
				return
			}
			runtime.Gosched()
			continue
		}

		solver.Solve(task, funcs, sink)
		taskPool.Put(task)
		s.pending.Add(-1)
	}
}

// workerSink adapts one worker's pools and the scheduler's shared stack
// and trackers to the subdiv.Sink interface.
type workerSink struct {
	taskPool  *pool.Pool[subdiv.Task]
	nodePool  *pool.NodePool[subdiv.Task]
	stack     *pool.Stack[subdiv.Task]
	pending   *atomic.Int64
	roots     RootSink
	intervals IntervalSink
}

func (w *workerSink) NewTask() *subdiv.Task { return w.taskPool.Get() }

// Push publishes t and marks it pending before it becomes visible on the
// stack, so a worker that later observes an empty stack and zero pending
// tasks can never be racing a sibling that has pushed but not yet counted
// a task.
func (w *workerSink) Push(t *subdiv.Task) {
	w.pending.Add(1)
	w.stack.Push(w.nodePool, t)
}

func (w *workerSink) RecordRoot(point []float64, condition float64, b box.Box, level int, goodZerosTol float64) {
	w.roots.AddRoot(point, condition, b, level, goodZerosTol)
}

func (w *workerSink) RecordInterval(b box.Box, level int, method check.Method) {
	w.intervals.AddInterval(b, level, method)
}
