// Package solve is the top-level entry point: it wires the threaded
// scheduler (package schedule) to the root/interval trackers (package
// track) behind a small functional-options Config, the same shape the
// teacher uses for its own window.Option configuration.
package solve

import (
	"io"
	"os"
	"time"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/check"
	"github.com/cwbudde/chebsolve/fn"
	"github.com/cwbudde/chebsolve/parseinput"
	"github.com/cwbudde/chebsolve/schedule"
	"github.com/cwbudde/chebsolve/subdiv"
	"github.com/cwbudde/chebsolve/track"
)

// Config holds everything a solve needs beyond the box and the system of
// functions. Build one with DefaultConfig or FromParameters, then refine
// it with Options.
type Config struct {
	NumThreads       int
	InitialDegree    int
	RelApproxTol     float64
	AbsApproxTol     float64
	// TargetTol is accepted from the input grammar and carried through for
	// callers that want to post-filter roots.Condition against it; the
	// solver's own acceptance test is GoodZerosTol (see linear.Tolerances).
	TargetTol        float64
	GoodZerosFactor  float64
	MinGoodZerosTol  float64
	MaxLevel         int
	CheckEvalError   bool
	TrackIntervals   bool
	TrackProgress    bool
	ProgressOutput   io.Writer
	ProgressInterval time.Duration
	UseTimer         bool
}

// DefaultConfig returns the configuration used when no parameter file or
// Option overrides it.
func DefaultConfig() Config {
	p := parseinput.DefaultGeneralParameters()
	return FromParameters(p)
}

// FromParameters builds a Config from parsed input-file parameters.
func FromParameters(p parseinput.GeneralParameters) Config {
	return Config{
		NumThreads:       p.NumThreads,
		InitialDegree:    p.ApproximationDegree,
		RelApproxTol:     p.RelApproxTol,
		AbsApproxTol:     p.AbsApproxTol,
		TargetTol:        p.TargetTol,
		GoodZerosFactor:  p.GoodZerosFactor,
		MinGoodZerosTol:  p.MinGoodZerosTol,
		MaxLevel:         p.MaxLevel,
		CheckEvalError:   true,
		TrackIntervals:   p.TrackIntervals,
		TrackProgress:    p.TrackProgress,
		ProgressOutput:   os.Stderr,
		ProgressInterval: 200 * time.Millisecond,
		UseTimer:         p.UseTimer,
	}
}

// Option mutates a Config in place, applied in order after it is built
// from defaults or parsed parameters.
type Option func(*Config)

// WithNumThreads overrides the worker count; n<=0 means runtime.NumCPU().
func WithNumThreads(n int) Option {
	return func(c *Config) { c.NumThreads = n }
}

// WithInitialDegree overrides the starting Chebyshev degree every task's
// functions are first approximated at.
func WithInitialDegree(d int) Option {
	return func(c *Config) { c.InitialDegree = d }
}

// WithMaxLevel overrides the maximum subdivision depth.
func WithMaxLevel(n int) Option {
	return func(c *Config) { c.MaxLevel = n }
}

// WithTracking turns the intervals.txt and progress-line diagnostics on
// or off.
func WithTracking(intervals, progress bool) Option {
	return func(c *Config) {
		c.TrackIntervals = intervals
		c.TrackProgress = progress
	}
}

// WithTimer turns elapsed-time measurement on or off.
func WithTimer(on bool) Option {
	return func(c *Config) { c.UseTimer = on }
}

// WithProgressOutput redirects the progress line; the CLI layer uses this
// to send it to stderr while roots.csv/residuals.csv go to stdout or
// files.
func WithProgressOutput(w io.Writer) Option {
	return func(c *Config) { c.ProgressOutput = w }
}

func (c Config) tolerances() subdiv.Tolerances {
	return subdiv.Tolerances{
		AbsApproxTol:    c.AbsApproxTol,
		RelApproxTol:    c.RelApproxTol,
		GoodZerosFactor: c.GoodZerosFactor,
		MinGoodZerosTol: c.MinGoodZerosTol,
		MaxLevel:        c.MaxLevel,
		MaxDegree:       64,
		CheckEvalError:  c.CheckEvalError,
	}
}

// Outcome is everything a solve produced: the roots and discharged
// subcells found across every worker, plus elapsed time when timing was
// requested.
type Outcome struct {
	Roots     *track.RootTracker
	Intervals *track.IntervalTracker
	Elapsed   time.Duration
}

// Solve finds every common root of funcs inside b, using cfg refined by
// opts. cfg is used as given: a zero Config is not replaced by
// DefaultConfig().
func Solve(b box.Box, funcs []fn.Function, cfg Config, opts ...Option) (*Outcome, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	roots := track.NewRootTracker(b.Rank())
	intervals := track.NewIntervalTracker()

	var timer *track.Timer
	if cfg.UseTimer {
		timer = track.NewTimer()
	}

	var progress *track.Progress
	if cfg.TrackProgress {
		out := cfg.ProgressOutput
		if out == nil {
			out = os.Stderr
		}
		progress = track.NewProgress(out, roots, intervals)
		progress.Start(cfg.ProgressInterval)
	}

	schedCfg := schedule.Config{
		NumThreads:    cfg.NumThreads,
		Rank:          b.Rank(),
		Tolerances:    cfg.tolerances(),
		InitialDegree: cfg.InitialDegree,
	}
	sched := schedule.NewScheduler(schedCfg, roots, intervalSinkOrNil(cfg, intervals))

	err := sched.Run(funcs, b)

	if progress != nil {
		progress.Stop()
	}
	if timer != nil {
		timer.Stop()
	}

	out := &Outcome{Roots: roots, Intervals: intervals}
	if timer != nil {
		out.Elapsed = timer.Elapsed()
	}
	return out, err
}

func intervalSinkOrNil(cfg Config, intervals *track.IntervalTracker) schedule.IntervalSink {
	if !cfg.TrackIntervals {
		return discardIntervals{}
	}
	return intervals
}

// discardIntervals implements schedule.IntervalSink by dropping every
// record, used when trackIntervals is disabled so the scheduler never
// pays for recording subcells nobody will read.
type discardIntervals struct{}

func (discardIntervals) AddInterval(box.Box, int, check.Method) {}
