// Command chebsolve finds every real root of a system of smooth functions
// inside an axis-aligned box, described by an input file in the
// PARAMETERS;/INTERVAL;/FUNCTIONS; grammar.
//
// Usage:
//
//	chebsolve [flags] input-file
//
// Examples:
//
//	chebsolve system.txt
//	chebsolve -threads 8 -out results system.txt
//	chebsolve -max-level 20 -track-intervals system.txt
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cwbudde/chebsolve/parseinput"
	"github.com/cwbudde/chebsolve/solve"
	"github.com/cwbudde/chebsolve/track"
)

func main() {
	threads := flag.Int("threads", 0, "worker thread count (0 keeps the file's value; negative uses all CPUs)")
	maxLevel := flag.Int("max-level", 0, "override maxLevel from the input file (0 keeps the file's value)")
	trackIntervals := flag.Bool("track-intervals", false, "force-enable intervals.txt output")
	trackProgress := flag.Bool("track-progress", false, "force-enable the live progress line")
	useTimer := flag.Bool("timer", false, "force-enable timing.txt output")
	outDir := flag.String("out", ".", "directory to write roots.csv/residuals.csv/intervals.txt/timing.txt into")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chebsolve [flags] input-file\n\n")
		fmt.Fprintf(os.Stderr, "Finds every real root of the function system described by input-file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chebsolve system.txt\n")
		fmt.Fprintf(os.Stderr, "  chebsolve -threads 8 -out results system.txt\n")
		fmt.Fprintf(os.Stderr, "  chebsolve -max-level 20 -track-intervals system.txt\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *outDir, *threads, *maxLevel, *trackIntervals, *trackProgress, *useTimer); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outDir string, threads, maxLevel int, trackIntervals, trackProgress, useTimer bool) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	parsed, err := parseinput.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing input file: %w", err)
	}

	cfg := solve.FromParameters(parsed.Params)
	var opts []solve.Option
	if threads != 0 {
		opts = append(opts, solve.WithNumThreads(threads))
	}
	if maxLevel != 0 {
		opts = append(opts, solve.WithMaxLevel(maxLevel))
	}
	if trackIntervals || trackProgress {
		opts = append(opts, solve.WithTracking(trackIntervals || cfg.TrackIntervals, trackProgress || cfg.TrackProgress))
	}
	if useTimer {
		opts = append(opts, solve.WithTimer(true))
	}

	start := time.Now()
	out, err := solve.Solve(parsed.Box, parsed.Funcs, cfg, opts...)
	if err != nil {
		return fmt.Errorf("solving: %w", err)
	}
	elapsed := time.Since(start)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeFile(outDir, "roots.csv", out.Roots.WriteRootsCSV); err != nil {
		return err
	}
	if err := writeFile(outDir, "residuals.csv", func(w io.Writer) error {
		return out.Roots.WriteResidualsCSV(w, parsed.Funcs)
	}); err != nil {
		return err
	}
	if cfg.TrackIntervals || trackIntervals {
		if err := writeFile(outDir, "intervals.txt", out.Intervals.WriteIntervalsTXT); err != nil {
			return err
		}
	}
	if cfg.UseTimer || useTimer {
		numWorkers := parsed.Params.NumThreads
		if threads != 0 {
			numWorkers = threads
		}
		if numWorkers <= 0 {
			numWorkers = runtime.NumCPU()
		}
		if err := writeFile(outDir, "timing.txt", func(w io.Writer) error {
			return track.WriteTimingTXT(w, elapsed, numWorkers, out.Roots.Len(), out.Intervals.CountByMethod())
		}); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "chebsolve: found %d root(s) in %s\n", out.Roots.Len(), elapsed)
	return nil
}

func writeFile(dir, name string, write func(io.Writer) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
