// Command gridperf sweeps executor settings and prints a throughput table.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/sbl8/lattice/config"
	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/engine"
	"github.com/sbl8/lattice/kernels"
	"github.com/sbl8/lattice/monitoring"
)

var (
	width   = flag.Int("width", 1024, "Buffer width")
	height  = flag.Int("height", 1024, "Buffer height")
	iter    = flag.Int("iter", 32, "Iterations per measurement")
	threads = flag.String("threads", "", "Comma-separated thread counts (default: powers of two up to GOMAXPROCS)")
	slices  = flag.String("slices", "1024,4096,16384,65536", "Comma-separated work slice lengths")
	queues  = flag.String("queues", "ring,channel", "Comma-separated queue kinds")
	verbose = flag.Bool("verbose", false, "Print timing distribution per run")
)

func main() {
	flag.Parse()
	monitoring.SetLogger(nil)
	_, _ = maxprocs.Set()

	threadCounts, err := parseInts(*threads, defaultThreads())
	if err != nil {
		fatalf("bad -threads: %v", err)
	}
	sliceLens, err := parseInts(*slices, nil)
	if err != nil {
		fatalf("bad -slices: %v", err)
	}
	var kinds []engine.QueueKind
	for _, q := range strings.Split(*queues, ",") {
		kind := engine.QueueKind(strings.TrimSpace(q))
		if kind != engine.QueueRing && kind != engine.QueueChannel {
			fatalf("unknown queue %q", q)
		}
		kinds = append(kinds, kind)
	}

	cfg := config.Default()
	cfg.Width, cfg.Height, cfg.Iterations = *width, *height, *iter
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Lattice Performance Analysis Tool\n")
	fmt.Printf("=================================\n")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("CPUs: %d (GOMAXPROCS %d)\n", runtime.NumCPU(), runtime.GOMAXPROCS(0))
	fmt.Printf("Memory: %.1f GiB\n", float64(memory.TotalMemory())/(1<<30))
	fmt.Printf("Buffer: %dx%d (%d cells)\n", cfg.Width, cfg.Height, cfg.Cells())
	fmt.Printf("Iterations: %d\n", cfg.Iterations)
	fmt.Printf("\n")

	start := checkerboard(cfg.Width, cfg.Height)
	sweep(os.Stdout, start, cfg.Iterations, threadCounts, sliceLens, kinds)
}

type measurement struct {
	label  string
	report engine.Report
}

func sweep(w io.Writer, start *core.Buffer[kernels.Cell], n int, threadCounts, sliceLens []int, kinds []engine.QueueKind) []measurement {
	var results []measurement

	single := engine.NewSingleThread[kernels.Cell, kernels.LifeConfig](kernels.Life{})
	_, base := engine.Iterate[kernels.Cell, kernels.LifeConfig](single, n, start.Clone(), kernels.LifeConfig{})
	results = append(results, measurement{label: "single", report: base})
	printHeader(w)
	printRow(w, "single", base, base)

	for _, kind := range kinds {
		for _, t := range threadCounts {
			for _, s := range sliceLens {
				exec := engine.NewParallel[kernels.Cell, kernels.LifeConfig](kernels.Life{}, engine.Options{
					Threads:  t,
					SliceLen: s,
					Queue:    kind,
				})
				_, r := engine.Iterate[kernels.Cell, kernels.LifeConfig](exec, n, start.Clone(), kernels.LifeConfig{})
				exec.Close()

				label := fmt.Sprintf("%s t=%d s=%d", kind, t, s)
				results = append(results, measurement{label: label, report: r})
				printRow(w, label, r, base)
			}
		}
	}
	fmt.Fprintf(w, "\n")
	return results
}

func printHeader(w io.Writer) {
	fmt.Fprintf(w, "%-28s %12s %12s %12s %10s\n", "Executor", "Per iter", "p99", "Mcells/s", "Speedup")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 78))
}

func printRow(w io.Writer, label string, r, base engine.Report) {
	speedup := 0.0
	if r.Total > 0 {
		speedup = float64(base.Total) / float64(r.Total)
	}
	s := r.Summary()
	fmt.Fprintf(w, "%-28s %12v %12v %12.2f %9.2fx\n",
		label, r.PerIteration(), s.P99, r.CellsPerSecond()/1e6, speedup)
	if *verbose {
		fmt.Fprintf(w, "  mean %v stddev %v min %v max %v\n", s.Mean, s.StdDev, s.Min, s.Max)
	}
}

func checkerboard(w, h int) *core.Buffer[kernels.Cell] {
	out := core.New2D(w, h, kernels.Dead)
	engine.NewSingleThread[kernels.Cell, kernels.CheckerboardConfig[kernels.Cell]](kernels.Checkerboard[kernels.Cell]{}).
		Compute(core.New2D(w, h, kernels.Dead), out.Data(), kernels.CheckerboardConfig[kernels.Cell]{ColorA: kernels.Alive, ColorB: kernels.Dead})
	return out
}

func defaultThreads() []int {
	var counts []int
	for t := 1; t <= runtime.GOMAXPROCS(0); t *= 2 {
		counts = append(counts, t)
	}
	if last := counts[len(counts)-1]; last != runtime.GOMAXPROCS(0) {
		counts = append(counts, runtime.GOMAXPROCS(0))
	}
	return counts
}

func parseInts(s string, fallback []int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if v < 1 {
			return nil, fmt.Errorf("%d must be at least 1", v)
		}
		out = append(out, v)
	}
	return out, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
