// Command gridbench benchmarks the CPU by running Conway's Game of Life on a
// large plane for a fixed number of generations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/term"

	"github.com/sbl8/lattice/config"
	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/engine"
	"github.com/sbl8/lattice/kernels"
	"github.com/sbl8/lattice/model"
	"github.com/sbl8/lattice/monitoring"
)

const version = "1.0.0"

const helpText = `
A tool for benchmarking CPUs using Conway's Game of Life.
It will run for the specified iteration count, simulating Game of Life generations.

You can configure the run parameters using the -generate-config and -use-config flags.

usage:
    gridbench [flags] [name] [flags]

    -generate-config [name]
        generate a config file used for benchmarking
        each parameter is what the tool would use on this machine when launching without flags
        the name is optional, the tool writes bench_conf.toml by default
    -use-config [name]
        use a config file instead of the default parameters
        any parameter may be omitted if the default is preferred
        the name is optional, the tool reads bench_conf.toml by default
`

type cliOptions struct {
	generateConfig bool
	useConfig      bool
	visualize      bool
	fps            int
	plotPath       string
	snapshotPath   string
	logLevel       string
	showVersion    bool
	name           string
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("gridbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.generateConfig, "generate-config", false, "Write a config file with this machine's defaults and exit")
	fs.BoolVar(&o.useConfig, "use-config", false, "Read run parameters from a config file")
	fs.BoolVar(&o.visualize, "visualize", false, "Render every generation to the terminal")
	fs.IntVar(&o.fps, "fps", 10, "Target frames per second when visualizing")
	fs.StringVar(&o.plotPath, "plot", "", "Write a per-iteration timing chart (.png, .svg or .pdf)")
	fs.StringVar(&o.snapshotPath, "snapshot", "", "Write the final generation to a binary snapshot")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&o.showVersion, "version", false, "Show version information")
	fs.Usage = func() {
		fmt.Fprintln(stderr, strings.TrimSpace(helpText))
		fmt.Fprintln(stderr, "\nflags:")
		fs.PrintDefaults()
	}

	// flag stops at the first positional, so resume parsing after each one
	// to accept flags on either side of the name.
	var names []string
	for {
		if err := fs.Parse(args); err != nil {
			return o, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		names = append(names, rest[0])
		args = rest[1:]
	}

	switch {
	case len(names) > 1:
		return o, fmt.Errorf("unknown argument '%s', run with -help for more info", names[1])
	case len(names) == 1:
		if !o.generateConfig && !o.useConfig {
			return o, fmt.Errorf("unknown argument '%s', run with -help for more info", names[0])
		}
		o.name = names[0]
	}
	if o.generateConfig && o.useConfig {
		return o, errors.New("-generate-config and -use-config are mutually exclusive")
	}
	return o, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Fatal Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "gridbench v%s\n", version)
		fmt.Fprintf(stdout, "Built with Go %s\n", runtime.Version())
		return nil
	}

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("bad -log-level: %w", err)
	}
	logger := monitoring.New(stderr, level)
	monitoring.SetLogger(&logger)
	tuneProcess(&logger)

	cfg := config.Default()
	switch {
	case opts.generateConfig:
		name := config.FileName(opts.name)
		if err := config.Save(name, cfg); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Generated config file '%s', exiting.\n", name)
		return nil
	case opts.useConfig:
		name := config.FileName(opts.name)
		if cfg, err = config.Load(name); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Using config file '%s'\n", name)
	case opts.visualize:
		cfg = fitTerminal(cfg, stdout)
	}

	return bench(cfg, opts, stdout)
}

func tuneProcess(logger *zerolog.Logger) {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	})); err != nil {
		logger.Debug().Err(err).Msg("GOMAXPROCS left unchanged")
	}
	if limit, err := memlimit.SetGoMemLimitWithOpts(memlimit.WithRatio(0.9)); err != nil {
		logger.Debug().Err(err).Msg("GOMEMLIMIT left unchanged")
	} else {
		logger.Debug().Int64("limit", limit).Msg("GOMEMLIMIT set")
	}
}

// fitTerminal shrinks the plane to the terminal when stdout is one.
func fitTerminal(cfg config.Config, stdout io.Writer) config.Config {
	f, ok := stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return cfg
	}
	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return cfg
	}
	cfg.Width = max(cols/engine.CellWidth, 1)
	cfg.Height = max(rows-1, 1)
	return cfg
}

func bench(cfg config.Config, opts cliOptions, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := monitoring.Logger()

	fmt.Fprintf(stdout, "Launching benchmark for %d iterations of a %dx%d buffer with %d thread(s)\n",
		cfg.Iterations, cfg.Width, cfg.Height, cfg.Threads())
	logger.Debug().
		Str("go", runtime.Version()).
		Int("cpus", runtime.NumCPU()).
		Uint64("memory", memory.TotalMemory()).
		Uint64("buffers", cfg.BufferBytes()).
		Msg("system")

	initial, err := seed(cfg)
	if err != nil {
		return err
	}

	var exec engine.Executor[kernels.Cell, kernels.LifeConfig]
	if opts.visualize {
		exec = engine.NewVisual[kernels.Cell, kernels.LifeConfig](kernels.Life{}, stdout, opts.fps,
			func(c kernels.Cell) string { return string(c.Glyph()) })
	} else {
		exec = engine.New[kernels.Cell, kernels.LifeConfig](cfg.ParallelExecution, kernels.Life{}, cfg.EngineOptions())
	}
	defer exec.Close()

	final, report := engine.Iterate(exec, cfg.Iterations, initial, cfg.LifeConfig())
	fmt.Fprintln(stdout, report)

	if p, ok := exec.(*engine.Parallel[kernels.Cell, kernels.LifeConfig]); ok {
		s := p.Stats()
		logger.Debug().
			Int64("units", s.Units).
			Int64("slice_allocs", s.SliceAllocs).
			Int64("slice_reuses", s.SliceReuses).
			Msg("executor stats")
	}
	logger.Info().Int("population", kernels.Population(final)).Msg("final generation")

	if opts.snapshotPath != "" {
		if err := writeSnapshot(opts.snapshotPath, final); err != nil {
			return err
		}
	}
	if opts.plotPath != "" && len(report.Samples) > 0 {
		if err := writePlot(opts.plotPath, report); err != nil {
			return err
		}
		logger.Info().Str("path", opts.plotPath).Msg("timing chart written")
	}
	return nil
}

// seed builds generation zero. The checkerboard is computed single-threaded
// so that only the Life iterations are timed.
func seed(cfg config.Config) (*core.Buffer[kernels.Cell], error) {
	initial := core.New2D(cfg.Width, cfg.Height, kernels.Dead)
	if cfg.Seed == config.SeedCheckerboard {
		blank := core.New2D(cfg.Width, cfg.Height, kernels.Dead)
		board := engine.NewSingleThread[kernels.Cell, kernels.CheckerboardConfig[kernels.Cell]](kernels.Checkerboard[kernels.Cell]{})
		board.Compute(blank, initial.Data(), kernels.CheckerboardConfig[kernels.Cell]{
			ColorA: kernels.Alive,
			ColorB: kernels.Dead,
			Width:  cfg.Width,
		})
		return initial, nil
	}

	p, err := model.Lookup(cfg.Seed)
	if err != nil {
		return nil, err
	}
	if err := model.Center(initial, p); err != nil {
		return nil, err
	}
	return initial, nil
}

func writeSnapshot(path string, buf *core.Buffer[kernels.Cell]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := core.WriteBuffer(f, buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	monitoring.Logger().Info().Str("path", path).Int("cells", buf.Len()).Msg("snapshot written")
	return nil
}
