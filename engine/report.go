package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Report is the timing record of one Iterate call.
type Report struct {
	RunID      uuid.UUID
	Executor   Kind
	Iterations int
	Cells      int
	Total      time.Duration
	// Samples holds the wall time of each iteration in order.
	Samples []time.Duration
}

// Summary is the distribution of per-iteration times.
type Summary struct {
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
}

func newReport(kind Kind, iterations, cells int) Report {
	return Report{
		RunID:      uuid.New(),
		Executor:   kind,
		Iterations: iterations,
		Cells:      cells,
		Samples:    make([]time.Duration, 0, iterations),
	}
}

// PerIteration returns the mean wall time of one iteration.
func (r Report) PerIteration() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Iterations)
}

// PerSecond returns iterations per second.
func (r Report) PerSecond() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Total.Seconds()
}

// CellsPerSecond returns kernel applications per second.
func (r Report) CellsPerSecond() float64 {
	return r.PerSecond() * float64(r.Cells)
}

// Summary computes the distribution of Samples.
func (r Report) Summary() Summary {
	if len(r.Samples) == 0 {
		return Summary{}
	}
	xs := make([]float64, len(r.Samples))
	for i, d := range r.Samples {
		xs[i] = float64(d)
	}
	slices.Sort(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	return Summary{
		Mean:   time.Duration(mean),
		StdDev: time.Duration(std),
		P50:    time.Duration(stat.Quantile(0.5, stat.Empirical, xs, nil)),
		P99:    time.Duration(stat.Quantile(0.99, stat.Empirical, xs, nil)),
		Min:    time.Duration(xs[0]),
		Max:    time.Duration(xs[len(xs)-1]),
	}
}

func (r Report) String() string {
	return fmt.Sprintf("Time elapsed: %.3fs, %.6fs per iteration, %.2f iterations per second",
		r.Total.Seconds(), r.PerIteration().Seconds(), r.PerSecond())
}

// Log writes the report as one structured line.
func (r Report) Log(l *zerolog.Logger) {
	s := r.Summary()
	l.Info().
		Str("run", r.RunID.String()).
		Stringer("executor", r.Executor).
		Int("iterations", r.Iterations).
		Int("cells", r.Cells).
		Dur("total", r.Total).
		Dur("per_iteration", r.PerIteration()).
		Float64("iterations_per_sec", r.PerSecond()).
		Dur("p50", s.P50).
		Dur("p99", s.P99).
		Dur("stddev", s.StdDev).
		Msg("iterations complete")
}
