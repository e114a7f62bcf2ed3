package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sbl8/lattice/engine"
)

// writePlot charts the wall time of every iteration in milliseconds. The
// format follows the file extension.
func writePlot(path string, report engine.Report) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s executor, %d cells", report.Executor, report.Cells)
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Time (ms)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(report.Samples))
	for i, d := range report.Samples {
		pts[i] = plotter.XY{X: float64(i), Y: float64(d.Microseconds()) / 1000}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("timing line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("per iteration", line)

	if s := report.Summary(); len(report.Samples) > 1 {
		mean := plotter.NewFunction(func(float64) float64 { return float64(s.Mean.Microseconds()) / 1000 })
		mean.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(mean)
		p.Legend.Add("mean", mean)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
