package engine

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRates(t *testing.T) {
	t.Parallel()
	r := Report{Iterations: 4, Cells: 100, Total: 2 * time.Second}
	assert.Equal(t, 500*time.Millisecond, r.PerIteration())
	assert.InDelta(t, 2.0, r.PerSecond(), 1e-9)
	assert.InDelta(t, 200.0, r.CellsPerSecond(), 1e-9)
	assert.Equal(t, "Time elapsed: 2.000s, 0.500000s per iteration, 2.00 iterations per second", r.String())

	var empty Report
	assert.Zero(t, empty.PerIteration())
	assert.Zero(t, empty.PerSecond())
	assert.Equal(t, Summary{}, empty.Summary())
}

func TestReportSummary(t *testing.T) {
	t.Parallel()
	r := newReport(KindParallel, 100, 1)
	assert.NotEqual(t, uuid.Nil, r.RunID)
	// reverse order to check the samples get sorted
	for i := 100; i >= 1; i-- {
		r.Samples = append(r.Samples, time.Duration(i)*time.Millisecond)
	}

	s := r.Summary()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 50*time.Millisecond, s.P50)
	assert.Equal(t, 99*time.Millisecond, s.P99)
	assert.InDelta(t, float64(50500*time.Microsecond), float64(s.Mean), float64(time.Microsecond))
	assert.Positive(t, s.StdDev)

	one := Report{Samples: []time.Duration{time.Second}}.Summary()
	assert.Equal(t, time.Second, one.Mean)
	assert.Zero(t, one.StdDev)
}

func TestReportLog(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	l := zerolog.New(&out)
	r := newReport(KindSingle, 2, 16)
	r.Total = time.Second
	r.Samples = append(r.Samples, 400*time.Millisecond, 600*time.Millisecond)
	r.Log(&l)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &fields))
	assert.Equal(t, "iterations complete", fields["message"])
	assert.Equal(t, "single", fields["executor"])
	assert.Equal(t, r.RunID.String(), fields["run"])
	assert.EqualValues(t, 2, fields["iterations"])
	assert.EqualValues(t, 16, fields["cells"])
}
