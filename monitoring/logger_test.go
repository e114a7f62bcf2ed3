package monitoring

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWritesJSONToNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.DebugLevel)
	l.Info().Int("threads", 4).Msg("pool started")

	assert.Contains(t, buf.String(), `"threads":4`)
	assert.Contains(t, buf.String(), `"message":"pool started"`)
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.WarnLevel)
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestSetLogger(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)
	SetLogger(&l)
	Logger().Info().Msg("swapped")
	assert.Contains(t, buf.String(), "swapped")

	SetLogger(nil)
	assert.NotPanics(t, func() { Logger().Info().Msg("muted") })
	assert.NotContains(t, buf.String(), "muted")
}
