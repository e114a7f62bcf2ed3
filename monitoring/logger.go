// Package monitoring holds the process-wide structured logger.
package monitoring

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := New(os.Stderr, zerolog.InfoLevel)
	logger.Store(&l)
}

// Logger returns the package logger. It defaults to info level on stderr but
// may be replaced by SetLogger.
func Logger() *zerolog.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger. Passing nil installs a disabled logger.
func SetLogger(l *zerolog.Logger) {
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}
	logger.Store(l)
}

// New builds a logger writing to w. Terminals get the human-readable console
// format, everything else gets JSON lines.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
