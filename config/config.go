// Package config loads and saves benchmark run settings as TOML.
//
// A file only needs the keys it wants to change: Load decodes over Default,
// so omitted keys keep the values the tool would use on this machine.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pbnjay/memory"

	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/engine"
	"github.com/sbl8/lattice/kernels"
	"github.com/sbl8/lattice/model"
)

// DefaultName is the config file used when none is named.
const DefaultName = "bench_conf"

// SeedCheckerboard seeds the plane with the checkerboard kernel.
const SeedCheckerboard = "checkerboard"

const maxFileSize = 1 << 20

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the resolved set of run parameters.
type Config struct {
	ParallelExecution bool `toml:"parallel_execution"`
	ThreadCount       int  `toml:"thread_count"`
	WorkSliceLen      int  `toml:"work_slice_len"`

	Iterations int `toml:"iterations"`
	Width      int `toml:"width"`
	Height     int `toml:"height"`

	Queue         string   `toml:"queue"`
	QueueCapacity int      `toml:"queue_capacity"`
	BackoffSpins  int      `toml:"backoff_spins"`
	BackoffYields int      `toml:"backoff_yields"`
	BackoffSleep  Duration `toml:"backoff_sleep"`

	Seed string `toml:"seed"`
	Rule string `toml:"rule"`
}

// Duration is a time.Duration written as a string like "50µs".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the parameters used when no config file is given.
func Default() Config {
	opts := engine.DefaultOptions()
	return Config{
		ParallelExecution: true,
		ThreadCount:       runtime.GOMAXPROCS(0),
		WorkSliceLen:      core.DefaultSliceLen,
		Iterations:        1024,
		Width:             3840,
		Height:            2160,
		Queue:             string(opts.Queue),
		QueueCapacity:     opts.QueueCapacity,
		BackoffSpins:      opts.Backoff.Spins,
		BackoffYields:     opts.Backoff.Yields,
		BackoffSleep:      Duration(opts.Backoff.Sleep),
		Seed:              SeedCheckerboard,
		Rule:              kernels.Conway.String(),
	}
}

// FileName appends the .toml extension to name.
func FileName(name string) string {
	if name == "" {
		name = DefaultName
	}
	return name + ".toml"
}

// Load reads path over the defaults, then normalizes and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("unable to find or read file %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrInvalid, path, info.Size(), maxFileSize)
	}

	md, err := toml.DecodeFile(filepath.Clean(path), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write to file %s: %w", path, err)
	}
	return nil
}

// Normalize clamps counts that must be at least one and fills empty
// strings with their defaults.
func (c Config) Normalize() Config {
	c.ThreadCount = max(c.ThreadCount, 1)
	c.WorkSliceLen = max(c.WorkSliceLen, 1)
	c.QueueCapacity = max(c.QueueCapacity, 1)
	c.BackoffSpins = max(c.BackoffSpins, 0)
	c.BackoffYields = max(c.BackoffYields, 0)
	if c.Queue == "" {
		c.Queue = string(engine.QueueRing)
	}
	if c.Seed == "" {
		c.Seed = SeedCheckerboard
	}
	if c.Rule == "" {
		c.Rule = kernels.Conway.String()
	}
	return c
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: buffer must be at least 1x1, got %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalid, c.Iterations)
	case c.QueueCapacity > engine.MaxQueueCapacity:
		return fmt.Errorf("%w: queue_capacity must be at most %d, got %d", ErrInvalid, engine.MaxQueueCapacity, c.QueueCapacity)
	case c.BackoffSleep < 0:
		return fmt.Errorf("%w: backoff_sleep must not be negative, got %s", ErrInvalid, time.Duration(c.BackoffSleep))
	}

	switch engine.QueueKind(c.Queue) {
	case engine.QueueRing, engine.QueueChannel:
	default:
		return fmt.Errorf("%w: unknown queue %q", ErrInvalid, c.Queue)
	}
	if _, err := kernels.ParseRule(c.Rule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Seed != SeedCheckerboard {
		p, err := model.Lookup(c.Seed)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if p.Width > c.Width || p.Height > c.Height {
			return fmt.Errorf("%w: seed %s (%dx%d) larger than %dx%d buffer", ErrInvalid, p.Name, p.Width, p.Height, c.Width, c.Height)
		}
	}

	if total := memory.TotalMemory(); total > 0 && c.BufferBytes() > total {
		return fmt.Errorf("%w: %dx%d needs %d bytes, machine has %d", ErrInvalid, c.Width, c.Height, c.BufferBytes(), total)
	}
	return nil
}

// Cells returns the number of cells in one buffer.
func (c Config) Cells() int { return c.Width * c.Height }

// BufferBytes is the memory held by the two ping-pong buffers.
func (c Config) BufferBytes() uint64 {
	return 2 * uint64(c.Width) * uint64(c.Height)
}

// Threads is the number of threads a run will use.
func (c Config) Threads() int {
	if c.ParallelExecution {
		return c.ThreadCount
	}
	return 1
}

// LifeRule returns the parsed rule. Call after Validate.
func (c Config) LifeRule() kernels.Rule {
	r, err := kernels.ParseRule(c.Rule)
	if err != nil {
		return kernels.Conway
	}
	return r
}

// LifeConfig returns the Life kernel configuration for c's rule.
func (c Config) LifeConfig() kernels.LifeConfig {
	rule := c.LifeRule()
	return kernels.LifeConfig{Rule: &rule}
}

// EngineOptions converts c into parallel executor options.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		Threads:       c.ThreadCount,
		SliceLen:      c.WorkSliceLen,
		Queue:         engine.QueueKind(c.Queue),
		QueueCapacity: c.QueueCapacity,
		Backoff: engine.BackoffConfig{
			Spins:  c.BackoffSpins,
			Yields: c.BackoffYields,
			Sleep:  time.Duration(c.BackoffSleep),
		},
	}
}
