// Package lattice is a parallel grid-compute engine and CPU benchmark.
//
// Lattice applies a per-cell kernel to every element of a dense grid buffer,
// producing the next generation into a second buffer of the same shape. The
// work runs either on the calling goroutine or across a persistent pool of
// worker goroutines fed through lock-free queues, and the two buffers swap
// roles every iteration.
//
// # Architecture Overview
//
//   - Buffers: flat generic storage with 1D/2D/3D shape and bounds-checked access
//   - Kernels: pure functions of (buffer, index, config), Game of Life and checkerboard
//   - Engine: single-thread, parallel and visual executors plus the iteration driver
//   - Config: TOML run parameters with machine-specific defaults
//
// # Basic Usage
//
//	// Write the defaults for this machine, edit, then run with them
//	gridbench -generate-config fast
//	gridbench -use-config fast
//
//	// From Go
//	exec := engine.NewParallel[kernels.Cell, kernels.LifeConfig](kernels.Life{}, engine.DefaultOptions())
//	defer exec.Close()
//	last, report := engine.Iterate(exec, 100, seed, kernels.LifeConfig{})
//
// # Package Structure
//
//   - core: grid buffer, shape math and binary snapshots
//   - kernels: kernel contract, Life and checkerboard
//   - engine: executors, work partitioning, queues and timing reports
//   - model: seed patterns
//   - config: run configuration files
//   - monitoring: structured logging
//   - cmd: command-line tools (gridbench, gridperf)
package lattice
