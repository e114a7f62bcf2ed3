package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/kernels"
	"github.com/sbl8/lattice/monitoring"
)

// Stats tracks executor activity.
type Stats struct {
	Computes    int64
	Units       int64
	SliceAllocs int64
	SliceReuses int64
}

// Parallel distributes compute calls over a pool of persistent worker
// goroutines. Workers are started by NewParallel and live until Close.
// Compute calls are serialized.
type Parallel[T, C any] struct {
	kernel kernels.Kernel[T, C]
	opts   Options

	work    Queue[signal[T, C]]
	results Queue[workResult[T]]
	group   errgroup.Group
	live    atomic.Int32
	failure atomic.Pointer[WorkerError]

	mu     sync.Mutex
	pool   *slicePool[T]
	stats  Stats
	closed bool
}

// NewParallel starts opts.Threads workers applying k.
func NewParallel[T, C any](k kernels.Kernel[T, C], opts Options) *Parallel[T, C] {
	opts = opts.normalized()
	e := &Parallel[T, C]{
		kernel:  k,
		opts:    opts,
		work:    NewQueue[signal[T, C]](opts.Queue, opts.QueueCapacity),
		results: NewQueue[workResult[T]](opts.Queue, opts.QueueCapacity),
		pool:    newSlicePool[T](opts.SliceLen),
	}
	for id := range opts.Threads {
		e.live.Add(1)
		e.group.Go(func() error { return e.worker(id) })
	}
	monitoring.Logger().Debug().Stringer("options", opts).Msg("worker pool started")
	return e
}

// Threads returns the number of workers.
func (e *Parallel[T, C]) Threads() int { return e.opts.Threads }

// SliceLen returns the number of cells per work unit.
func (e *Parallel[T, C]) SliceLen() int { return e.opts.SliceLen }

// Kind implements Executor.
func (e *Parallel[T, C]) Kind() Kind { return KindParallel }

// Stats returns a snapshot of the executor counters.
func (e *Parallel[T, C]) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.SliceAllocs = e.pool.allocs
	s.SliceReuses = e.pool.reuses
	return s
}

// Compute implements Executor. It panics if a worker has failed or if the
// input buffer is still referenced once every unit has been collected.
func (e *Parallel[T, C]) Compute(in *core.Buffer[T], out []T, conf C) *core.Buffer[T] {
	checkShapes(in, out)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		panic("engine: Compute called on a closed executor")
	}
	e.checkWorkers()

	buf := Share(in)
	cfg := Share(conf)
	spans := Partition(in.Len(), e.opts.SliceLen)
	wait := NewBackoff(e.opts.Backoff)

	received := 0
	for _, span := range spans {
		sig := signal[T, C]{
			kind: signalWork,
			unit: &workUnit[T, C]{
				buf:  buf.Acquire(),
				conf: cfg.Acquire(),
				span: span,
				out:  e.pool.get(),
			},
		}
		// Results are drained while the work queue is full so that workers
		// blocked on a full result queue can make progress.
		for !e.work.TryPush(sig) {
			received += e.collect(out)
			e.checkWorkers()
			wait.Wait()
		}
		wait.Reset()
	}

	for received < len(spans) {
		if n := e.collect(out); n > 0 {
			received += n
			wait.Reset()
			continue
		}
		e.checkWorkers()
		wait.Wait()
	}

	e.stats.Computes++
	e.stats.Units += int64(len(spans))

	cfg.Release()
	result, err := buf.Unwrap()
	if err != nil {
		monitoring.Logger().Error().Err(err).Msg("input buffer still shared after compute")
		panic(err)
	}
	return result
}

// collect copies every available result into out and recycles its slice.
func (e *Parallel[T, C]) collect(out []T) int {
	n := 0
	for {
		r, ok := e.results.TryPop()
		if !ok {
			return n
		}
		if len(r.out) != r.span.Count {
			panic(&InvariantError{Msg: fmt.Sprintf("unit at %d returned %d cells, want %d", r.span.Offset, len(r.out), r.span.Count)})
		}
		copy(out[r.span.Offset:r.span.End()], r.out)
		e.pool.put(r.out)
		n++
	}
}

func (e *Parallel[T, C]) checkWorkers() {
	if err := e.failure.Load(); err != nil {
		panic(err)
	}
}

// Close stops every worker and waits for them to exit. It panics if any
// worker failed. Close is idempotent.
func (e *Parallel[T, C]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true

	if e.failed() {
		e.discard()
	}
	// A worker that panicked never pops its Death signal, so stop pushing
	// once nobody is left to receive one.
	wait := NewBackoff(e.opts.Backoff)
	gone := func() bool { return e.live.Load() == 0 }
	for range e.opts.Threads {
		if !pushWait(e.work, signal[T, C]{kind: signalDeath}, wait, gone) {
			break
		}
	}
	if err := e.group.Wait(); err != nil {
		monitoring.Logger().Error().Err(err).Msg("worker pool stopped with errors")
		panic(err)
	}
	monitoring.Logger().Debug().Int("threads", e.opts.Threads).Msg("worker pool stopped")
}

// discard drops every unit still queued from a failed compute.
func (e *Parallel[T, C]) discard() {
	n := 0
	for {
		sig, ok := e.work.TryPop()
		if !ok {
			break
		}
		if sig.kind == signalWork {
			sig.unit.finish()
			n++
		}
	}
	if n > 0 {
		monitoring.Logger().Debug().Int("units", n).Msg("discarded queued work")
	}
}

func (e *Parallel[T, C]) worker(id int) (err error) {
	defer e.live.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			werr := &WorkerError{Worker: id, Cause: r}
			e.failure.CompareAndSwap(nil, werr)
			monitoring.Logger().Error().Int("worker", id).Interface("cause", r).Msg("kernel panicked")
			err = werr
		}
	}()

	wait := NewBackoff(e.opts.Backoff)
	for {
		sig, ok := e.work.TryPop()
		if !ok {
			wait.Wait()
			continue
		}
		wait.Reset()

		if sig.kind == signalDeath {
			return nil
		}
		u := sig.unit
		if e.failed() {
			// The coordinator has given up on this compute; drop the unit.
			u.finish()
			continue
		}
		e.apply(u)
		e.deliver(u.finish(), wait)
	}
}

func (e *Parallel[T, C]) apply(u *workUnit[T, C]) {
	buf, conf := u.buf.Value(), u.conf.Value()
	for i := u.span.Offset; i < u.span.End(); i++ {
		u.out = append(u.out, e.kernel.Apply(buf, i, conf))
	}
}

// deliver pushes r to the result queue, giving up once a worker has failed
// since nothing will drain the queue after that.
func (e *Parallel[T, C]) deliver(r workResult[T], w Waiter) {
	pushWait(e.results, r, w, e.failed)
}

func (e *Parallel[T, C]) failed() bool { return e.failure.Load() != nil }
