package engine

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sbl8/lattice/core"
)

// QueueKind selects the queue implementation used between the coordinator
// and the worker pool.
type QueueKind string

const (
	// QueueRing is the bounded lock-free MPMC ring. Idle goroutines poll it
	// with backoff.
	QueueRing QueueKind = "ring"
	// QueueChannel is a buffered Go channel.
	QueueChannel QueueKind = "channel"
)

// BackoffConfig tunes the idle strategy of pollers: Spins empty polls that
// retry immediately, then Yields polls that call runtime.Gosched, then a
// Sleep between every further poll.
type BackoffConfig struct {
	Spins  int
	Yields int
	Sleep  time.Duration
}

// DefaultBackoff favours dispatch latency over idle CPU.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{Spins: 64, Yields: 256, Sleep: 50 * time.Microsecond}
}

// Options configures a parallel executor.
type Options struct {
	Threads       int
	SliceLen      int
	Queue         QueueKind
	QueueCapacity int
	Backoff       BackoffConfig
}

// DefaultOptions provides sensible runtime defaults
func DefaultOptions() Options {
	return Options{
		Threads:       runtime.GOMAXPROCS(0),
		SliceLen:      core.DefaultSliceLen,
		Queue:         QueueRing,
		QueueCapacity: 1024,
		Backoff:       DefaultBackoff(),
	}
}

// normalized clamps counts to at least one and fills zero values from the
// defaults. The queue must be able to hold one death signal per worker and
// is otherwise capped at MaxQueueCapacity.
func (o Options) normalized() Options {
	o.Threads = max(o.Threads, 1)
	o.SliceLen = max(o.SliceLen, 1)
	if o.Queue == "" {
		o.Queue = QueueRing
	}
	o.QueueCapacity = max(min(o.QueueCapacity, MaxQueueCapacity), o.Threads+1, 2)
	if o.Backoff == (BackoffConfig{}) {
		o.Backoff = DefaultBackoff()
	}
	return o
}

func (o Options) String() string {
	return fmt.Sprintf("threads=%d slice=%d queue=%s/%d", o.Threads, o.SliceLen, o.Queue, o.QueueCapacity)
}
