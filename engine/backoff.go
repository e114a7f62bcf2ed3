package engine

import (
	"runtime"
	"time"
)

// Waiter is the idle strategy of a polling loop. Wait is called after every
// empty poll and Reset after every successful one. A Waiter belongs to one
// goroutine.
type Waiter interface {
	Wait()
	Reset()
}

// Backoff spins, then yields the processor, then sleeps.
type Backoff struct {
	cfg    BackoffConfig
	misses int
}

// NewBackoff returns a Backoff for cfg.
func NewBackoff(cfg BackoffConfig) *Backoff {
	return &Backoff{cfg: cfg}
}

// Wait implements Waiter.
func (b *Backoff) Wait() {
	b.misses++
	switch {
	case b.misses <= b.cfg.Spins:
		// hot: retry immediately
	case b.misses <= b.cfg.Spins+b.cfg.Yields || b.cfg.Sleep <= 0:
		runtime.Gosched()
	default:
		time.Sleep(b.cfg.Sleep)
	}
}

// Reset implements Waiter.
func (b *Backoff) Reset() { b.misses = 0 }

// pushWait pushes v, waiting with w while q is full. It returns false
// without pushing once stop reports true. A nil stop waits forever.
func pushWait[V any](q Queue[V], v V, w Waiter, stop func() bool) bool {
	for !q.TryPush(v) {
		if stop != nil && stop() {
			return false
		}
		w.Wait()
	}
	w.Reset()
	return true
}
