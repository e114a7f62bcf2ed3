package engine

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRingQueueCapacity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		requested int
		want      int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 4},
		{1000, 1024},
		{1024, 1024},
		{MaxQueueCapacity + 1, MaxQueueCapacity},
		{math.MaxInt, MaxQueueCapacity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewRingQueue[int](tt.requested).Cap(), "requested %d", tt.requested)
	}
}

func TestChanQueueCapacity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, cap(NewChanQueue[int](0).ch))
	assert.Equal(t, MaxQueueCapacity, cap(NewChanQueue[int](math.MaxInt).ch))
}

func TestQueueFIFO(t *testing.T) {
	t.Parallel()
	for _, kind := range []QueueKind{QueueRing, QueueChannel} {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			q := NewQueue[int](kind, 4)

			_, ok := q.TryPop()
			assert.False(t, ok, "pop from empty queue")

			for i := range 4 {
				require.True(t, q.TryPush(i))
			}
			assert.False(t, q.TryPush(99), "push to full queue")

			for i := range 4 {
				v, ok := q.TryPop()
				require.True(t, ok)
				assert.Equal(t, i, v)
			}
			_, ok = q.TryPop()
			assert.False(t, ok)

			// wrap around the ring several times
			for i := range 50 {
				require.True(t, q.TryPush(i))
				v, ok := q.TryPop()
				require.True(t, ok)
				require.Equal(t, i, v)
			}
		})
	}
}

func TestQueueConcurrent(t *testing.T) {
	t.Parallel()
	const (
		producers = 4
		consumers = 4
		perProd   = 5000
	)
	for _, kind := range []QueueKind{QueueRing, QueueChannel} {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			q := NewQueue[int](kind, 64)
			var sum, count atomic.Int64

			var prod errgroup.Group
			for p := range producers {
				prod.Go(func() error {
					w := NewBackoff(DefaultBackoff())
					for i := range perProd {
						pushWait(q, p*perProd+i+1, w, nil)
					}
					return nil
				})
			}

			var cons errgroup.Group
			for range consumers {
				cons.Go(func() error {
					w := NewBackoff(DefaultBackoff())
					for count.Load() < producers*perProd {
						v, ok := q.TryPop()
						if !ok {
							w.Wait()
							continue
						}
						w.Reset()
						sum.Add(int64(v))
						count.Add(1)
					}
					return nil
				})
			}

			require.NoError(t, prod.Wait())
			require.NoError(t, cons.Wait())

			n := int64(producers * perProd)
			assert.Equal(t, n, count.Load())
			assert.Equal(t, n*(n+1)/2, sum.Load())
		})
	}
}

func TestBackoffStages(t *testing.T) {
	t.Parallel()
	b := NewBackoff(BackoffConfig{Spins: 2, Yields: 2, Sleep: time.Millisecond})

	for range 4 {
		b.Wait()
	}
	assert.Equal(t, 4, b.misses)

	start := time.Now()
	b.Wait()
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)

	b.Reset()
	assert.Zero(t, b.misses)
}

func TestPushWaitGivesUp(t *testing.T) {
	t.Parallel()
	q := NewRingQueue[int](2)
	w := NewBackoff(BackoffConfig{Spins: 1})
	require.True(t, pushWait[int](q, 1, w, nil))
	require.True(t, pushWait[int](q, 2, w, nil))

	calls := 0
	stop := func() bool { calls++; return calls > 3 }
	assert.False(t, pushWait[int](q, 3, w, stop))
	assert.Equal(t, 4, calls)

	v, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, pushWait[int](q, 3, w, stop))
}
