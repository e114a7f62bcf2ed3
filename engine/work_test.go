package engine

import (
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbl8/lattice/core"
)

func TestPartitionCoversEveryIndexOnce(t *testing.T) {
	t.Parallel()
	for length := 0; length <= 200; length++ {
		for _, sliceLen := range []int{1, 2, 3, 7, 16, 64, 199, 200, 201} {
			spans := Partition(length, sliceLen)

			next := 0
			for i, s := range spans {
				require.Equal(t, next, s.Offset, "length=%d slice=%d span=%d", length, sliceLen, i)
				require.Positive(t, s.Count)
				if i < len(spans)-1 {
					require.Equal(t, sliceLen, s.Count)
				} else {
					require.LessOrEqual(t, s.Count, sliceLen)
				}
				next = s.End()
			}
			require.Equal(t, length, next, "length=%d slice=%d", length, sliceLen)

			wantUnits := (length + sliceLen - 1) / sliceLen
			require.Len(t, spans, wantUnits)
		}
	}
}

func TestPartitionClampsSliceLen(t *testing.T) {
	t.Parallel()
	assert.Len(t, Partition(5, 0), 5)
	assert.Len(t, Partition(5, -3), 5)
	assert.Empty(t, Partition(0, 4))
	assert.Equal(t, []Span{{Offset: 0, Count: 10}}, Partition(10, 128))
	assert.Equal(t, []Span{{0, 4}, {4, 4}, {8, 2}}, Partition(10, 4))
}

func TestSharedRefCounting(t *testing.T) {
	t.Parallel()
	buf := core.New(4, 1)
	s := Share(buf)
	assert.EqualValues(t, 1, s.Refs())

	got, err := s.Unwrap()
	require.NoError(t, err)
	assert.Same(t, buf, got)

	held := s.Acquire()
	assert.Same(t, s, held)
	assert.EqualValues(t, 2, s.Refs())
	assert.Same(t, buf, held.Value())

	_, err = s.Unwrap()
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Msg, "2 references")

	held.Release()
	got, err = s.Unwrap()
	require.NoError(t, err)
	assert.Same(t, buf, got)

	s.Release()
	assert.Panics(t, s.Release)
}

func TestWorkUnitFinishReleasesHandles(t *testing.T) {
	t.Parallel()
	buf := Share(core.New(8, 0))
	conf := Share(3)
	u := &workUnit[int, int]{buf: buf.Acquire(), conf: conf.Acquire(), span: Span{Offset: 4, Count: 2}, out: []int{7, 8}}

	r := u.finish()
	assert.Equal(t, Span{Offset: 4, Count: 2}, r.span)
	assert.Equal(t, []int{7, 8}, r.out)
	assert.EqualValues(t, 1, buf.Refs())
	assert.EqualValues(t, 1, conf.Refs())
}

func TestSlicePoolReuse(t *testing.T) {
	t.Parallel()
	p := newSlicePool[int](8)

	a := p.get()
	assert.Empty(t, a)
	assert.Equal(t, 8, cap(a))
	a = append(a, 1, 2, 3)
	p.put(a)
	p.put(nil)

	b := p.get()
	assert.Empty(t, b)
	assert.Equal(t, 8, cap(b))
	assert.Same(t, &a[:1][0], &b[:1][0])

	p.get()
	assert.EqualValues(t, 2, p.allocs)
	assert.EqualValues(t, 1, p.reuses)
}

func TestOptionsNormalized(t *testing.T) {
	t.Parallel()
	o := Options{Threads: -2, SliceLen: 0, QueueCapacity: 1}.normalized()
	assert.Equal(t, 1, o.Threads)
	assert.Equal(t, 1, o.SliceLen)
	assert.Equal(t, QueueRing, o.Queue)
	assert.Equal(t, 2, o.QueueCapacity)
	assert.Equal(t, DefaultBackoff(), o.Backoff)

	o = Options{Threads: 8, QueueCapacity: 4, Queue: QueueChannel, Backoff: BackoffConfig{Sleep: time.Second}}.normalized()
	assert.Equal(t, 9, o.QueueCapacity)
	assert.Equal(t, QueueChannel, o.Queue)
	assert.Equal(t, time.Second, o.Backoff.Sleep)

	d := DefaultOptions()
	assert.Equal(t, runtime.GOMAXPROCS(0), d.Threads)
	assert.Equal(t, core.DefaultSliceLen, d.SliceLen)
	assert.Equal(t, MaxQueueCapacity, Options{QueueCapacity: math.MaxInt}.normalized().QueueCapacity)
	assert.Equal(t, "threads=1 slice=1 queue=ring/2", Options{}.normalized().String())
}
