package kernels_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbl8/lattice/core"
	"github.com/sbl8/lattice/kernels"
)

func plane(t *testing.T, rows ...string) *core.Buffer[kernels.Cell] {
	t.Helper()
	var data []kernels.Cell
	for _, r := range rows {
		for _, c := range r {
			data = append(data, kernels.CellOf(c == 'X'))
		}
	}
	b, err := core.FromSlice2D(len(rows[0]), len(rows), data)
	require.NoError(t, err)
	return b
}

func step(buf *core.Buffer[kernels.Cell], conf kernels.LifeConfig) *core.Buffer[kernels.Cell] {
	out := buf.Clone()
	for i := range buf.Len() {
		out.Set(i, kernels.Life{}.Apply(buf, i, conf))
	}
	return out
}

func mustRule(t *testing.T, s string) *kernels.Rule {
	t.Helper()
	r, err := kernels.ParseRule(s)
	require.NoError(t, err)
	return &r
}

func TestCheckerboardParity(t *testing.T) {
	t.Parallel()
	conf := kernels.CheckerboardConfig[byte]{ColorA: 'a', ColorB: 'b'}
	for _, w := range []int{1, 2, 7} {
		t.Run(fmt.Sprintf("width=%d", w), func(t *testing.T) {
			t.Parallel()
			buf := core.New2D(w, 5, byte(0))
			k := kernels.Checkerboard[byte]{}
			for i := range buf.Len() {
				want := conf.ColorA
				if (i+i/w)%2 == 0 {
					want = conf.ColorB
				}
				assert.Equal(t, want, k.Apply(buf, i, conf), "index %d", i)
			}
		})
	}
}

func TestCheckerboardExplicitWidth(t *testing.T) {
	t.Parallel()
	buf := core.New(6, 0)
	conf := kernels.CheckerboardConfig[int]{ColorA: 1, ColorB: 2, Width: 3}
	k := kernels.Checkerboard[int]{}

	got := make([]int, buf.Len())
	for i := range got {
		got[i] = k.Apply(buf, i, conf)
	}
	assert.Equal(t, []int{2, 1, 2, 1, 2, 1}, got)
}

func TestCheckerboardIgnoresInput(t *testing.T) {
	t.Parallel()
	a := core.New2D(4, 4, 0)
	b := core.New2D(4, 4, 9)
	conf := kernels.CheckerboardConfig[int]{ColorA: 1, ColorB: 2}
	for i := range a.Len() {
		assert.Equal(t, kernels.Checkerboard[int]{}.Apply(a, i, conf), kernels.Checkerboard[int]{}.Apply(b, i, conf))
	}
}

func TestCellRendering(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "X", kernels.Alive.String())
	assert.Equal(t, ".", kernels.Dead.String())
	assert.Equal(t, '▓', kernels.Alive.Glyph())
	assert.Equal(t, '░', kernels.Dead.Glyph())
	assert.True(t, kernels.CellOf(true).IsAlive())
	assert.False(t, kernels.CellOf(false).IsAlive())
}

func TestParseRule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    kernels.Rule
		wantErr bool
	}{
		{in: "B3/S23", want: kernels.Conway},
		{in: "s23/b3", want: kernels.Conway},
		{in: " B36/S23 ", want: kernels.Rule{Birth: 1<<3 | 1<<6, Survive: 1<<2 | 1<<3}},
		{in: "B/S", want: kernels.Rule{}},
		{in: "B3", wantErr: true},
		{in: "B3/S9", wantErr: true},
		{in: "B3/X23", wantErr: true},
		{in: "B3/B3", wantErr: true},
		{in: "/S23", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := kernels.ParseRule(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, kernels.ErrBadRule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "B3/S23", kernels.Conway.String())
	assert.Equal(t, "B/S", kernels.Rule{}.String())

	highLife, err := kernels.ParseRule("B36/S23")
	require.NoError(t, err)
	assert.Equal(t, "B36/S23", highLife.String())
}

func TestRuleNext(t *testing.T) {
	t.Parallel()
	for n := 0; n <= 8; n++ {
		assert.Equal(t, n == 3, kernels.Conway.Next(false, n), "birth n=%d", n)
		assert.Equal(t, n == 2 || n == 3, kernels.Conway.Next(true, n), "survive n=%d", n)
	}
}

func TestLiveNeighbors(t *testing.T) {
	t.Parallel()
	buf := plane(t,
		"XXX",
		"X.X",
		"XXX",
	)
	assert.Equal(t, 8, kernels.LiveNeighbors(buf, 1, 1))
	assert.Equal(t, 2, kernels.LiveNeighbors(buf, 0, 0))
	assert.Equal(t, 4, kernels.LiveNeighbors(buf, 1, 0))
	assert.Equal(t, 8, kernels.Population(buf))
}

func TestLifeScenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		conf kernels.LifeConfig
		in   []string
		want []string
	}{
		{
			name: "lone cell dies",
			in:   []string{"...", ".X.", "..."},
			want: []string{"...", "...", "..."},
		},
		{
			name: "block is stable",
			in:   []string{"....", ".XX.", ".XX.", "...."},
			want: []string{"....", ".XX.", ".XX.", "...."},
		},
		{
			name: "blinker rotates",
			in:   []string{"...", "XXX", "..."},
			want: []string{".X.", ".X.", ".X."},
		},
		{
			name: "explicit conway rule",
			conf: kernels.LifeConfig{Rule: &kernels.Conway},
			in:   []string{"...", "XXX", "..."},
			want: []string{".X.", ".X.", ".X."},
		},
		{
			name: "highlife birth on six",
			conf: kernels.LifeConfig{Rule: &kernels.Rule{Birth: 1<<3 | 1<<6, Survive: 1<<2 | 1<<3}},
			in:   []string{"XXX", "X.X", "X.."},
			want: []string{"X.X", "XXX", ".X."},
		},
		{
			name: "empty rule kills everything",
			conf: kernels.LifeConfig{Rule: &kernels.Rule{}},
			in:   []string{".X.", ".X.", ".X."},
			want: []string{"...", "...", "..."},
		},
		{
			name: "empty rule parsed from B/S",
			conf: kernels.LifeConfig{Rule: mustRule(t, "B/S")},
			in:   []string{"....", ".XX.", ".XX.", "...."},
			want: []string{"....", "....", "....", "...."},
		},
		{
			name: "edges do not wrap",
			in:   []string{"X.X", "...", "X.X"},
			want: []string{"...", "...", "..."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := step(plane(t, tt.in...), tt.conf)
			assert.Equal(t, plane(t, tt.want...).Data(), got.Data())
		})
	}
}

func TestIdentityAndFunc(t *testing.T) {
	t.Parallel()
	buf := core.FromSlice([]int{4, 5, 6})
	id := kernels.Identity[int, struct{}]()
	for i := range buf.Len() {
		assert.Equal(t, buf.AtUnchecked(i), id.Apply(buf, i, struct{}{}))
	}

	add := kernels.Func[int, int](func(b *core.Buffer[int], i int, k int) int { return b.AtUnchecked(i) + k })
	assert.Equal(t, 9, add.Apply(buf, 1, 4))
}
