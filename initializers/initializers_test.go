package initializers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestUniformBounds(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper float64
	}{
		{"default-ish", -1, 1},
		{"narrow", -0.07, 0.07},
		{"swapped", 2, -2},
		{"offset", 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Uniform().Bounds(tt.lower, tt.upper).Src(rand.New(rand.NewSource(1)))

			lo, hi := tt.lower, tt.upper
			if lo > hi {
				lo, hi = hi, lo
			}

			for i := 0; i < 1000; i++ {
				v := g.Gen()
				assert.GreaterOrEqual(t, v, lo)
				assert.Less(t, v, hi)
			}
		})
	}
}

func TestTruncNormalStaysWithinTrunc(t *testing.T) {
	g := TruncNormal().SD(2).Trunc(1.5)
	g.Src(rand.New(rand.NewSource(7)))

	for i := 0; i < 1000; i++ {
		v := g.Gen()
		assert.LessOrEqual(t, v, 1.5*2)
		assert.GreaterOrEqual(t, v, -1.5*2)
	}
}

func TestRandomFillsEveryWeight(t *testing.T) {
	src := rand.New(rand.NewSource(3))
	init := Random(Uniform().Bounds(-0.07, 0.07).Src(src))

	ws := make([]float64, 64)
	init.Set(8, 8, ws)

	for i, w := range ws {
		require.NotZerof(t, w, "weight %d left unset", i)
		assert.LessOrEqual(t, w, 0.07)
		assert.GreaterOrEqual(t, w, -0.07)
	}
}

func TestRandomIsReproducible(t *testing.T) {
	gen := func() []float64 {
		init := Random(Uniform().Src(rand.New(rand.NewSource(42))))
		ws := make([]float64, 32)
		init.Set(4, 8, ws)
		return ws
	}

	assert.Equal(t, gen(), gen())
}

func TestZeros(t *testing.T) {
	ws := []float64{1, 2, 3}
	Zeros().Set(3, 1, ws)
	assert.Equal(t, []float64{0, 0, 0}, ws)
}

func TestVarianceScalingModes(t *testing.T) {
	// With factor f and mode "in", the standard deviation is sqrt(f/fanIn); the
	// truncated draws must stay within 2 standard deviations of zero.
	tests := []struct {
		name   string
		init   Initializer
		fanIn  int
		fanOut int
		sd     float64
	}{
		{"in", VarianceScaling().In().Src(rand.New(rand.NewSource(5))), 100, 10, 0.1},
		{"out", VarianceScaling().Out().Src(rand.New(rand.NewSource(5))), 10, 100, 0.1},
		{"avg", VarianceScaling().Src(rand.New(rand.NewSource(5))), 100, 100, 0.1},
		{"he", He().Src(rand.New(rand.NewSource(5))), 200, 10, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := make([]float64, 500)
			tt.init.Set(tt.fanIn, tt.fanOut, ws)

			for _, w := range ws {
				assert.LessOrEqual(t, w, 2*tt.sd+1e-12)
				assert.GreaterOrEqual(t, w, -2*tt.sd-1e-12)
			}
		})
	}
}
