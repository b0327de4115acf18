package scalers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMeanAbs(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
		want []float64
	}{
		{
			"positive values",
			[][]float64{{1, 2, 3, 4}},
			[]float64{2.5},
		},
		{
			"sign does not matter",
			[][]float64{{-1, 2, -3, 4}},
			[]float64{2.5},
		},
		{
			"per-series independence",
			[][]float64{{1, 1, 1, 1}, {100, 100, 100, 100}},
			[]float64{1, 100},
		},
		{
			"all-zero series hits the floor",
			[][]float64{{0, 0, 0, 0}},
			[]float64{1e-5},
		},
		{
			"tiny series hits the floor",
			[][]float64{{1e-9, -1e-9, 1e-9, -1e-9}},
			[]float64{1e-5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := mat.NewDense(len(tt.rows), len(tt.rows[0]), nil)
			for r, row := range tt.rows {
				ctx.SetRow(r, row)
			}

			got := MeanAbs().Scale(ctx)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestMeanAbsMinScale(t *testing.T) {
	ctx := mat.NewDense(2, 3, []float64{0, 0, 0, 5, 5, 5})

	got := MeanAbs().MinScale(0.5).Scale(ctx)
	assert.Equal(t, []float64{0.5, 5}, got)

	assert.Panics(t, func() { MeanAbs().MinScale(0) })
	assert.Panics(t, func() { MeanAbs().MinScale(-1) })
}

func TestMeanAbsDoesNotModifyContext(t *testing.T) {
	data := []float64{1, -2, 3, -4, 5, -6}
	ctx := mat.NewDense(2, 3, data)

	MeanAbs().Scale(ctx)

	assert.Equal(t, []float64{1, -2, 3, -4, 5, -6}, data)
}

func TestMeanAbsPositive(t *testing.T) {
	ctx := mat.NewDense(3, 2, []float64{0, 0, -1, 1, 1e-300, 0})

	for _, s := range MeanAbs().Scale(ctx) {
		assert.Greater(t, s, 0.0)
		assert.False(t, math.IsNaN(s))
	}
}

func TestNone(t *testing.T) {
	ctx := mat.NewDense(4, 7, nil)

	got := None().Scale(ctx)
	assert.Equal(t, []float64{1, 1, 1, 1}, got)
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "mean-abs", MeanAbs().TypeString())
	assert.Equal(t, "none", None().TypeString())
}
