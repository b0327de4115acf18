package probcast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/trunghlt/probcast/scalers"
)

func TestTrainingForward(t *testing.T) {
	conf := Config{
		ContextLength:    4,
		PredictionLength: 2,
		HiddenDimensions: []int{3},
		Scaler:           scalers.None(),
		Seed:             7,
	}
	n, err := NewTraining(conf)
	require.NoError(t, err)

	context := mat.NewDense(1, 4, []float64{1, 2, 3, 4})
	target := mat.NewDense(1, 2, []float64{5, 6})

	losses, err := n.Forward(context, target)
	require.NoError(t, err)
	require.Len(t, losses, 1)
	assert.False(t, math.IsNaN(losses[0]) || math.IsInf(losses[0], 0))
}

func TestForwardArgumentChecks(t *testing.T) {
	n, err := NewTraining(validConfig())
	require.NoError(t, err)

	ctx := mat.NewDense(2, 4, nil)
	tgt := mat.NewDense(2, 2, nil)

	_, err = n.Forward(nil, tgt)
	assert.IsType(t, NilArgError{}, err)

	_, err = n.Forward(ctx, nil)
	assert.IsType(t, NilArgError{}, err)

	_, err = n.Forward(mat.NewDense(2, 3, nil), tgt)
	assert.Equal(t, SizeMismatchError{Quantity: "context length", Got: 3, Want: 4}, err)

	_, err = n.Forward(ctx, mat.NewDense(3, 2, nil))
	assert.Equal(t, SizeMismatchError{Quantity: "target rows", Got: 3, Want: 2}, err)

	_, err = n.Forward(ctx, mat.NewDense(2, 5, nil))
	assert.Equal(t, SizeMismatchError{Quantity: "target length", Got: 5, Want: 2}, err)
}

// Multiplying a series by a constant shifts its loss by exactly log k: the
// scaled values the network sees are unchanged, only the log-scale term moves.
// k is a power of two so the mean-abs scale works out bit-identical.
func TestLossScaleEquivariance(t *testing.T) {
	conf := Config{
		ContextLength:    4,
		PredictionLength: 2,
		HiddenDimensions: []int{3},
		Seed:             3,
	}
	n, err := NewTraining(conf)
	require.NoError(t, err)

	ctx := mat.NewDense(1, 4, []float64{1.5, -2, 3, 0.5})
	tgt := mat.NewDense(1, 2, []float64{2, -1})

	base, err := n.Forward(ctx, tgt)
	require.NoError(t, err)

	const k = 4.0
	scaledCtx := mat.NewDense(1, 4, nil)
	scaledCtx.Scale(k, ctx)
	scaledTgt := mat.NewDense(1, 2, nil)
	scaledTgt.Scale(k, tgt)

	scaled, err := n.Forward(scaledCtx, scaledTgt)
	require.NoError(t, err)

	assert.InDelta(t, base[0]+math.Log(k), scaled[0], 1e-12)
}

func TestBackwardMatchesFiniteDifferences(t *testing.T) {
	conf := Config{
		ContextLength:    3,
		PredictionLength: 2,
		HiddenDimensions: []int{4, 3},
		BatchNorm:        true,
		Seed:             5,
	}
	n, err := NewTraining(conf)
	require.NoError(t, err)

	src := rand.New(rand.NewSource(6))
	ctx := mat.NewDense(5, 3, nil)
	tgt := mat.NewDense(5, 2, nil)
	for r := 0; r < 5; r++ {
		for c := 0; c < 3; c++ {
			ctx.Set(r, c, src.Float64()*4+1)
		}
		for c := 0; c < 2; c++ {
			tgt.Set(r, c, src.Float64()*4+1)
		}
	}

	_, err = n.Forward(ctx, tgt)
	require.NoError(t, err)
	n.ZeroGrads()
	require.NoError(t, n.Backward())

	meanLoss := func() float64 {
		losses, err := n.Forward(ctx, tgt)
		require.NoError(t, err)
		return floats.Sum(losses) / float64(len(losses))
	}
	settings := &fd.Settings{Formula: fd.Central}

	for _, p := range n.Params() {
		analytic := make([]float64, len(p.Grad))
		copy(analytic, p.Grad)

		numeric := fd.Gradient(nil, func(vs []float64) float64 {
			old := make([]float64, len(p.Data))
			copy(old, p.Data)
			copy(p.Data, vs)
			defer copy(p.Data, old)

			return meanLoss()
		}, p.Data, settings)

		for i := range numeric {
			assert.InDeltaf(t, numeric[i], analytic[i], 1e-5, "%s[%d]", p.Name, i)
		}
	}
}

func TestBackwardAccumulates(t *testing.T) {
	n, err := NewTraining(validConfig())
	require.NoError(t, err)

	ctx := mat.NewDense(2, 4, []float64{1, 2, 3, 4, 8, 6, 4, 2})
	tgt := mat.NewDense(2, 2, []float64{5, 6, 1, 0})

	_, err = n.Forward(ctx, tgt)
	require.NoError(t, err)
	n.ZeroGrads()
	require.NoError(t, n.Backward())

	p := n.Params()[0]
	once := make([]float64, len(p.Grad))
	copy(once, p.Grad)

	// a second pass over the same cached forward adds the same gradient again
	require.NoError(t, n.Backward())
	for i := range once {
		assert.Equal(t, 2*once[i], p.Grad[i], "grad %d", i)
	}

	n.ZeroGrads()
	assert.Equal(t, make([]float64, len(p.Grad)), p.Grad)
}

func TestBackwardWithoutForward(t *testing.T) {
	n, err := NewTraining(validConfig())
	require.NoError(t, err)

	assert.Equal(t, ErrNoForward, n.Backward())
}

func TestSamplingSmallNetwork(t *testing.T) {
	s, err := NewSampling(Config{
		ContextLength:    4,
		PredictionLength: 2,
		HiddenDimensions: []int{3},
		Scaler:           scalers.None(),
		NumSamples:       10,
		Seed:             7,
	})
	require.NoError(t, err)

	out, err := s.Forward(mat.NewDense(1, 4, []float64{1, 2, 3, 4}))
	require.NoError(t, err)
	require.Len(t, out, 1)

	rows, cols := out[0].Samples.Dims()
	assert.Equal(t, 10, rows)
	assert.Equal(t, 2, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := out[0].Samples.At(i, j)
			require.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0), "sample (%d,%d)", i, j)
		}
	}
}

func TestSamplingForward(t *testing.T) {
	conf := Config{
		ContextLength:    4,
		PredictionLength: 3,
		HiddenDimensions: []int{5},
		NumSamples:       50,
		Seed:             9,
	}
	s, err := NewSampling(conf)
	require.NoError(t, err)

	ctx := mat.NewDense(2, 4, []float64{1, 2, 3, 4, 40, 30, 20, 10})
	out, err := s.Forward(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for r, tr := range out {
		rows, cols := tr.Samples.Dims()
		assert.Equal(t, 50, rows)
		assert.Equal(t, 3, cols)

		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := tr.Samples.At(i, j)
				require.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0), "series %d sample (%d,%d)", r, i, j)
			}
		}
	}

	// same Config, same draws
	s2, err := NewSampling(conf)
	require.NoError(t, err)
	out2, err := s2.Forward(ctx)
	require.NoError(t, err)

	for r := range out {
		assert.Equal(t, out[r].Samples.RawMatrix().Data, out2[r].Samples.RawMatrix().Data)
	}
}

func TestSamplingEmptyBatch(t *testing.T) {
	s, err := NewSampling(validConfig())
	require.NoError(t, err)

	_, err = s.Forward(&mat.Dense{})
	assert.Equal(t, ErrEmptyBatch, err)

	_, err = s.Forward(nil)
	assert.IsType(t, NilArgError{}, err)
}
