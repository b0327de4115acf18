package probcast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestImputeZero(t *testing.T) {
	filled, observed := ImputeZero([]float64{1, math.NaN(), 3, math.NaN()})
	assert.Equal(t, []float64{1, 0, 3, 0}, filled)
	assert.Equal(t, []bool{true, false, true, false}, observed)
}

func ramp(n int) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = float64(i)
	}
	return vs
}

func TestWindows(t *testing.T) {
	ds := Dataset{
		{Name: "short", Values: []float64{1, 2}},
		{Name: "a", Values: []float64{1, 2, 3, 4, 5, 6, 7, 8}},
	}

	sup, err := Windows(ds, 3, 2, 4, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	b, err := sup.Get(0)
	require.NoError(t, err)

	br, bc := b.Context.Dims()
	assert.Equal(t, 4, br)
	assert.Equal(t, 3, bc)
	tr, tc := b.Target.Dims()
	assert.Equal(t, 4, tr)
	assert.Equal(t, 2, tc)

	// "short" can't hold a window, so every batch row is a contiguous cut of
	// the increasing series and the target continues where the context stops
	for r := 0; r < br; r++ {
		first := b.Context.At(r, 0)
		for j := 1; j < bc; j++ {
			assert.Equal(t, first+float64(j), b.Context.At(r, j), "row %d", r)
		}
		assert.Equal(t, first+3, b.Target.At(r, 0), "row %d", r)
		assert.Equal(t, first+4, b.Target.At(r, 1), "row %d", r)
	}

	assert.False(t, sup.DoneTesting(0))
	assert.False(t, sup.DoneTesting(1000))
}

func TestWindowsDeterminism(t *testing.T) {
	ds := Dataset{{Name: "a", Values: ramp(30)}}

	a, err := Windows(ds, 4, 2, 8, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := Windows(ds, 4, 2, 8, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	ba, err := a.Get(0)
	require.NoError(t, err)
	bb, err := b.Get(0)
	require.NoError(t, err)

	assert.Equal(t, ba.Context.RawMatrix().Data, bb.Context.RawMatrix().Data)
	assert.Equal(t, ba.Target.RawMatrix().Data, bb.Target.RawMatrix().Data)
}

func TestWindowsValidation(t *testing.T) {
	ds := Dataset{{Name: "a", Values: []float64{1, 2, 3}}}

	_, err := Windows(ds, 0, 1, 1, nil)
	assert.Error(t, err)

	_, err = Windows(ds, 1, 0, 1, nil)
	assert.Error(t, err)

	_, err = Windows(ds, 1, 1, 0, nil)
	assert.Error(t, err)

	// no series long enough for one window
	_, err = Windows(ds, 3, 1, 1, nil)
	assert.Error(t, err)

	_, err = Windows(Dataset{}, 1, 1, 1, nil)
	assert.Error(t, err)

	_, err = Windows(ds, 2, 1, 1, nil)
	assert.NoError(t, err)
}

func TestLastWindows(t *testing.T) {
	ds := Dataset{
		{Name: "long", Values: []float64{1, 2, 3, 4, 5, 6, 7}},
		{Name: "short", Values: []float64{8, 9, 10}},
		{Name: "exact", Values: []float64{4, 5, 6, 7, 8, 9}},
	}

	sup, err := LastWindows(ds, 4, 2, 2)
	require.NoError(t, err)

	// three series at batch size two: one full batch and one single row
	b0, err := sup.Get(0)
	require.NoError(t, err)
	r0, _ := b0.Context.Dims()
	require.Equal(t, 2, r0)

	assert.Equal(t, []float64{2, 3, 4, 5}, b0.Context.RawRowView(0))
	assert.Equal(t, []float64{6, 7}, b0.Target.RawRowView(0))

	// one history value left after the target; it lands after the zero padding
	assert.Equal(t, []float64{0, 0, 0, 8}, b0.Context.RawRowView(1))
	assert.Equal(t, []float64{9, 10}, b0.Target.RawRowView(1))

	b1, err := sup.Get(1)
	require.NoError(t, err)
	r1, _ := b1.Context.Dims()
	require.Equal(t, 1, r1)
	assert.Equal(t, []float64{4, 5, 6, 7}, b1.Context.RawRowView(0))
	assert.Equal(t, []float64{8, 9}, b1.Target.RawRowView(0))

	assert.False(t, sup.DoneTesting(0))
	assert.False(t, sup.DoneTesting(1))
	assert.True(t, sup.DoneTesting(2))

	_, err = sup.Get(2)
	assert.Error(t, err)
}

func TestLastWindowsValidation(t *testing.T) {
	_, err := LastWindows(Dataset{}, 2, 2, 1)
	assert.Error(t, err)

	// a series must be longer than the target it gives up
	ds := Dataset{{Name: "x", Values: []float64{1, 2}}}
	_, err = LastWindows(ds, 2, 2, 1)
	assert.Error(t, err)

	_, err = LastWindows(ds, 0, 1, 1)
	assert.Error(t, err)

	_, err = LastWindows(ds, 2, 1, 0)
	assert.Error(t, err)

	_, err = LastWindows(ds, 2, 1, 1)
	assert.NoError(t, err)
}
