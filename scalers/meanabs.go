package scalers

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type meanAbs struct {
	minScale float64
}

const defaultMinScale float64 = 1e-5

// MeanAbs returns a Scaler that gives each series the mean absolute value of its
// history window, floored at a minimum scale so that flat or all-zero series
// still divide cleanly. The floor defaults to 1e-5 and can be set by MinScale.
func MeanAbs() *meanAbs {
	return &meanAbs{minScale: defaultMinScale}
}

// MinScale sets the floor on the returned scales, returning the Scaler. MinScale
// will panic if given v <= 0.
func (m *meanAbs) MinScale(v float64) *meanAbs {
	if v <= 0 {
		panic("given minimum scale is <= 0")
	}

	m.minScale = v
	return m
}

func (m *meanAbs) TypeString() string {
	return "mean-abs"
}

// Scale is the implementation of Scaler for MeanAbs.
func (m *meanAbs) Scale(context *mat.Dense) []float64 {
	rows, cols := context.Dims()

	ss := make([]float64, rows)
	for r := range ss {
		mean := floats.Norm(context.RawRowView(r), 1) / float64(cols)
		ss[r] = math.Max(mean, m.minScale)
	}

	return ss
}
