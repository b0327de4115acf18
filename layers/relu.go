package layers

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type relu struct {
	x *mat.Dense
}

// ReLU returns the standard rectified linear unit.
func ReLU() *relu {
	return &relu{}
}

func (t *relu) TypeString() string {
	return "relu"
}

func (t *relu) OutSize(in int) int {
	return in
}

// Forward is the implementation of Layer for ReLU.
func (t *relu) Forward(x *mat.Dense, train bool) *mat.Dense {
	t.x = x

	var y mat.Dense
	y.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, x)

	return &y
}

// Backward masks the incoming gradient by the sign of the forward input.
func (t *relu) Backward(grad *mat.Dense) *mat.Dense {
	rows, cols := grad.Dims()

	dx := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if t.x.At(r, c) > 0 {
				dx.Set(r, c, grad.At(r, c))
			}
		}
	}

	return dx
}
