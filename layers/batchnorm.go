package layers

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type batchNorm struct {
	width int

	gain, shift  []float64
	gGrad, sGrad []float64

	// running estimates, used instead of batch statistics in inference mode
	runMean, runVar []float64

	momentum, eps float64

	// caches from the last training-mode forward pass
	xhat *mat.Dense
	std  []float64
}

const (
	defaultMomentum float64 = 0.1
	defaultEps      float64 = 1e-5
)

// BatchNorm returns a layer normalizing each feature over the batch, with a
// learnable gain and shift per feature. Training mode uses batch statistics and
// folds them into running estimates; inference mode uses the running estimates.
// Momentum defaults to 0.1 and epsilon to 1e-5, settable by Momentum and Eps.
func BatchNorm(width int) *batchNorm {
	b := &batchNorm{
		width:    width,
		gain:     make([]float64, width),
		shift:    make([]float64, width),
		gGrad:    make([]float64, width),
		sGrad:    make([]float64, width),
		runMean:  make([]float64, width),
		runVar:   make([]float64, width),
		momentum: defaultMomentum,
		eps:      defaultEps,
	}

	for i := range b.gain {
		b.gain[i] = 1
		b.runVar[i] = 1
	}

	return b
}

// Momentum sets the fraction of each batch's statistics folded into the running
// estimates, returning the layer. Momentum will panic if given m outside (0, 1].
func (b *batchNorm) Momentum(m float64) *batchNorm {
	if m <= 0 || m > 1 {
		panic("given momentum is outside (0, 1]")
	}

	b.momentum = m
	return b
}

// Eps sets the variance floor added before the square root, returning the layer.
// Eps will panic if given e <= 0.
func (b *batchNorm) Eps(e float64) *batchNorm {
	if e <= 0 {
		panic("given epsilon is <= 0")
	}

	b.eps = e
	return b
}

func (b *batchNorm) TypeString() string {
	return "batch-norm"
}

func (b *batchNorm) OutSize(in int) int {
	return b.width
}

// Forward is the implementation of Layer for BatchNorm.
func (b *batchNorm) Forward(x *mat.Dense, train bool) *mat.Dense {
	rows, cols := x.Dims()
	y := mat.NewDense(rows, cols, nil)

	if !train {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				xhat := (x.At(r, c) - b.runMean[c]) / math.Sqrt(b.runVar[c]+b.eps)
				y.Set(r, c, b.gain[c]*xhat+b.shift[c])
			}
		}

		return y
	}

	n := float64(rows)
	b.xhat = mat.NewDense(rows, cols, nil)
	b.std = make([]float64, cols)

	for c := 0; c < cols; c++ {
		var mean float64
		for r := 0; r < rows; r++ {
			mean += x.At(r, c)
		}
		mean /= n

		var variance float64
		for r := 0; r < rows; r++ {
			d := x.At(r, c) - mean
			variance += d * d
		}
		variance /= n

		b.std[c] = math.Sqrt(variance + b.eps)
		for r := 0; r < rows; r++ {
			xhat := (x.At(r, c) - mean) / b.std[c]
			b.xhat.Set(r, c, xhat)
			y.Set(r, c, b.gain[c]*xhat+b.shift[c])
		}

		b.runMean[c] = (1-b.momentum)*b.runMean[c] + b.momentum*mean
		b.runVar[c] = (1-b.momentum)*b.runVar[c] + b.momentum*variance
	}

	return y
}

// Backward accumulates the gain and shift gradients and returns the input
// gradient. It assumes the preceding Forward ran in training mode.
func (b *batchNorm) Backward(grad *mat.Dense) *mat.Dense {
	rows, cols := grad.Dims()
	n := float64(rows)

	dx := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		var sumG, sumGX float64
		for r := 0; r < rows; r++ {
			g := grad.At(r, c)
			xhat := b.xhat.At(r, c)

			b.gGrad[c] += g * xhat
			b.sGrad[c] += g

			sumG += g * b.gain[c]
			sumGX += g * b.gain[c] * xhat
		}

		for r := 0; r < rows; r++ {
			dxhat := grad.At(r, c) * b.gain[c]
			dx.Set(r, c, (n*dxhat-sumG-b.xhat.At(r, c)*sumGX)/(n*b.std[c]))
		}
	}

	return dx
}

// Params is the implementation of Adjustable for BatchNorm.
func (b *batchNorm) Params() []*Param {
	return []*Param{
		{Name: "gain", Data: b.gain, Grad: b.gGrad},
		{Name: "shift", Data: b.shift, Grad: b.sGrad},
	}
}

// StateParams is the implementation of Stateful for BatchNorm.
func (b *batchNorm) StateParams() []*Param {
	return []*Param{
		{Name: "running-mean", Data: b.runMean},
		{Name: "running-var", Data: b.runVar},
	}
}
