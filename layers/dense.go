package layers

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/trunghlt/probcast/initializers"
)

type dense struct {
	in, out int

	ws *mat.Dense // out×in
	bs []float64

	wGrad *mat.Dense
	bGrad []float64

	x *mat.Dense // input to the last forward pass
}

// Dense returns a fully connected layer computing y = x·Wᵀ + b for each row of
// x. Weights come from init; biases start at zero.
func Dense(in, out int, init initializers.Initializer) *dense {
	d := &dense{
		in:    in,
		out:   out,
		ws:    mat.NewDense(out, in, nil),
		wGrad: mat.NewDense(out, in, nil),
		bs:    make([]float64, out),
		bGrad: make([]float64, out),
	}

	init.Set(in, out, d.ws.RawMatrix().Data)

	return d
}

func (d *dense) TypeString() string {
	return "dense"
}

func (d *dense) OutSize(in int) int {
	return d.out
}

// Forward is the implementation of Layer for Dense.
func (d *dense) Forward(x *mat.Dense, train bool) *mat.Dense {
	d.x = x

	rows, _ := x.Dims()
	y := mat.NewDense(rows, d.out, nil)
	y.Mul(x, d.ws.T())

	for r := 0; r < rows; r++ {
		floats.Add(y.RawRowView(r), d.bs)
	}

	return y
}

// Backward accumulates dW = gradᵀ·x and db = column sums of grad, and returns
// dx = grad·W.
func (d *dense) Backward(grad *mat.Dense) *mat.Dense {
	var dw mat.Dense
	dw.Mul(grad.T(), d.x)
	d.wGrad.Add(d.wGrad, &dw)

	rows, _ := grad.Dims()
	for r := 0; r < rows; r++ {
		floats.Add(d.bGrad, grad.RawRowView(r))
	}

	dx := mat.NewDense(rows, d.in, nil)
	dx.Mul(grad, d.ws)

	return dx
}

// Params is the implementation of Adjustable for Dense.
func (d *dense) Params() []*Param {
	return []*Param{
		{Name: "weights", Data: d.ws.RawMatrix().Data, Grad: d.wGrad.RawMatrix().Data},
		{Name: "biases", Data: d.bs, Grad: d.bGrad},
	}
}
