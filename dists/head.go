package dists

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/trunghlt/probcast/initializers"
	"github.com/trunghlt/probcast/layers"
)

// The degrees-of-freedom map is offset so that every reachable distribution has
// finite mean and variance.
const dfFloor float64 = 2

// Head projects per-step hidden vectors into StudentT parameters: three
// independent single-output dense layers produce raw df, loc and sigma, and the
// domain maps df = 2 + softplus(raw), sigma = softplus(raw), loc = raw keep the
// parameters legal for any raw value.
type Head struct {
	df, loc, sigma layers.Adjustable

	// raw projections cached for the domain-map chain rule
	rawDf, rawSigma []float64
}

// NewHead returns a Head over hidden vectors of the given width, with all three
// projections initialized by init.
func NewHead(hidden int, init initializers.Initializer) *Head {
	return &Head{
		df:    layers.Dense(hidden, 1, init),
		loc:   layers.Dense(hidden, 1, init),
		sigma: layers.Dense(hidden, 1, init),
	}
}

// Project maps each row of hidden to one StudentT.
func (h *Head) Project(hidden *mat.Dense, train bool) []StudentT {
	rows, _ := hidden.Dims()

	rawDf := h.df.Forward(hidden, train)
	rawLoc := h.loc.Forward(hidden, train)
	rawSigma := h.sigma.Forward(hidden, train)

	h.rawDf = rawDf.RawMatrix().Data
	h.rawSigma = rawSigma.RawMatrix().Data

	ts := make([]StudentT, rows)
	for i := range ts {
		ts[i] = StudentT{
			Df:    dfFloor + softplus(h.rawDf[i]),
			Loc:   rawLoc.At(i, 0),
			Sigma: softplus(h.rawSigma[i]),
		}
	}

	return ts
}

// Backward consumes the loss gradients with respect to each row's Df, Loc and
// Sigma, chains them through the domain maps and the projections, and returns
// the gradient with respect to the hidden vectors. Project must have been called
// first.
func (h *Head) Backward(dDf, dLoc, dSigma []float64) *mat.Dense {
	n := len(dDf)

	gDf := make([]float64, n)
	gLoc := make([]float64, n)
	gSigma := make([]float64, n)
	for i := 0; i < n; i++ {
		gDf[i] = dDf[i] * sigmoid(h.rawDf[i])
		gLoc[i] = dLoc[i]
		gSigma[i] = dSigma[i] * sigmoid(h.rawSigma[i])
	}

	var dh mat.Dense
	dh.Add(h.df.Backward(mat.NewDense(n, 1, gDf)), h.loc.Backward(mat.NewDense(n, 1, gLoc)))
	dh.Add(&dh, h.sigma.Backward(mat.NewDense(n, 1, gSigma)))

	return &dh
}

// Params returns the parameters of the three projections, names prefixed by
// which projection owns them.
func (h *Head) Params() []*layers.Param {
	named := []struct {
		prefix string
		l      layers.Adjustable
	}{
		{"df", h.df},
		{"loc", h.loc},
		{"sigma", h.sigma},
	}

	var ps []*layers.Param
	for _, nl := range named {
		for _, p := range nl.l.Params() {
			ps = append(ps, &layers.Param{
				Name: nl.prefix + "." + p.Name,
				Data: p.Data,
				Grad: p.Grad,
			})
		}
	}

	return ps
}

// softplus in the overflow-safe form; plain log(1+exp(x)) is +Inf from x ≈ 710.
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}

// sigmoid is the derivative of softplus.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
