// Package scalers provides the scaling schemes that map each series' history
// window to a single positive scale. Dividing by the scale before fitting and
// multiplying samples by it afterwards lets one set of weights serve series of
// wildly different magnitudes.
package scalers

import "gonum.org/v1/gonum/mat"

// Scaler produces one scale per series from a batch of history windows. Row r of
// context is series r's history. Scale must not modify context and must return
// strictly positive values, one per row.
type Scaler interface {
	TypeString() string
	Scale(context *mat.Dense) []float64
}
