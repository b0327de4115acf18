// Package dists holds the network's output distribution: the Student's t density
// and score math, and the head projecting hidden vectors into distribution
// parameters.
package dists

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// StudentT is one fitted location-scale Student's t-distribution. Df is the
// degrees of freedom (> 2, so mean and variance always exist), Loc the location
// and Sigma the scale (> 0). Both bounds are kept by construction in Head; the
// zero value is not usable.
type StudentT struct {
	Df, Loc, Sigma float64
}

// LogProb returns the log-density at x.
func (t StudentT) LogProb(x float64) float64 {
	return distuv.StudentsT{Mu: t.Loc, Sigma: t.Sigma, Nu: t.Df}.LogProb(x)
}

// Rand draws one sample using src.
func (t StudentT) Rand(src rand.Source) float64 {
	return distuv.StudentsT{Mu: t.Loc, Sigma: t.Sigma, Nu: t.Df, Src: src}.Rand()
}

// Mean returns the distribution mean, which exists because Df > 2.
func (t StudentT) Mean() float64 {
	return t.Loc
}

// Score returns the gradient of the negative log-density at x with respect to
// Df, Loc and Sigma. It is the closed form of what finite differences over
// LogProb would give, without the extra density evaluations.
func (t StudentT) Score(x float64) (dDf, dLoc, dSigma float64) {
	z := (x - t.Loc) / t.Sigma
	a := t.Df + z*z

	dLoc = -(t.Df + 1) * z / (t.Sigma * a)
	dSigma = 1/t.Sigma - (t.Df+1)*z*z/(t.Sigma*a)
	dDf = -0.5 * (mathext.Digamma((t.Df+1)/2) - mathext.Digamma(t.Df/2) -
		1/t.Df - math.Log1p(z*z/t.Df) + (t.Df+1)*z*z/(t.Df*a))

	return dDf, dLoc, dSigma
}
