package optimizers

import (
	"math"

	"github.com/pkg/errors"
)

type adam struct {
	beta1, beta2, eps float64

	m, v []float64
	t    int
}

// Adam returns the Adam optimizer with the usual defaults: β1 of 0.9, β2 of
// 0.999, ε of 1e-8. The decay rates can be set by Beta1 and Beta2 and the
// divisor floor by Eps. Moment estimates are allocated on the first Run and
// sized to the parameter vector.
func Adam() *adam {
	return &adam{beta1: 0.9, beta2: 0.999, eps: 1e-8}
}

// Beta1 sets the decay rate of the first moment estimate, returning the
// optimizer. Beta1 will panic if given b outside [0, 1).
func (a *adam) Beta1(b float64) *adam {
	if b < 0 || b >= 1 {
		panic("given decay rate is outside [0, 1)")
	}

	a.beta1 = b
	return a
}

// Beta2 sets the decay rate of the second moment estimate, returning the
// optimizer. Beta2 will panic if given b outside [0, 1).
func (a *adam) Beta2(b float64) *adam {
	if b < 0 || b >= 1 {
		panic("given decay rate is outside [0, 1)")
	}

	a.beta2 = b
	return a
}

// Eps sets the floor added to the second-moment divisor, returning the
// optimizer. Eps will panic if given e <= 0.
func (a *adam) Eps(e float64) *adam {
	if e <= 0 {
		panic("given epsilon is <= 0")
	}

	a.eps = e
	return a
}

func (a *adam) TypeString() string {
	return "adam"
}

// Run is the implementation of Optimizer for Adam.
func (a *adam) Run(size int, grad func(int) float64, add func(int, float64), learningRate float64) error {
	if a.m == nil {
		a.m = make([]float64, size)
		a.v = make([]float64, size)
	} else if len(a.m) != size {
		return errors.Errorf("Size changed between runs (%d != %d)", size, len(a.m))
	}

	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i := 0; i < size; i++ {
		g := grad(i)
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		add(i, -1*learningRate*(a.m[i]/c1)/(math.Sqrt(a.v[i]/c2)+a.eps))
	}

	return nil
}
