package initializers

import "golang.org/x/exp/rand"

// RNG needs no explanation
type RNG interface {
	Gen() float64
}

type uniform struct {
	lower, upper float64
	src          *rand.Rand
}

// Uniform returns an RNG that gives values uniformly spread between its bounds,
// which can be set by Bounds. The defaults are -1 and 1.
func Uniform() *uniform {
	return &uniform{lower: -1, upper: 1}
}

// Bounds sets the range of a Uniform RNG, returning it.
func (u *uniform) Bounds(lower, upper float64) *uniform {
	if lower > upper {
		lower, upper = upper, lower
	}

	u.lower = lower
	u.upper = upper
	return u
}

// Src sets the random source of the RNG, returning it. Construction with a fixed
// source is reproducible; without one, the package-level source is used.
func (u *uniform) Src(src *rand.Rand) *uniform {
	u.src = src
	return u
}

// Gen is the implementation of RNG for Uniform. It returns a random number.
func (u *uniform) Gen() float64 {
	f := rand.Float64
	if u.src != nil {
		f = u.src.Float64
	}

	return f()*(u.upper-u.lower) + u.lower
}

type normal struct {
	mu, sigma float64
	src       *rand.Rand
}

// Normal returns an RNG that gives values within a normal distribution. The center
// and standard deviation can be set by Mean and SD, and default to 0 and 1.
func Normal() *normal {
	return &normal{mu: 0, sigma: 1}
}

// SD sets the value of the standard deviation of the normal distribution.
func (n *normal) SD(sd float64) *normal {
	n.sigma = sd
	return n
}

// Mean sets the center of the normal distribution.
func (n *normal) Mean(mean float64) *normal {
	n.mu = mean
	return n
}

// Src sets the random source of the RNG, returning it.
func (n *normal) Src(src *rand.Rand) *normal {
	n.src = src
	return n
}

// Gen is the implementation of RNG for Normal. It returns a random number.
func (n *normal) Gen() float64 {
	f := rand.NormFloat64
	if n.src != nil {
		f = n.src.NormFloat64
	}

	return f()*n.sigma + n.mu
}

type truncNormal struct {
	*normal
	trunc float64
}

const defaultTrunc float64 = 2.0

// TruncNormal returns an RNG that gives values within a truncated normal
// distribution. The distribution is truncated at 2 standard deviations. The center
// and standard deviation can be set in the same way as Normal, because Normal is
// embedded in the TruncNormal type.
//
// Additionally, the number of standard deviations to truncate at can be set by
// Trunc.
func TruncNormal() *truncNormal {
	return &truncNormal{Normal(), defaultTrunc}
}

// Trunc sets the number of standard deviations to keep on either side. Trunc will
// panic if given sds <= 0.
func (t *truncNormal) Trunc(sds float64) *truncNormal {
	if sds <= 0 {
		panic("given number of standard deviations to truncate after is <= 0")
	}

	t.trunc = sds
	return t
}

// SD sets the standard deviation of the underlying normal distribution. It shadows
// the embedded setter so that the chain keeps its truncation.
func (t *truncNormal) SD(sd float64) *truncNormal {
	t.sigma = sd
	return t
}

// Mean sets the center of the underlying normal distribution.
func (t *truncNormal) Mean(mean float64) *truncNormal {
	t.mu = mean
	return t
}

// Src sets the random source of the RNG, returning it.
func (t *truncNormal) Src(src *rand.Rand) *truncNormal {
	t.src = src
	return t
}

// Gen is the implementation of RNG for TruncNormal. It returns a random number.
func (t *truncNormal) Gen() float64 {
	f := rand.NormFloat64
	if t.src != nil {
		f = t.src.NormFloat64
	}

	for {
		v := f()
		if v < -t.trunc || v > t.trunc {
			continue
		}

		return v*t.sigma + t.mu
	}
}
