package probcast

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Trajectories is the sampled forecast for one series: row s of Samples is one
// independent future, each column one step ahead, in the original scale of the
// data.
type Trajectories struct {
	Samples *mat.Dense // NumSamples × PredictionLength
}

// Forward fits distributions to the batch and returns one loss per series: the
// mean over future steps of the negative log-likelihood of the scaled target,
// plus the log of the series scale to keep losses comparable across scales.
// Row r of context is series r's history, row r of target its future.
func (t *TrainingNetwork) Forward(context, target *mat.Dense) ([]float64, error) {
	return t.forward(context, target, true)
}

func (t *TrainingNetwork) forward(context, target *mat.Dense, train bool) ([]float64, error) {
	if context == nil {
		return nil, NilArgError{"context"}
	} else if target == nil {
		return nil, NilArgError{"target"}
	}

	b, _ := context.Dims()
	if tr, tc := target.Dims(); tr != b {
		return nil, SizeMismatchError{Quantity: "target rows", Got: tr, Want: b}
	} else if tc != t.conf.PredictionLength {
		return nil, SizeMismatchError{Quantity: "target length", Got: tc, Want: t.conf.PredictionLength}
	}

	ds, scales, err := t.distributions(context, train)
	if err != nil {
		return nil, err
	}

	p := t.conf.PredictionLength
	zs := make([]float64, len(ds))
	losses := make([]float64, b)
	for r := 0; r < b; r++ {
		var sum float64
		for j := 0; j < p; j++ {
			i := r*p + j
			zs[i] = target.At(r, j) / scales[r]
			sum += -ds[i].LogProb(zs[i]) + math.Log(scales[r])
		}
		losses[r] = sum / float64(p)
	}
	t.zs = zs

	return losses, nil
}

// Backward propagates the gradient of the batch-mean loss from the cached
// forward pass into every parameter's Grad. Gradients accumulate; ZeroGrads
// resets them.
func (t *TrainingNetwork) Backward() error {
	if t.zs == nil {
		return ErrNoForward
	}

	n := len(t.ds)
	scale := 1 / float64(n)

	dDf := make([]float64, n)
	dLoc := make([]float64, n)
	dSigma := make([]float64, n)
	for i, d := range t.ds {
		a, b, c := d.Score(t.zs[i])
		dDf[i] = a * scale
		dLoc[i] = b * scale
		dSigma[i] = c * scale
	}

	g := t.head.Backward(dDf, dLoc, dSigma)

	// undo the per-step reshape before walking the trunk backwards
	rows := n / t.conf.PredictionLength
	g = mat.NewDense(rows, t.conf.PredictionLength*t.lastH, g.RawMatrix().Data)

	for i := len(t.trunk) - 1; i >= 0; i-- {
		g = t.trunk[i].Backward(g)
	}

	return nil
}

// Forward draws NumSamples future trajectories for every series in the batch.
// Sampling runs the network in inference mode and multiplies each draw back by
// the series scale, so trajectories live in the original scale of the data.
func (s *SamplingNetwork) Forward(context *mat.Dense) ([]*Trajectories, error) {
	ds, scales, err := s.distributions(context, false)
	if err != nil {
		return nil, err
	}

	b := len(scales)
	p := s.conf.PredictionLength

	out := make([]*Trajectories, b)
	for r := 0; r < b; r++ {
		m := mat.NewDense(s.conf.NumSamples, p, nil)
		for j := 0; j < p; j++ {
			d := ds[r*p+j]
			for smp := 0; smp < s.conf.NumSamples; smp++ {
				m.Set(smp, j, d.Rand(s.src)*scales[r])
			}
		}
		out[r] = &Trajectories{Samples: m}
	}

	return out, nil
}
