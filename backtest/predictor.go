package backtest

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/trunghlt/probcast"
)

const defaultBatchSize int = 32

// Predictor turns a sampling network into Forecasts: it cuts the trailing
// context window off each series, batches the windows, and has the network
// draw trajectories for the steps that follow.
type Predictor struct {
	net       *probcast.SamplingNetwork
	batchSize int
}

// NewPredictor returns a Predictor forecasting with net's weights as they are
// at each Predict call.
func NewPredictor(net *probcast.SamplingNetwork) *Predictor {
	if net == nil {
		panic("NewPredictor requires a network")
	}

	return &Predictor{net: net, batchSize: defaultBatchSize}
}

// BatchSize sets how many series go through the network per call. Will panic
// if size is less than 1.
func (p *Predictor) BatchSize(size int) *Predictor {
	if size < 1 {
		panic(errors.Errorf("Predictor batch size must be >= 1 (%d)", size))
	}

	p.batchSize = size
	return p
}

// Predict forecasts the steps following the end of every series. Histories
// shorter than the context length are left-padded with zeros. Forecast i
// belongs to ds[i].
func (p *Predictor) Predict(ds probcast.Dataset) ([]*Forecast, error) {
	if len(ds) == 0 {
		return nil, errors.Errorf("Dataset has no series")
	}
	for _, s := range ds {
		if len(s.Values) == 0 {
			return nil, errors.Errorf("Series %q has no values", s.Name)
		}
	}

	csize := p.net.Config().ContextLength

	fs := make([]*Forecast, 0, len(ds))
	for lo := 0; lo < len(ds); lo += p.batchSize {
		hi := lo + p.batchSize
		if hi > len(ds) {
			hi = len(ds)
		}

		ctx := mat.NewDense(hi-lo, csize, nil)
		for r, s := range ds[lo:hi] {
			row := ctx.RawRowView(r)
			if len(s.Values) >= csize {
				copy(row, s.Values[len(s.Values)-csize:])
			} else {
				copy(row[csize-len(s.Values):], s.Values)
			}
		}

		outs, err := p.net.Forward(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "Couldn't sample the batch starting at series %d", lo)
		}

		for r, tr := range outs {
			s := ds[lo+r]
			fs = append(fs, &Forecast{
				Name:    s.Name,
				Start:   s.Start.Add(time.Duration(len(s.Values)) * s.Period),
				Period:  s.Period,
				Samples: tr.Samples,
			})
		}
	}

	return fs, nil
}

// MakeEvaluationPredictions runs the standard backtest split: the last
// PredictionLength values of every series are held out, the predictor
// forecasts them from what remains, and the full dataset comes back alongside
// the forecasts so an Evaluator can score them.
func MakeEvaluationPredictions(ds probcast.Dataset, p *Predictor) ([]*Forecast, probcast.Dataset, error) {
	if p == nil {
		return nil, nil, errors.Errorf("Predictor is nil")
	}

	psize := p.net.Config().PredictionLength

	held := make(probcast.Dataset, len(ds))
	for i, s := range ds {
		if len(s.Values) <= psize {
			return nil, nil, errors.Errorf("Series %q has %d values; holding out %d leaves nothing to condition on",
				s.Name, len(s.Values), psize)
		}

		held[i] = s
		held[i].Values = s.Values[:len(s.Values)-psize]
	}

	fs, err := p.Predict(held)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Couldn't forecast the held-out steps")
	}

	return fs, ds, nil
}
