package backtest

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/trunghlt/probcast"
)

var defaultQuantiles = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

// Evaluator scores forecasts against the series they predicted. Series are
// scored in parallel; the shared sums are atomic, so the aggregate is the same
// whatever the interleaving, up to float addition order.
type Evaluator struct {
	quantiles   []float64
	seasonality int
	workers     int
	logger      *logrus.Logger
}

// NewEvaluator returns an Evaluator with the 0.1 through 0.9 deciles, a
// seasonality of 1 and one worker per CPU.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		quantiles:   defaultQuantiles,
		seasonality: 1,
		workers:     runtime.GOMAXPROCS(0),
		logger:      logrus.New(),
	}
}

// Quantiles replaces the coverage levels scored. Will panic if none are given
// or any is outside (0, 1).
func (e *Evaluator) Quantiles(qs ...float64) *Evaluator {
	if len(qs) == 0 {
		panic("Evaluator needs at least one quantile")
	}
	for _, q := range qs {
		if q <= 0 || q >= 1 {
			panic(errors.Errorf("Quantiles must be in (0, 1) (%v)", q))
		}
	}

	e.quantiles = append([]float64(nil), qs...)
	return e
}

// Seasonality sets the lag of the naive forecaster MASE compares against.
// Will panic if m is less than 1.
func (e *Evaluator) Seasonality(m int) *Evaluator {
	if m < 1 {
		panic(errors.Errorf("Seasonality must be >= 1 (%d)", m))
	}

	e.seasonality = m
	return e
}

// Workers bounds how many series are scored concurrently. Will panic if n is
// less than 1.
func (e *Evaluator) Workers(n int) *Evaluator {
	if n < 1 {
		panic(errors.Errorf("Workers must be >= 1 (%d)", n))
	}

	e.workers = n
	return e
}

// Logger replaces the logger the aggregate is reported to.
func (e *Evaluator) Logger(l *logrus.Logger) *Evaluator {
	if l == nil {
		panic("Logger must not be nil")
	}

	e.logger = l
	return e
}

// Metrics is the aggregate scorecard of one backtest. MSE, SMAPE, MASE and the
// coverages are means over series; AbsError and the quantile losses are sums
// over every series and step, and the weighted variants are those sums divided
// by the summed magnitude of the actuals. Weighted metrics degenerate to NaN
// or infinity when the actuals sum to zero.
type Metrics struct {
	MSE      float64
	RMSE     float64
	AbsError float64
	ND       float64
	SMAPE    float64
	MASE     float64

	QuantileLoss             map[float64]float64
	WeightedQuantileLoss     map[float64]float64
	MeanWeightedQuantileLoss float64

	Coverage map[float64]float64
}

// Run scores forecast i against the final steps of ds[i], the split
// MakeEvaluationPredictions produces. Everything before those steps is the
// history the seasonal error is measured on.
func (e *Evaluator) Run(fs []*Forecast, ds probcast.Dataset) (*Metrics, error) {
	if len(fs) == 0 {
		return nil, errors.Errorf("No forecasts to evaluate")
	} else if len(fs) != len(ds) {
		return nil, errors.Errorf("Got %d forecasts for %d series", len(fs), len(ds))
	}

	var (
		mseSum    = atomic.NewFloat64(0)
		absErrSum = atomic.NewFloat64(0)
		targetSum = atomic.NewFloat64(0)
		smapeSum  = atomic.NewFloat64(0)
		maseSum   = atomic.NewFloat64(0)
	)
	qlSums := make([]*atomic.Float64, len(e.quantiles))
	covSums := make([]*atomic.Float64, len(e.quantiles))
	for i := range e.quantiles {
		qlSums[i] = atomic.NewFloat64(0)
		covSums[i] = atomic.NewFloat64(0)
	}

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i := range fs {
		i := i
		g.Go(func() error {
			f, s := fs[i], ds[i]

			_, psize := f.Samples.Dims()
			if len(s.Values) <= psize {
				return errors.Errorf("Series %q has %d values, too few to hold its %d-step forecast",
					s.Name, len(s.Values), psize)
			}

			cut := len(s.Values) - psize
			history, actual := s.Values[:cut], s.Values[cut:]

			cols := f.sortedColumns()
			median := make([]float64, psize)
			for j, col := range cols {
				median[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
			}

			mseSum.Add(mse(actual, f.Mean()))
			absErrSum.Add(absError(actual, median))
			smapeSum.Add(smape(actual, median))
			maseSum.Add(absError(actual, median) / float64(psize) / seasonalError(history, e.seasonality))

			var at float64
			for _, a := range actual {
				at += math.Abs(a)
			}
			targetSum.Add(at)

			pq := make([]float64, psize)
			for k, q := range e.quantiles {
				for j, col := range cols {
					pq[j] = stat.Quantile(q, stat.Empirical, col, nil)
				}
				qlSums[k].Add(quantileLoss(actual, pq, q))
				covSums[k].Add(coverage(actual, pq))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := float64(len(fs))
	m := &Metrics{
		MSE:      mseSum.Load() / n,
		AbsError: absErrSum.Load(),
		SMAPE:    smapeSum.Load() / n,
		MASE:     maseSum.Load() / n,

		QuantileLoss:         make(map[float64]float64, len(e.quantiles)),
		WeightedQuantileLoss: make(map[float64]float64, len(e.quantiles)),
		Coverage:             make(map[float64]float64, len(e.quantiles)),
	}
	m.RMSE = math.Sqrt(m.MSE)
	m.ND = m.AbsError / targetSum.Load()

	var wSum float64
	for k, q := range e.quantiles {
		m.QuantileLoss[q] = qlSums[k].Load()
		m.WeightedQuantileLoss[q] = m.QuantileLoss[q] / targetSum.Load()
		m.Coverage[q] = covSums[k].Load() / n

		wSum += m.WeightedQuantileLoss[q]
	}
	m.MeanWeightedQuantileLoss = wSum / float64(len(e.quantiles))

	e.logger.WithFields(logrus.Fields{
		"series":   len(fs),
		"MSE":      m.MSE,
		"ND":       m.ND,
		"mean_wQL": m.MeanWeightedQuantileLoss,
	}).Info("Backtest scored")

	return m, nil
}
