package backtest

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Forecast is the sampled distribution over one series' future. Row s of
// Samples is one trajectory, column j one step ahead; Start is the time of the
// first predicted step.
type Forecast struct {
	Name   string
	Start  time.Time
	Period time.Duration

	Samples *mat.Dense
}

// Quantile reduces the samples to the per-step q'th quantile.
func (f *Forecast) Quantile(q float64) []float64 {
	if q <= 0 || q >= 1 {
		panic("Quantile must be in (0, 1)")
	}

	cols := f.sortedColumns()
	out := make([]float64, len(cols))
	for j, col := range cols {
		out[j] = stat.Quantile(q, stat.Empirical, col, nil)
	}

	return out
}

// Median is the 0.5 quantile, the point forecast most metrics score.
func (f *Forecast) Median() []float64 {
	return f.Quantile(0.5)
}

// Mean reduces the samples to the per-step sample mean.
func (f *Forecast) Mean() []float64 {
	rows, cols := f.Samples.Dims()

	out := make([]float64, cols)
	buf := make([]float64, rows)
	for j := range out {
		mat.Col(buf, j, f.Samples)
		out[j] = stat.Mean(buf, nil)
	}

	return out
}

// sortedColumns copies each step's samples out in ascending order, the form
// the quantile functions want.
func (f *Forecast) sortedColumns() [][]float64 {
	rows, cols := f.Samples.Dims()

	out := make([][]float64, cols)
	for j := range out {
		buf := make([]float64, rows)
		mat.Col(buf, j, f.Samples)
		sort.Float64s(buf)
		out[j] = buf
	}

	return out
}
