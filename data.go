package probcast

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Series is one univariate time series: observations at a fixed period,
// starting at Start. Values must not contain NaN by the time they reach a
// network; ImputeZero is the standard way to get there.
type Series struct {
	Name   string
	Start  time.Time
	Period time.Duration
	Values []float64
}

// Dataset is an ordered collection of Series.
type Dataset []Series

// ImputeZero replaces NaN values with zero, returning the filled slice and the
// observation mask (false where a value was missing). The mask is for the
// caller's bookkeeping; the network only ever sees the filled values.
func ImputeZero(vs []float64) ([]float64, []bool) {
	filled := make([]float64, len(vs))
	observed := make([]bool, len(vs))
	for i, v := range vs {
		if math.IsNaN(v) {
			continue
		}

		filled[i] = v
		observed[i] = true
	}

	return filled, observed
}

// Batch is one batch of windows: row r of Context is series r's history and
// row r of Target the future that follows it.
type Batch struct {
	Context, Target *mat.Dense
}

// DataSupplier is the primary method of providing datasets to a network, either
// for training or testing.
type DataSupplier interface {
	// Get returns the next batch, given the current iteration.
	Get(iter int) (Batch, error)

	// DoneTesting indicates whether the testing process has finished before
	// the given iteration. It is only called when the DataSupplier is used for
	// providing testing data.
	DoneTesting(iter int) bool
}

type internalSupplier struct {
	get         func(int) (Batch, error)
	doneTesting func(int) bool
}

func (s internalSupplier) Get(iter int) (Batch, error) {
	return s.get(iter)
}

func (s internalSupplier) DoneTesting(iter int) bool {
	return s.doneTesting(iter)
}

// Windows converts a Dataset to a training DataSupplier: each batch holds
// batchSize (history, future) pairs cut at positions drawn uniformly from the
// series long enough to hold one. Draws are deterministic for a fixed src; a
// nil src falls back to the global source.
//
// Windows never reports done for testing. Use LastWindows to hold out data.
func Windows(ds Dataset, csize, psize, batchSize int, src *rand.Rand) (DataSupplier, error) {
	if csize < 1 {
		return nil, errors.Errorf("Context size must be >= 1 (%d)", csize)
	} else if psize < 1 {
		return nil, errors.Errorf("Prediction size must be >= 1 (%d)", psize)
	} else if batchSize < 1 {
		return nil, errors.Errorf("Batch size must be >= 1 (%d)", batchSize)
	}

	var eligible Dataset
	for _, s := range ds {
		if len(s.Values) >= csize+psize {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil, errors.Errorf("No series has the %d values a window needs", csize+psize)
	}

	intn := rand.Intn
	if src != nil {
		intn = src.Intn
	}

	return internalSupplier{
		get: func(iter int) (Batch, error) {
			ctx := mat.NewDense(batchSize, csize, nil)
			tgt := mat.NewDense(batchSize, psize, nil)

			for r := 0; r < batchSize; r++ {
				s := eligible[intn(len(eligible))]
				start := intn(len(s.Values) - csize - psize + 1)

				copy(ctx.RawRowView(r), s.Values[start:start+csize])
				copy(tgt.RawRowView(r), s.Values[start+csize:start+csize+psize])
			}

			return Batch{Context: ctx, Target: tgt}, nil
		},
		doneTesting: func(int) bool { return false },
	}, nil
}

// LastWindows converts a Dataset to a finite testing DataSupplier holding the
// final (history, future) pair of every series: the last psize values are the
// target and the csize before them the history, left-padded with zeros when a
// series is too short. Batches keep dataset order; the last batch may be
// smaller than batchSize.
func LastWindows(ds Dataset, csize, psize, batchSize int) (DataSupplier, error) {
	if csize < 1 {
		return nil, errors.Errorf("Context size must be >= 1 (%d)", csize)
	} else if psize < 1 {
		return nil, errors.Errorf("Prediction size must be >= 1 (%d)", psize)
	} else if batchSize < 1 {
		return nil, errors.Errorf("Batch size must be >= 1 (%d)", batchSize)
	} else if len(ds) == 0 {
		return nil, errors.Errorf("Dataset has no series")
	}

	for _, s := range ds {
		if len(s.Values) <= psize {
			return nil, errors.Errorf("Series %q has %d values; a target alone takes %d", s.Name, len(s.Values), psize)
		}
	}

	numBatches := (len(ds) + batchSize - 1) / batchSize

	return internalSupplier{
		get: func(iter int) (Batch, error) {
			if iter >= numBatches {
				return Batch{}, errors.Errorf("No testing batch %d; there are %d", iter, numBatches)
			}

			lo := iter * batchSize
			hi := lo + batchSize
			if hi > len(ds) {
				hi = len(ds)
			}

			ctx := mat.NewDense(hi-lo, csize, nil)
			tgt := mat.NewDense(hi-lo, psize, nil)

			for r, s := range ds[lo:hi] {
				cut := len(s.Values) - psize
				copy(tgt.RawRowView(r), s.Values[cut:])

				history := s.Values[:cut]
				row := ctx.RawRowView(r)
				if len(history) >= csize {
					copy(row, history[len(history)-csize:])
				} else {
					copy(row[csize-len(history):], history)
				}
			}

			return Batch{Context: ctx, Target: tgt}, nil
		},
		doneTesting: func(iter int) bool { return iter >= numBatches },
	}, nil
}
