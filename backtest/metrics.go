package backtest

import "math"

// These are the per-series pieces the Evaluator aggregates. All of them score
// a point forecast against the actual future; quantileLoss additionally pins
// the forecast to a coverage level.

// absError is the summed absolute error of the point forecast.
func absError(actual, forecast []float64) float64 {
	var sum float64
	for j, a := range actual {
		sum += math.Abs(forecast[j] - a)
	}

	return sum
}

// mse is the mean squared error of the point forecast.
func mse(actual, forecast []float64) float64 {
	var sum float64
	for j, a := range actual {
		d := forecast[j] - a
		sum += d * d
	}

	return sum / float64(len(actual))
}

// smape is the symmetric mean absolute percentage error, in [0, 2]. Steps
// where both the actual and the forecast are zero come out as NaN.
func smape(actual, forecast []float64) float64 {
	var sum float64
	for j, a := range actual {
		sum += 2 * math.Abs(forecast[j]-a) / (math.Abs(a) + math.Abs(forecast[j]))
	}

	return sum / float64(len(actual))
}

// quantileLoss is twice the pinball loss of a q'th-quantile forecast, summed
// over steps. At q = 0.5 it reduces to the absolute error.
func quantileLoss(actual, forecast []float64, q float64) float64 {
	var sum float64
	for j, a := range actual {
		indicator := 0.0
		if a <= forecast[j] {
			indicator = 1
		}
		sum += 2 * math.Abs((forecast[j]-a)*(indicator-q))
	}

	return sum
}

// coverage is the fraction of actual values at or below the quantile forecast.
func coverage(actual, forecast []float64) float64 {
	var n int
	for j, a := range actual {
		if a <= forecast[j] {
			n++
		}
	}

	return float64(n) / float64(len(actual))
}

// seasonalError is the mean absolute difference between the history and
// itself m steps earlier, the scale MASE normalizes by. Histories of m values
// or fewer have no such differences and come out as NaN.
func seasonalError(history []float64, m int) float64 {
	if len(history) <= m {
		return math.NaN()
	}

	var sum float64
	for t := m; t < len(history); t++ {
		sum += math.Abs(history[t] - history[t-m])
	}

	return sum / float64(len(history)-m)
}
