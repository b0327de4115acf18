// Package penalties provides weight regularization. A Penalty folds its term
// into each weight's gradient just before the optimizer runs.
package penalties

// Penalty adjusts the gradient of a single weight. Penalize is given the
// current weight value and its loss gradient, and returns the gradient to use
// instead.
type Penalty interface {
	TypeString() string
	Penalize(w, grad float64) float64
}
