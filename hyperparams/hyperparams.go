// Package hyperparams provides training hyperparameters that vary over the
// course of a run, like learning-rate schedules.
package hyperparams

// Schedule gives the value of one hyperparameter at each training iteration.
type Schedule interface {
	TypeString() string
	Value(iter int) float64
}
