// Package optimizers provides the gradient-based update rules used to train a
// network.
package optimizers

// Optimizer applies updates to one flat parameter vector. Run is handed the
// vector length, a getter for the accumulated gradient of each weight and an
// adder that offsets one weight; the implementation decides the step. One
// Optimizer instance serves exactly one parameter tensor for the whole run, so
// implementations can keep per-weight state by index.
type Optimizer interface {
	TypeString() string
	Run(size int, grad func(int) float64, add func(int, float64), learningRate float64) error
}
