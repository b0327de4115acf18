package optimizers

type gradientdescent int8

// GradientDescent returns plain stochastic gradient descent: every weight moves
// against its gradient, scaled by the learning rate. It keeps no state.
func GradientDescent() gradientdescent {
	return gradientdescent(0)
}

func (g gradientdescent) TypeString() string {
	return "sgd"
}

// Run is the implementation of Optimizer for GradientDescent.
func (g gradientdescent) Run(size int, grad func(int) float64, add func(int, float64), learningRate float64) error {
	for i := 0; i < size; i++ {
		add(i, -1*learningRate*grad(i))
	}

	return nil
}
