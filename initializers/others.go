package initializers

// LeCun returns a variance scaling Initializer with scaling based on the number
// of inputs to the layer.
func LeCun() *varianceScaling {
	return VarianceScaling().In()
}

// He returns a variance scaling Initializer suited to layers followed by ReLU,
// with a factor of 2 and scaling based on the number of inputs.
func He() *varianceScaling {
	return VarianceScaling().In().Factor(2)
}

// Xavier returns a variance scaling Initializer with scaling based on the average
// of the numbers of inputs and outputs of the layer.
func Xavier() *varianceScaling {
	return VarianceScaling().Avg()
}

// Glorot is Xavier, for those who prefer first names.
func Glorot() *varianceScaling {
	return Xavier()
}
