package initializers

// Initializer dictates how the weights of a layer will be set, given a blank
// slice to hold them and the fan-in/fan-out of the layer they belong to.
type Initializer interface {
	Set(fanIn, fanOut int, ws []float64)
}

type random struct {
	RNG
}

// Random returns an Initializer that uses the provided RNG to generate the
// weights. There is no scaling beyond that of the RNG.
func Random(g RNG) random {
	return random{g}
}

// Set is the implementation of Initializer for Random.
func (r random) Set(fanIn, fanOut int, ws []float64) {
	for i := 0; i < len(ws); i++ {
		ws[i] = r.Gen()
	}
}

type zeros struct{}

// Zeros returns an Initializer that leaves every weight at zero. It is the
// default for biases.
func Zeros() zeros {
	return zeros{}
}

// Set is the implementation of Initializer for Zeros.
func (z zeros) Set(fanIn, fanOut int, ws []float64) {
	for i := range ws {
		ws[i] = 0
	}
}
