package hyperparams

type constant float64

// Constant returns a Schedule that keeps the same value forever.
func Constant(value float64) *constant {
	c := constant(value)
	return &c
}

func (c *constant) TypeString() string {
	return "constant"
}

// Value is the implementation of Schedule for Constant.
func (c *constant) Value(iter int) float64 {
	return float64(*c)
}
