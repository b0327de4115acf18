package hyperparams

type step struct {
	Iter int
	Val  float64
}

type stepper []step

// Step returns a piecewise-constant Schedule starting at base. Breakpoints are
// added with Add; each value holds until the next breakpoint.
func Step(base float64) *stepper {
	s := make([]step, 1)
	s[0] = step{0, base}

	st := stepper(s)
	return &st
}

// Add adds a breakpoint, returning the Schedule. Breakpoints must be added in
// increasing iteration order.
func (s *stepper) Add(iter int, value float64) *stepper {
	*s = append(*s, step{iter, value})
	return s
}

func (s *stepper) TypeString() string {
	return "step"
}

// Value is the implementation of Schedule for Step.
func (s *stepper) Value(iter int) float64 {
	sl := []step(*s)
	for i := 1; i < len(sl); i++ {
		if sl[i].Iter > iter {
			return sl[i-1].Val
		}
	}

	return sl[len(sl)-1].Val
}
