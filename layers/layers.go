// Package layers provides the building blocks of the network trunk. Each layer
// works on batches: rows of the input matrix are independent series, columns are
// features. A forward pass caches whatever its backward pass will need, so the
// usage contract is strictly forward-then-backward on the same instance.
package layers

import "gonum.org/v1/gonum/mat"

// Layer is a single differentiable stage of the trunk.
//
// Forward runs the layer on a batch. train distinguishes training from inference
// for layers whose behavior differs between the two. Backward consumes the
// gradient of the loss with respect to the layer's output and returns it with
// respect to the layer's input, accumulating parameter gradients along the way.
type Layer interface {
	TypeString() string
	OutSize(in int) int
	Forward(x *mat.Dense, train bool) *mat.Dense
	Backward(grad *mat.Dense) *mat.Dense
}

// Adjustable is the subset of Layers with learnable parameters.
type Adjustable interface {
	Layer
	Params() []*Param
}

// Stateful is the subset of Layers carrying non-learnable state that training
// updates as a side effect, like running batch statistics. State is saved and
// copied alongside parameters but never touched by optimizers.
type Stateful interface {
	Layer
	StateParams() []*Param
}

// Param is one learnable tensor of a layer, exposed as flat slices over the
// layer's backing arrays. Optimizers read Grad and write Data in place; the
// layer sees updates immediately.
type Param struct {
	Name string
	Data []float64
	Grad []float64
}

// ZeroGrad resets the accumulated gradient.
func (p *Param) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}
