package nn

import (
	"github.com/primer-ml/primer/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A parameter owns both its value tensor and a gradient buffer of the
// same shape. Layers accumulate into the gradient buffer during
// Backward; optimizers read it during Step and callers clear it with
// ZeroGrad before the next iteration.
type Parameter struct {
	name string
	data *tensor.Tensor
	grad *tensor.Tensor
}

// NewParameter creates a new trainable parameter.
//
// The value tensor should be initialized before creating the Parameter.
// The gradient buffer is allocated immediately, zero-filled.
func NewParameter(name string, data *tensor.Tensor) *Parameter {
	return &Parameter{
		name: name,
		data: data,
		grad: tensor.Zeros(data.Shape()),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Data returns the parameter value tensor.
func (p *Parameter) Data() *tensor.Tensor {
	return p.data
}

// Grad returns the gradient buffer.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the gradient buffer.
//
// Call before each training iteration to avoid accumulating gradients
// across iterations.
func (p *Parameter) ZeroGrad() {
	g := p.grad.Data()
	for i := range g {
		g[i] = 0
	}
}
