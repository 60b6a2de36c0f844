package nn

import (
	"github.com/primer-ml/primer/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation layer.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct {
	lastInput *tensor.Tensor
}

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := tensor.New(input.Shape())
	in := input.Data()
	out := output.Data()
	for i, v := range in {
		if v > 0 {
			out[i] = v
		}
	}
	r.lastInput = input
	return output
}

// Backward passes the gradient through where the input was positive.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.lastInput == nil {
		panic("relu: Backward called before Forward")
	}
	gradInput := tensor.New(grad.Shape())
	in := r.lastInput.Data()
	g := grad.Data()
	gi := gradInput.Data()
	for i := range g {
		if in[i] > 0 {
			gi[i] = g[i]
		}
	}
	return gradInput
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return []*Parameter{}
}

// OutputShape is the identity for activations.
func (r *ReLU) OutputShape(input tensor.Shape) tensor.Shape {
	return input.Clone()
}

// String returns a string representation of the layer.
func (r *ReLU) String() string {
	return "ReLU()"
}
