package nn

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// Flatten collapses all per-sample dimensions into one.
//
// Input: [batch, d1, d2, ...] -> Output: [batch, d1*d2*...].
// The bridge between convolutional feature maps and dense layers.
type Flatten struct {
	inShape tensor.Shape
}

// NewFlatten creates a Flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward reshapes the batched input to 2D. The buffer is shared.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got %v", shape))
	}
	f.inShape = shape.Clone()
	features := 1
	for _, dim := range shape[1:] {
		features *= dim
	}
	return input.Reshape(shape[0], features)
}

// Backward restores the gradient to the cached input shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if f.inShape == nil {
		panic("flatten: Backward called before Forward")
	}
	return grad.Reshape(f.inShape...)
}

// Parameters returns an empty slice (Flatten has no parameters).
func (f *Flatten) Parameters() []*Parameter {
	return []*Parameter{}
}

// OutputShape collapses the per-sample shape to a single dimension.
func (f *Flatten) OutputShape(input tensor.Shape) tensor.Shape {
	return tensor.Shape{input.NumElements()}
}

// String returns a string representation of the layer.
func (f *Flatten) String() string {
	return "Flatten()"
}
