package nn

import (
	"fmt"
	"strings"

	"github.com/primer-ml/primer/internal/tensor"
)

// Sequential is a container that chains layers together.
//
// Each layer's output becomes the next layer's input. Backward walks
// the chain in reverse, so the container forms a complete forward and
// backward pipeline:
//
//	model := nn.NewSequential(
//	    nn.NewConv2D(1, 32, 3, 3, 1, 0, true, rng),
//	    nn.NewReLU(),
//	    nn.NewMaxPool2D(2, 2),
//	    nn.NewFlatten(),
//	    nn.NewLinear(32*13*13, 10, rng),
//	)
type Sequential struct {
	layers []Layer
}

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Forward applies all layers in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, layer := range s.layers {
		output = layer.Forward(output)
	}
	return output
}

// Backward propagates the gradient through all layers in reverse order.
//
// Returns the gradient with respect to the model input.
func (s *Sequential) Backward(grad *tensor.Tensor) *tensor.Tensor {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters returns all trainable parameters from all layers.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Add appends a layer to the sequence.
func (s *Sequential) Add(layer Layer) {
	s.layers = append(s.layers, layer)
}

// Len returns the number of layers in the sequence.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Layer(index int) Layer {
	if index < 0 || index >= len(s.layers) {
		panic("sequential: layer index out of bounds")
	}
	return s.layers[index]
}

// OutputShape chains every layer's shape bookkeeping.
func (s *Sequential) OutputShape(input tensor.Shape) tensor.Shape {
	shape := input
	for _, layer := range s.layers {
		shape = layer.OutputShape(shape)
	}
	return shape
}

// NumParameters returns the total number of trainable scalar parameters.
func (s *Sequential) NumParameters() int {
	total := 0
	for _, p := range s.Parameters() {
		total += p.Data().NumElements()
	}
	return total
}

// Summary returns the architecture table for a given per-sample input
// shape: one row per layer with its output shape and parameter count.
//
// For the canonical 28x28 convnet the output-shape column walks
// [1 28 28] -> [32 26 26] -> [32 13 13] -> [64 11 11] -> [64 5 5] -> [64 3 3]
// before flattening into the classifier.
func (s *Sequential) Summary(input tensor.Shape) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-64s %-16s %s\n", "Layer", "Output Shape", "Params")
	fmt.Fprintf(&b, "%-64s %-16s %s\n", strings.Repeat("-", 5), strings.Repeat("-", 12), strings.Repeat("-", 6))

	shape := input
	for _, layer := range s.layers {
		shape = layer.OutputShape(shape)
		params := 0
		for _, p := range layer.Parameters() {
			params += p.Data().NumElements()
		}
		fmt.Fprintf(&b, "%-64s %-16s %d\n", layer.String(), shape.String(), params)
	}

	fmt.Fprintf(&b, "Total params: %d\n", s.NumParameters())
	return b.String()
}

// String returns a multi-line representation of the container.
func (s *Sequential) String() string {
	var b strings.Builder
	b.WriteString("Sequential(\n")
	for _, layer := range s.layers {
		fmt.Fprintf(&b, "  %s\n", layer.String())
	}
	b.WriteString(")")
	return b.String()
}
