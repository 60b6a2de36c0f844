// Package nn implements the neural network layers used by Primer.
//
// This package provides the building blocks for small convolutional
// classifiers:
//   - Layer interface: forward/backward contract for all layers
//   - Parameter: trainable parameter with its gradient buffer
//   - Conv2D, MaxPool2D, Flatten, Linear, ReLU
//   - CrossEntropyLoss and Accuracy
//   - Sequential: container for stacking layers, with Summary
//
// Layers compute their own gradients explicitly: Forward caches whatever
// the backward pass needs, and Backward consumes the upstream gradient,
// accumulates parameter gradients, and returns the gradient with respect
// to the layer input.
package nn

import (
	"github.com/primer-ml/primer/internal/tensor"
)

// Layer is the base interface for all neural network layers.
//
// Forward and Backward operate on batched tensors; OutputShape operates
// on per-sample shapes (no batch dimension) and implements the shape
// bookkeeping used by Sequential.Summary.
type Layer interface {
	// Forward computes the layer output for a batched input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward consumes the gradient of the loss with respect to the
	// layer output, accumulates parameter gradients, and returns the
	// gradient with respect to the layer input.
	//
	// Backward must be called after Forward on the same input.
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this layer.
	// Returns an empty slice for layers without parameters.
	Parameters() []*Parameter

	// OutputShape computes the per-sample output shape for a given
	// per-sample input shape. Panics on incompatible shapes.
	OutputShape(input tensor.Shape) tensor.Shape

	// String returns a one-line description of the layer.
	String() string
}
