// Package tensor implements the dense float32 tensor used throughout Primer.
//
// The instructional workloads in this repository are CPU-only and
// single-threaded, so a tensor is simply a shape plus a flat row-major
// float32 buffer. Reshape shares the underlying buffer; Clone copies it.
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense row-major float32 tensor.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
//
// Panics if the shape is invalid; shape errors are programmer errors here.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// FromSlice creates a tensor backed by the given data.
//
// The data slice is used directly, not copied. Returns an error if the
// data length does not match the shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Tensor{shape: shape.Clone(), data: data}, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float32) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor filled with samples from N(0, 1).
//
// A nil rng falls back to the shared math/rand source.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := New(shape)
	for i := range t.data {
		if rng != nil {
			t.data[i] = float32(rng.NormFloat64())
		} else {
			t.data[i] = float32(rand.NormFloat64())
		}
	}
	return t
}

// Shape returns the tensor's shape. Callers must not mutate it.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying flat buffer in row-major order.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Reshape returns a tensor with the given dimensions sharing this
// tensor's buffer.
//
// Panics if the element count changes; reshape never reallocates.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	newShape := Shape(dims)
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("tensor: cannot reshape %v to %v (element count mismatch)",
			t.shape, newShape))
	}
	return &Tensor{shape: newShape.Clone(), data: t.data}
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v)", t.shape)
}
