// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/primer-ml/primer/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Tensor is a dense float32 tensor with row-major layout.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with standard-normal random values.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, rng)
}

// FromSlice creates a tensor sharing the given buffer.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}
