// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/tensor"
)

// Layer is the common interface for all neural network layers.
type Layer = nn.Layer

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, rng)
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// Conv2D represents a 2D convolutional layer.
type Conv2D = nn.Conv2D

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	conv := nn.NewConv2D(1, 32, 3, 3, 1, 0, true, rng) // in=1, out=32, kernel=3x3, stride=1, padding=0, bias
func NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding int, useBias bool, rng *rand.Rand) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, rng)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a new 2D max pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	return nn.NewMaxPool2D(kernelSize, stride)
}

// Flatten collapses all per-sample dimensions into one.
type Flatten = nn.Flatten

// NewFlatten creates a new flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Activations

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Containers

// Sequential chains layers into a forward/backward pipeline.
type Sequential = nn.Sequential

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) *Sequential {
	return nn.NewSequential(layers...)
}

// Loss functions

// CrossEntropyLoss computes cross-entropy loss for classification.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// Accuracy computes the fraction of argmax predictions matching the
// targets.
func Accuracy(logits *tensor.Tensor, targets []int) float32 {
	return nn.Accuracy(logits, targets)
}
