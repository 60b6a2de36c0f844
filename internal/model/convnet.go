// Package model provides ready-made architectures for image
// classification.
package model

import (
	"math/rand"

	"github.com/primer-ml/primer/internal/nn"
)

// NewConvNet builds the reference convnet for 28x28 single-channel
// images:
//
//	Conv2D(1->32, 3x3) -> ReLU -> MaxPool2D(2)
//	Conv2D(32->64, 3x3) -> ReLU -> MaxPool2D(2)
//	Conv2D(64->64, 3x3) -> ReLU
//	Flatten -> Linear(576->64) -> ReLU -> Linear(64->numClasses)
//
// The feature maps walk [1 28 28] -> [32 26 26] -> [32 13 13] ->
// [64 11 11] -> [64 5 5] -> [64 3 3], so the classifier head sees
// 64*3*3 = 576 features.
func NewConvNet(numClasses int, seed int64) *nn.Sequential {
	rng := rand.New(rand.NewSource(seed))
	return nn.NewSequential(
		nn.NewConv2D(1, 32, 3, 3, 1, 0, true, rng),
		nn.NewReLU(),
		nn.NewMaxPool2D(2, 2),
		nn.NewConv2D(32, 64, 3, 3, 1, 0, true, rng),
		nn.NewReLU(),
		nn.NewMaxPool2D(2, 2),
		nn.NewConv2D(64, 64, 3, 3, 1, 0, true, rng),
		nn.NewReLU(),
		nn.NewFlatten(),
		nn.NewLinear(64*3*3, 64, rng),
		nn.NewReLU(),
		nn.NewLinear(64, numClasses, rng),
	)
}

// NewMLP builds a small fully-connected baseline for 28x28 images.
//
// Much faster to train than the convnet; useful for cross-validation
// sweeps where dozens of models are fitted.
func NewMLP(numClasses int, seed int64) *nn.Sequential {
	rng := rand.New(rand.NewSource(seed))
	return nn.NewSequential(
		nn.NewFlatten(),
		nn.NewLinear(28*28, 128, rng),
		nn.NewReLU(),
		nn.NewLinear(128, numClasses, rng),
	)
}
