// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primer-ml/primer/nn"
	"github.com/primer-ml/primer/tensor"
)

func TestFacade_BuildAndForward(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	model := nn.NewSequential(
		nn.NewConv2D(1, 8, 3, 3, 1, 0, true, rng),
		nn.NewReLU(),
		nn.NewMaxPool2D(2, 2),
		nn.NewFlatten(),
		nn.NewLinear(8*13*13, 10, rng),
	)

	out := model.Forward(tensor.Zeros(tensor.Shape{2, 1, 28, 28}))
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 10}))
	assert.True(t, model.OutputShape(tensor.Shape{1, 28, 28}).Equal(tensor.Shape{10}))
}

func TestFacade_LossAndAccuracy(t *testing.T) {
	criterion := nn.NewCrossEntropyLoss()

	logits := tensor.Zeros(tensor.Shape{2, 4})
	loss := criterion.Forward(logits, []int{0, 3})
	assert.Greater(t, float64(loss), 0.0)

	grad := criterion.Backward()
	assert.True(t, grad.Shape().Equal(tensor.Shape{2, 4}))

	assert.GreaterOrEqual(t, float64(nn.Accuracy(logits, []int{0, 3})), 0.0)
}
