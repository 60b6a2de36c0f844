// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, Conv2D, MaxPool2D, Flatten
//   - Activations: ReLU
//   - Loss functions: CrossEntropyLoss
//   - Utilities: Sequential, Layer interface, Parameter
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/primer-ml/primer/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(42))
//
//	    model := nn.NewSequential(
//	        nn.NewConv2D(1, 32, 3, 3, 1, 0, true, rng),
//	        nn.NewReLU(),
//	        nn.NewMaxPool2D(2, 2),
//	        nn.NewFlatten(),
//	        nn.NewLinear(32*13*13, 10, rng),
//	    )
//
//	    output := model.Forward(input)
//	    _ = output
//	}
//
// Every layer implements an explicit Backward that accumulates
// parameter gradients, so a model trains with Forward, loss Backward,
// model Backward and an optimizer Step. See the optim package.
package nn
