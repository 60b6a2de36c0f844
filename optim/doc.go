// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training.
//
// # Overview
//
// This package contains:
//   - Optimizer interface
//   - SGD with momentum
//   - Adam
//
// # Basic Usage
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    optimizer.ZeroGrad()
//	    loss := criterion.Forward(model.Forward(input), targets)
//	    model.Backward(criterion.Backward())
//	    optimizer.Step()
//	    _ = loss
//	}
package optim
