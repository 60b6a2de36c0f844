// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Design inspired by PyTorch's torch.optim but adapted for Go with explicit
// parameter gradients.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    optimizer.ZeroGrad()
//	    loss := criterion.Forward(model.Forward(input), targets)
//	    model.Backward(criterion.Backward())
//	    optimizer.Step()
//	}
package optim

import (
	"github.com/primer-ml/primer/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters in-place based on the gradients
// accumulated by the backward pass.
type Optimizer interface {
	// Step applies one gradient update to every parameter, reading each
	// parameter's accumulated gradient buffer.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// Call before each backward pass to prevent gradient accumulation
	// from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float32
}

// zeroGrads clears the gradient buffers of all given parameters.
func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
