// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the mini-batch training loop.
//
// # Basic Usage
//
//	trainer := train.NewTrainer(model, optimizer, logger)
//	history := trainer.Fit(trainSet, valSet, train.FitConfig{
//	    Epochs:    5,
//	    BatchSize: 64,
//	    Seed:      42,
//	})
//	score := trainer.Evaluate(testSet, 64)
//	_, _ = history, score
package train

import (
	"go.uber.org/zap"

	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/optim"
	"github.com/primer-ml/primer/internal/train"
)

// FitConfig controls a training run.
type FitConfig = train.FitConfig

// Score holds the evaluation result of a model on a dataset.
type Score = train.Score

// History records per-epoch metrics from a Fit call.
type History = train.History

// Trainer wires a model, an optimizer and the loss function into a
// training loop.
type Trainer = train.Trainer

// NewTrainer creates a trainer. A nil logger disables progress logging.
func NewTrainer(model *nn.Sequential, optimizer optim.Optimizer, logger *zap.Logger) *Trainer {
	return train.NewTrainer(model, optimizer, logger)
}
