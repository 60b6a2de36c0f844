// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package validation

import (
	"go.uber.org/zap"

	"github.com/primer-ml/primer/internal/dataset"
	"github.com/primer-ml/primer/internal/train"
	"github.com/primer-ml/primer/internal/validation"
)

// Split is one train/validation partition of sample indices.
type Split = validation.Split

// HoldOut partitions n samples into a shuffled training set and a
// validation set of valSize samples.
func HoldOut(n, valSize int, seed int64) (Split, error) {
	return validation.HoldOut(n, valSize, seed)
}

// KFold partitions n samples into k train/validation splits.
func KFold(n, k int, seed int64) ([]Split, error) {
	return validation.KFold(n, k, seed)
}

// IteratedKFold runs KFold p times with different shuffles.
func IteratedKFold(n, k, p int, seed int64) ([]Split, error) {
	return validation.IteratedKFold(n, k, p, seed)
}

// Protocol runners

// ModelFactory builds a fresh, untrained model plus its optimizer.
type ModelFactory = validation.ModelFactory

// FoldScore is the validation result of a single fold.
type FoldScore = validation.FoldScore

// Result aggregates the outcome of a protocol run.
type Result = validation.Result

// RunHoldOut trains once, scores on the held-out split, then retrains
// on all data and scores on test.
func RunHoldOut(factory ModelFactory, data, test *dataset.Dataset, valSize int,
	config train.FitConfig, logger *zap.Logger) (*Result, error) {
	return validation.RunHoldOut(factory, data, test, valSize, config, logger)
}

// RunKFold trains k models, one per fold, and reports the mean score.
func RunKFold(factory ModelFactory, data, test *dataset.Dataset, k int,
	config train.FitConfig, logger *zap.Logger) (*Result, error) {
	return validation.RunKFold(factory, data, test, k, config, logger)
}

// RunIteratedKFold runs p repetitions of K-fold with fresh shuffles.
func RunIteratedKFold(factory ModelFactory, data, test *dataset.Dataset, k, p int,
	config train.FitConfig, logger *zap.Logger) (*Result, error) {
	return validation.RunIteratedKFold(factory, data, test, k, p, config, logger)
}
