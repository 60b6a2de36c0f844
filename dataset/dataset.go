// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides labeled image datasets and mini-batching.
//
// # Basic Usage
//
//	data, err := dataset.LoadMNIST("data/mnist", true)
//	if err != nil {
//	    data = dataset.Synthetic(512, 10, 42)
//	}
//
//	for _, batch := range data.Batches(64, true, rng) {
//	    _ = batch.Images // [N, 1, 28, 28]
//	    _ = batch.Labels
//	}
package dataset

import (
	"github.com/primer-ml/primer/internal/dataset"
)

// Dataset holds a labeled image classification dataset.
type Dataset = dataset.Dataset

// Batch is a mini-batch ready for a forward pass.
type Batch = dataset.Batch

// LoadMNIST loads the MNIST dataset from IDX binary files, reading
// ".gz" variants transparently.
func LoadMNIST(dataDir string, train bool) (*Dataset, error) {
	return dataset.LoadMNIST(dataDir, train)
}

// Synthetic generates a deterministic synthetic dataset with the MNIST
// geometry.
func Synthetic(numSamples, numClasses int, seed int64) *Dataset {
	return dataset.Synthetic(numSamples, numClasses, seed)
}

// ReadIDXImages reads an IDX image file.
func ReadIDXImages(path string) (images [][]byte, rows, cols int, err error) {
	return dataset.ReadIDXImages(path)
}

// ReadIDXLabels reads an IDX label file.
func ReadIDXLabels(path string) ([]byte, error) {
	return dataset.ReadIDXLabels(path)
}
