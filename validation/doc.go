// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package validation provides dataset splitting and model evaluation
// protocols: hold-out validation, K-fold cross-validation and iterated
// K-fold with shuffling.
//
// # Basic Usage
//
//	splits, err := validation.KFold(dataset.Len(), 5, seed)
//	if err != nil {
//	    return err
//	}
//
//	result, err := validation.RunKFold(factory, dataset, testSet, 5, fitConfig, logger)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Mean.Accuracy)
package validation
