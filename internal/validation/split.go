// Package validation implements dataset splitting and the model
// evaluation protocols built on top of it: hold-out validation, K-fold
// cross-validation and iterated K-fold with shuffling.
package validation

import (
	"fmt"
	"math/rand"
)

// Split is one train/validation partition, expressed as sample indices
// into the parent dataset.
type Split struct {
	Train []int
	Val   []int
}

// HoldOut partitions n samples into a training set and a validation
// set of valSize samples, after a seeded shuffle.
//
// Train and Val are disjoint and together cover every index exactly
// once.
func HoldOut(n, valSize int, seed int64) (Split, error) {
	if valSize <= 0 || valSize >= n {
		return Split{}, fmt.Errorf("validation: hold-out size %d must be in (0, %d)", valSize, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return Split{
		Train: perm[valSize:],
		Val:   perm[:valSize],
	}, nil
}

// KFold partitions n samples into k train/validation splits.
//
// The indices are shuffled once with the given seed, then cut into k
// contiguous blocks. Each block serves as the validation set of one
// split while the remaining blocks form its training set. When n is
// not divisible by k, the first n%k folds receive one extra validation
// sample, so the validation sets together cover every index exactly
// once.
func KFold(n, k int, seed int64) ([]Split, error) {
	if k < 2 {
		return nil, fmt.Errorf("validation: k must be at least 2, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("validation: k=%d exceeds sample count %d", k, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	base := n / k
	extra := n % k

	splits := make([]Split, k)
	start := 0
	for fold := 0; fold < k; fold++ {
		size := base
		if fold < extra {
			size++
		}
		end := start + size

		val := perm[start:end]
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[end:]...)

		splits[fold] = Split{Train: train, Val: val}
		start = end
	}

	return splits, nil
}

// IteratedKFold runs KFold p times with different shuffles, yielding
// p*k splits.
//
// Iteration i uses a seed derived from the base seed and i, so every
// iteration partitions the data differently while the whole procedure
// stays reproducible.
func IteratedKFold(n, k, p int, seed int64) ([]Split, error) {
	if p < 1 {
		return nil, fmt.Errorf("validation: iterations must be at least 1, got %d", p)
	}

	splits := make([]Split, 0, p*k)
	for i := 0; i < p; i++ {
		iter, err := KFold(n, k, seed+int64(i)*1000003)
		if err != nil {
			return nil, err
		}
		splits = append(splits, iter...)
	}
	return splits, nil
}
