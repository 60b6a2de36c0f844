package validation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/dataset"
	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/optim"
	"github.com/primer-ml/primer/internal/train"
)

// twoBandDataset builds n samples of 3x3 images in two classes, one
// bright band per class.
func twoBandDataset(n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))

	images := make([][]float32, n)
	labels := make([]int, n)
	for i := range images {
		img := make([]float32, 9)
		class := i % 2
		start := 0
		if class == 1 {
			start = 6
		}
		for j := start; j < start+3; j++ {
			img[j] = 1
		}
		for j := range img {
			img[j] += rng.Float32() * 0.1
		}
		images[i] = img
		labels[i] = class
	}

	return &dataset.Dataset{Images: images, Labels: labels, Rows: 3, Cols: 3, Channels: 1}
}

// countingFactory wraps a model factory and counts how many fresh
// models it has built.
func countingFactory(count *int) ModelFactory {
	return func() (*nn.Sequential, optim.Optimizer) {
		*count++
		rng := rand.New(rand.NewSource(int64(*count)))
		model := nn.NewSequential(
			nn.NewFlatten(),
			nn.NewLinear(9, 8, rng),
			nn.NewReLU(),
			nn.NewLinear(8, 2, rng),
		)
		return model, optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	}
}

var quickFit = train.FitConfig{Epochs: 5, BatchSize: 8, Seed: 42}

func TestRunHoldOut(t *testing.T) {
	data := twoBandDataset(64, 1)
	test := twoBandDataset(16, 2)

	built := 0
	result, err := RunHoldOut(countingFactory(&built), data, test, 16, quickFit, nil)
	require.NoError(t, err)

	// One model for validation, one retrained on everything.
	assert.Equal(t, 2, built)
	require.Len(t, result.Folds, 1)
	require.NotNil(t, result.Test)
	require.NotNil(t, result.Final)

	assert.Greater(t, float64(result.Mean.Accuracy), 0.9)
	assert.Greater(t, float64(result.Test.Accuracy), 0.9)
}

func TestRunHoldOut_InvalidValSize(t *testing.T) {
	data := twoBandDataset(10, 3)
	_, err := RunHoldOut(countingFactory(new(int)), data, nil, 10, quickFit, nil)
	assert.Error(t, err)
}

func TestRunHoldOut_NoTestSet(t *testing.T) {
	data := twoBandDataset(32, 4)
	result, err := RunHoldOut(countingFactory(new(int)), data, nil, 8, quickFit, nil)
	require.NoError(t, err)
	assert.Nil(t, result.Test)
	assert.NotNil(t, result.Final)
}

func TestRunKFold(t *testing.T) {
	data := twoBandDataset(60, 5)

	built := 0
	result, err := RunKFold(countingFactory(&built), data, nil, 4, quickFit, nil)
	require.NoError(t, err)

	// One model per fold plus the final retrain.
	assert.Equal(t, 5, built)
	require.Len(t, result.Folds, 4)

	for i, fold := range result.Folds {
		assert.Equal(t, 0, fold.Iteration)
		assert.Equal(t, i, fold.Fold)
	}

	// Mean is the average of the fold scores.
	var sum float32
	for _, fold := range result.Folds {
		sum += fold.Score.Accuracy
	}
	assert.InDelta(t, float64(sum/4), float64(result.Mean.Accuracy), 1e-6)
	assert.Greater(t, float64(result.Mean.Accuracy), 0.9)
}

func TestRunIteratedKFold(t *testing.T) {
	data := twoBandDataset(40, 6)

	built := 0
	result, err := RunIteratedKFold(countingFactory(&built), data, nil, 3, 2, quickFit, nil)
	require.NoError(t, err)

	// p*k fold models plus the final retrain.
	assert.Equal(t, 2*3+1, built)
	require.Len(t, result.Folds, 6)

	// Iteration and fold indices walk the grid in order.
	for i, fold := range result.Folds {
		assert.Equal(t, i/3, fold.Iteration)
		assert.Equal(t, i%3, fold.Fold)
	}

	assert.Greater(t, float64(result.Mean.Accuracy), 0.9)
}
