package nn

import (
	"math"
	"math/rand"

	"github.com/primer-ml/primer/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			//nolint:gosec // math/rand is fine for weight initialization
			u = rand.Float64()
		}
		data[i] = float32((u*2.0 - 1.0) * bound)
	}
	return t
}

// He initialization for weights feeding ReLU activations.
//
// Values are drawn from N(0, sqrt(2/fan_in)).
func He(fanIn int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	std := math.Sqrt(2.0 / float64(fanIn))

	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		var n float64
		if rng != nil {
			n = rng.NormFloat64()
		} else {
			n = rand.NormFloat64()
		}
		data[i] = float32(n * std)
	}
	return t
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.Zeros(shape)
}
