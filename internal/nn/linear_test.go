package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primer-ml/primer/internal/tensor"
)

func TestLinear_ForwardValues(t *testing.T) {
	l := NewLinear(3, 2, rand.New(rand.NewSource(1)))

	// W = [[1, 2, 3], [4, 5, 6]], b = [0.5, -0.5]
	copy(l.weight.Data().Data(), []float32{1, 2, 3, 4, 5, 6})
	copy(l.bias.Data().Data(), []float32{0.5, -0.5})

	input, err := tensor.FromSlice([]float32{1, 1, 1}, tensor.Shape{1, 3})
	assert.NoError(t, err)

	output := l.Forward(input)

	// y = [1+2+3+0.5, 4+5+6-0.5] = [6.5, 14.5]
	assert.InDelta(t, 6.5, float64(output.Data()[0]), 1e-6)
	assert.InDelta(t, 14.5, float64(output.Data()[1]), 1e-6)
}

func TestLinear_BackwardValues(t *testing.T) {
	l := NewLinear(2, 1, rand.New(rand.NewSource(2)))
	copy(l.weight.Data().Data(), []float32{3, -2})

	input, _ := tensor.FromSlice([]float32{4, 5}, tensor.Shape{1, 2})
	l.Forward(input)

	grad, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1, 1})
	gradInput := l.Backward(grad)

	// dx = g * W = [6, -4]; dW = g * x = [8, 10]; db = 2.
	assert.Equal(t, []float32{6, -4}, gradInput.Data())
	assert.Equal(t, []float32{8, 10}, l.weight.Grad().Data())
	assert.Equal(t, []float32{2}, l.bias.Grad().Data())
}

func TestLinear_GradientAccumulates(t *testing.T) {
	l := NewLinear(2, 1, rand.New(rand.NewSource(3)))

	input, _ := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	grad, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1})

	l.Forward(input)
	l.Backward(grad)
	l.Forward(input)
	l.Backward(grad)

	// Two identical backward passes double the bias gradient.
	assert.Equal(t, float32(2), l.bias.Grad().Data()[0])

	l.bias.ZeroGrad()
	assert.Equal(t, float32(0), l.bias.Grad().Data()[0])
}

func TestLinear_ShapeValidation(t *testing.T) {
	l := NewLinear(4, 2, nil)

	assert.Panics(t, func() {
		l.Forward(tensor.Zeros(tensor.Shape{2, 3}))
	})
	assert.Panics(t, func() {
		l.Forward(tensor.Zeros(tensor.Shape{4}))
	})
}

func TestLinear_OutputShape(t *testing.T) {
	l := NewLinear(576, 64, nil)
	assert.True(t, l.OutputShape(tensor.Shape{576}).Equal(tensor.Shape{64}))
	assert.Panics(t, func() { l.OutputShape(tensor.Shape{128}) })
}
