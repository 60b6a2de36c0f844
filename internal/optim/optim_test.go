package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/tensor"
)

// paramWithGrad builds a single parameter with preset value and gradient.
func paramWithGrad(t *testing.T, value, grad []float32) *nn.Parameter {
	t.Helper()

	data, err := tensor.FromSlice(value, tensor.Shape{len(value)})
	require.NoError(t, err)

	p := nn.NewParameter("w", data)
	copy(p.Grad().Data(), grad)
	return p
}

func TestSGD_Step(t *testing.T) {
	p := paramWithGrad(t, []float32{1, 2, 3}, []float32{0.5, -0.5, 1})

	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})
	sgd.Step()

	// param -= lr * grad
	assert.InDelta(t, 0.95, float64(p.Data().Data()[0]), 1e-6)
	assert.InDelta(t, 2.05, float64(p.Data().Data()[1]), 1e-6)
	assert.InDelta(t, 2.90, float64(p.Data().Data()[2]), 1e-6)
}

func TestSGD_DefaultLR(t *testing.T) {
	sgd := NewSGD(nil, SGDConfig{})
	assert.Equal(t, float32(0.01), sgd.GetLR())

	sgd.SetLR(0.001)
	assert.Equal(t, float32(0.001), sgd.GetLR())
}

func TestSGD_Momentum(t *testing.T) {
	p := paramWithGrad(t, []float32{1}, []float32{1})
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: velocity = 1, param = 1 - 0.1*1 = 0.9
	sgd.Step()
	assert.InDelta(t, 0.9, float64(p.Data().Data()[0]), 1e-6)

	// Step 2 with the same gradient: velocity = 0.9*1 + 1 = 1.9,
	// param = 0.9 - 0.1*1.9 = 0.71
	sgd.Step()
	assert.InDelta(t, 0.71, float64(p.Data().Data()[0]), 1e-6)
}

func TestSGD_ZeroGrad(t *testing.T) {
	p := paramWithGrad(t, []float32{1, 1}, []float32{3, 4})

	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})
	sgd.ZeroGrad()

	assert.Equal(t, []float32{0, 0}, p.Grad().Data())
}

func TestAdam_Defaults(t *testing.T) {
	adam := NewAdam(nil, AdamConfig{})
	assert.Equal(t, float32(0.001), adam.GetLR())
	assert.Equal(t, float32(0.9), adam.beta1)
	assert.Equal(t, float32(0.999), adam.beta2)
	assert.Equal(t, float32(1e-8), adam.eps)
}

func TestAdam_FirstStep(t *testing.T) {
	p := paramWithGrad(t, []float32{1}, []float32{0.5})
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.001})

	adam.Step()

	// With bias correction, the first step moves by almost exactly lr
	// in the negative gradient direction:
	// m_hat = g, v_hat = g^2, update = lr * g / (|g| + eps) ~= lr.
	assert.InDelta(t, 1-0.001, float64(p.Data().Data()[0]), 1e-5)
}

func TestAdam_StepDirection(t *testing.T) {
	p := paramWithGrad(t, []float32{1, 1}, []float32{2, -2})
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.01})

	adam.Step()

	// Positive gradient decreases the parameter, negative increases it.
	assert.Less(t, float64(p.Data().Data()[0]), 1.0)
	assert.Greater(t, float64(p.Data().Data()[1]), 1.0)
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// Minimize f(x) = x^2 starting from x = 5.
	data, err := tensor.FromSlice([]float32{5}, tensor.Shape{1})
	require.NoError(t, err)
	p := nn.NewParameter("x", data)

	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	for i := 0; i < 500; i++ {
		adam.ZeroGrad()
		x := p.Data().Data()[0]
		p.Grad().Data()[0] = 2 * x
		adam.Step()
	}

	assert.Less(t, math.Abs(float64(p.Data().Data()[0])), 0.05)
}

func TestSGD_ConvergesOnQuadratic(t *testing.T) {
	data, err := tensor.FromSlice([]float32{5}, tensor.Shape{1})
	require.NoError(t, err)
	p := nn.NewParameter("x", data)

	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.5})

	for i := 0; i < 100; i++ {
		sgd.ZeroGrad()
		x := p.Data().Data()[0]
		p.Grad().Data()[0] = 2 * x
		sgd.Step()
	}

	assert.Less(t, math.Abs(float64(p.Data().Data()[0])), 1e-3)
}
