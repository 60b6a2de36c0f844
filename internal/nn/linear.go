package nn

import (
	"fmt"
	"math/rand"

	"github.com/primer-ml/primer/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	lastInput *tensor.Tensor
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng))
	bias := NewParameter("bias", Zeros(tensor.Shape{outFeatures}))

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("linear: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	n := inputShape[0]
	output := tensor.New(tensor.Shape{n, l.outFeatures})

	inputData := input.Data()
	outputData := output.Data()
	weightData := l.weight.Data().Data()
	biasData := l.bias.Data().Data()

	for batch := 0; batch < n; batch++ {
		x := inputData[batch*l.inFeatures : (batch+1)*l.inFeatures]
		y := outputData[batch*l.outFeatures : (batch+1)*l.outFeatures]
		for o := 0; o < l.outFeatures; o++ {
			wRow := weightData[o*l.inFeatures : (o+1)*l.inFeatures]
			sum := biasData[o]
			for i := 0; i < l.inFeatures; i++ {
				sum += wRow[i] * x[i]
			}
			y[o] = sum
		}
	}

	l.lastInput = input
	return output
}

// Backward computes gradients for the weight, bias, and input.
//
// grad: [batch_size, out_features]
// Returns the input gradient: [batch_size, in_features].
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.lastInput == nil {
		panic("linear: Backward called before Forward")
	}

	n := l.lastInput.Shape()[0]
	expected := tensor.Shape{n, l.outFeatures}
	if !grad.Shape().Equal(expected) {
		panic(fmt.Sprintf("linear: gradient shape %v != expected %v", grad.Shape(), expected))
	}

	inputData := l.lastInput.Data()
	gradData := grad.Data()
	weightData := l.weight.Data().Data()
	weightGrad := l.weight.Grad().Data()
	biasGrad := l.bias.Grad().Data()

	gradInput := tensor.New(tensor.Shape{n, l.inFeatures})
	gradInputData := gradInput.Data()

	// dW[o,i] += sum_n g[n,o] * x[n,i]
	// db[o]   += sum_n g[n,o]
	// dx[n,i]  = sum_o g[n,o] * W[o,i]
	for batch := 0; batch < n; batch++ {
		x := inputData[batch*l.inFeatures : (batch+1)*l.inFeatures]
		g := gradData[batch*l.outFeatures : (batch+1)*l.outFeatures]
		dx := gradInputData[batch*l.inFeatures : (batch+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			gv := g[o]
			if gv == 0 {
				continue
			}
			wRow := weightData[o*l.inFeatures : (o+1)*l.inFeatures]
			wGradRow := weightGrad[o*l.inFeatures : (o+1)*l.inFeatures]
			for i := 0; i < l.inFeatures; i++ {
				wGradRow[i] += gv * x[i]
				dx[i] += gv * wRow[i]
			}
			biasGrad[o] += gv
		}
	}

	return gradInput
}

// Parameters returns the trainable parameters of this layer.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// OutputShape maps [in_features] to [out_features].
func (l *Linear) OutputShape(input tensor.Shape) tensor.Shape {
	if len(input) != 1 || input[0] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected per-sample shape [%d], got %v", l.inFeatures, input))
	}
	return tensor.Shape{l.outFeatures}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter { return l.weight }

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter { return l.bias }

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int { return l.outFeatures }

// String returns a string representation of the layer.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d)", l.inFeatures, l.outFeatures)
}
