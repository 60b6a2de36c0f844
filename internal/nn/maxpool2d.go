package nn

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Max pooling reduces spatial dimensions by taking the maximum value
// in each window. Unlike Conv2D, MaxPool2D has no learnable parameters.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// The common 2x2 window with stride 2 floor-halves each spatial
// dimension: 26x26 becomes 13x13.
//
// Forward records the flat input index of each window maximum; Backward
// routes the upstream gradient to exactly those positions.
type MaxPool2D struct {
	kernelSize int
	stride     int

	// Backward-pass caches, valid between Forward and Backward.
	inShape tensor.Shape
	argmax  []int // flat input index of the max, one per output element
}

// NewMaxPool2D creates a new 2D max pooling layer.
//
// Common patterns:
//   - NewMaxPool2D(2, 2): standard non-overlapping pooling
//   - NewMaxPool2D(3, 2): overlapping pooling with stride 2
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// Forward performs the forward pass.
//
// Input: [batch, channels, height, width]
// Output: [batch, channels, out_height, out_width].
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	n := inputShape[0]
	c := inputShape[1]
	h := inputShape[2]
	w := inputShape[3]

	if m.kernelSize > h || m.kernelSize > w {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", m.kernelSize, h, w))
	}

	outH := (h-m.kernelSize)/m.stride + 1
	outW := (w-m.kernelSize)/m.stride + 1

	output := tensor.New(tensor.Shape{n, c, outH, outW})
	outputData := output.Data()
	inputData := input.Data()

	if len(m.argmax) != len(outputData) {
		m.argmax = make([]int, len(outputData))
	}

	outIdx := 0
	for batch := 0; batch < n; batch++ {
		for ch := 0; ch < c; ch++ {
			channelOffset := (batch*c + ch) * h * w
			for oh := 0; oh < outH; oh++ {
				hStart := oh * m.stride
				for ow := 0; ow < outW; ow++ {
					wStart := ow * m.stride

					maxIdx := channelOffset + hStart*w + wStart
					maxVal := inputData[maxIdx]
					for kh := 0; kh < m.kernelSize; kh++ {
						rowStart := channelOffset + (hStart+kh)*w
						for kw := 0; kw < m.kernelSize; kw++ {
							idx := rowStart + wStart + kw
							if inputData[idx] > maxVal {
								maxVal = inputData[idx]
								maxIdx = idx
							}
						}
					}

					outputData[outIdx] = maxVal
					m.argmax[outIdx] = maxIdx
					outIdx++
				}
			}
		}
	}

	m.inShape = inputShape.Clone()
	return output
}

// Backward routes the upstream gradient to the recorded max positions.
//
// grad: [batch, channels, out_height, out_width]
// Returns the input gradient: [batch, channels, height, width].
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.inShape == nil {
		panic("maxpool2d: Backward called before Forward")
	}
	gradData := grad.Data()
	if len(gradData) != len(m.argmax) {
		panic(fmt.Sprintf("maxpool2d: gradient has %d elements, expected %d", len(gradData), len(m.argmax)))
	}

	gradInput := tensor.New(m.inShape)
	gradInputData := gradInput.Data()
	for i, g := range gradData {
		gradInputData[m.argmax[i]] += g
	}
	return gradInput
}

// Parameters returns an empty slice (MaxPool2D has no learnable parameters).
func (m *MaxPool2D) Parameters() []*Parameter {
	return []*Parameter{}
}

// OutputShape computes the per-sample output shape [C, out_h, out_w].
func (m *MaxPool2D) OutputShape(input tensor.Shape) tensor.Shape {
	if len(input) != 3 {
		panic(fmt.Sprintf("maxpool2d: expected per-sample shape [C,H,W], got %v", input))
	}
	out := m.ComputeOutputSize(input[1], input[2])
	return tensor.Shape{input[0], out[0], out[1]}
}

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (m *MaxPool2D) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH-m.kernelSize)/m.stride + 1
	outW := (inputW-m.kernelSize)/m.stride + 1
	return [2]int{outH, outW}
}

// String returns a string representation of the layer.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d)", m.kernelSize, m.stride)
}
