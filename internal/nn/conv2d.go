package nn

import (
	"fmt"
	"math/rand"

	"github.com/primer-ml/primer/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// With the default stride 1 and no padding, each convolution shrinks the
// spatial extent by kernel_size - 1: 28x28 through a 3x3 kernel is 26x26.
//
// The forward pass uses the im2col transformation: input patches become
// the rows of a column matrix, so the convolution reduces to a single
// matrix multiplication with the flattened kernel. The column matrix is
// kept around for the backward pass, which reuses it for the weight
// gradient and scatters the column gradient back with col2im.
//
// Reference: "High Performance Convolutional Neural Networks for Document
// Processing" (Chellapilla et al., 2006).
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int
	useBias     bool

	weight *Parameter // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [out_channels] or nil

	// Backward-pass caches, valid between Forward and Backward.
	lastInput *tensor.Tensor
	colBuf    []float32 // [N*out_h*out_w, in_channels*kernel_h*kernel_w]
}

// NewConv2D creates a new 2D convolutional layer with Xavier initialization.
//
// Parameters:
//   - inChannels: Number of input channels
//   - outChannels: Number of output channels (number of filters)
//   - kernelH, kernelW: Kernel dimensions
//   - stride: Stride for convolution (commonly 1)
//   - padding: Zero padding to apply to input (commonly 0)
//   - useBias: Whether to include bias term
//   - rng: Random source for weight initialization (nil for shared source)
func NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding int, useBias bool, rng *rand.Rand) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	// Xavier bounds for Conv2D:
	//   fan_in = in_channels * kernel_h * kernel_w
	//   fan_out = out_channels * kernel_h * kernel_w
	fanIn := inChannels * kernelH * kernelW
	fanOut := outChannels * kernelH * kernelW
	weightShape := tensor.Shape{outChannels, inChannels, kernelH, kernelW}
	weight := NewParameter("conv2d.weight", Xavier(fanIn, fanOut, weightShape, rng))

	var bias *Parameter
	if useBias {
		bias = NewParameter("conv2d.bias", Zeros(tensor.Shape{outChannels}))
	}

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		useBias:     useBias,
		weight:      weight,
		bias:        bias,
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", inputShape[1], c.inChannels))
	}

	n := inputShape[0]
	h := inputShape[2]
	w := inputShape[3]
	kh := c.kernelSize[0]
	kw := c.kernelSize[1]

	outH := (h+2*c.padding-kh)/c.stride + 1
	outW := (w+2*c.padding-kw)/c.stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions %dx%d (kernel=%dx%d, stride=%d, padding=%d, input=%dx%d)",
			outH, outW, kh, kw, c.stride, c.padding, h, w))
	}

	// Im2col: [N*out_h*out_w, C_in*kernel_h*kernel_w]
	colWidth := c.inChannels * kh * kw
	colHeight := n * outH * outW
	if len(c.colBuf) != colHeight*colWidth {
		c.colBuf = make([]float32, colHeight*colWidth)
	}
	im2col(c.colBuf, input.Data(), n, c.inChannels, h, w, kh, kw, outH, outW, c.stride, c.padding)

	// MatMul: weight [C_out, colWidth] x colBuf rows, written straight
	// into [N, C_out, out_h, out_w] layout.
	output := tensor.New(tensor.Shape{n, c.outChannels, outH, outW})
	outputData := output.Data()
	weightData := c.weight.Data().Data()
	planeSize := outH * outW

	for co := 0; co < c.outChannels; co++ {
		wRow := weightData[co*colWidth : (co+1)*colWidth]
		var b float32
		if c.useBias {
			b = c.bias.Data().Data()[co]
		}
		for j := 0; j < colHeight; j++ {
			col := c.colBuf[j*colWidth : (j+1)*colWidth]
			sum := b
			for k := 0; k < colWidth; k++ {
				sum += wRow[k] * col[k]
			}
			// j = batch*out_h*out_w + spatial position
			batch := j / planeSize
			pos := j % planeSize
			outputData[(batch*c.outChannels+co)*planeSize+pos] = sum
		}
	}

	c.lastInput = input
	return output
}

// Backward computes gradients for the weight, bias, and input.
//
// grad: [batch, out_channels, out_h, out_w]
// Returns the input gradient: [batch, in_channels, height, width].
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.lastInput == nil {
		panic("conv2d: Backward called before Forward")
	}

	inputShape := c.lastInput.Shape()
	n := inputShape[0]
	h := inputShape[2]
	w := inputShape[3]
	kh := c.kernelSize[0]
	kw := c.kernelSize[1]
	outH := (h+2*c.padding-kh)/c.stride + 1
	outW := (w+2*c.padding-kw)/c.stride + 1

	expected := tensor.Shape{n, c.outChannels, outH, outW}
	if !grad.Shape().Equal(expected) {
		panic(fmt.Sprintf("conv2d: gradient shape %v != expected %v", grad.Shape(), expected))
	}

	colWidth := c.inChannels * kh * kw
	colHeight := n * outH * outW
	planeSize := outH * outW

	gradData := grad.Data()
	weightData := c.weight.Data().Data()
	weightGrad := c.weight.Grad().Data()

	var biasGrad []float32
	if c.useBias {
		biasGrad = c.bias.Grad().Data()
	}

	// dWeight[co,k] = sum_j dOut[co,j] * col[j,k]
	// dCol[j,k]    = sum_co dOut[co,j] * weight[co,k]
	// dBias[co]    = sum_j dOut[co,j]
	dCol := make([]float32, colHeight*colWidth)
	for co := 0; co < c.outChannels; co++ {
		wRow := weightData[co*colWidth : (co+1)*colWidth]
		wGradRow := weightGrad[co*colWidth : (co+1)*colWidth]
		for j := 0; j < colHeight; j++ {
			batch := j / planeSize
			pos := j % planeSize
			g := gradData[(batch*c.outChannels+co)*planeSize+pos]
			if g == 0 {
				continue
			}
			col := c.colBuf[j*colWidth : (j+1)*colWidth]
			dColRow := dCol[j*colWidth : (j+1)*colWidth]
			for k := 0; k < colWidth; k++ {
				wGradRow[k] += g * col[k]
				dColRow[k] += g * wRow[k]
			}
			if biasGrad != nil {
				biasGrad[co] += g
			}
		}
	}

	// Col2im: scatter-add the column gradient back into input positions.
	gradInput := tensor.New(inputShape)
	col2im(gradInput.Data(), dCol, n, c.inChannels, h, w, kh, kw, outH, outW, c.stride, c.padding)
	return gradInput
}

// Parameters returns all trainable parameters.
func (c *Conv2D) Parameters() []*Parameter {
	if c.useBias {
		return []*Parameter{c.weight, c.bias}
	}
	return []*Parameter{c.weight}
}

// OutputShape computes the per-sample output shape [C_out, out_h, out_w].
func (c *Conv2D) OutputShape(input tensor.Shape) tensor.Shape {
	if len(input) != 3 {
		panic(fmt.Sprintf("conv2d: expected per-sample shape [C,H,W], got %v", input))
	}
	if input[0] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", input[0], c.inChannels))
	}
	out := c.ComputeOutputSize(input[1], input[2])
	return tensor.Shape{c.outChannels, out[0], out[1]}
}

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (c *Conv2D) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH+2*c.padding-c.kernelSize[0])/c.stride + 1
	outW := (inputW+2*c.padding-c.kernelSize[1])/c.stride + 1
	return [2]int{outH, outW}
}

// String returns a string representation of the layer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=%d, padding=%d, bias=%v)",
		c.inChannels, c.outChannels,
		c.kernelSize[0], c.kernelSize[1],
		c.stride, c.padding, c.useBias)
}

// InChannels returns the number of input channels.
func (c *Conv2D) InChannels() int { return c.inChannels }

// OutChannels returns the number of output channels.
func (c *Conv2D) OutChannels() int { return c.outChannels }

// KernelSize returns the kernel size [height, width].
func (c *Conv2D) KernelSize() [2]int { return c.kernelSize }

// im2col transforms the input tensor into a column matrix.
//
// Input: [N, C, H, W]
// Output: colBuf [N*out_h*out_w, C*kernel_h*kernel_w]
//
// Each row of colBuf corresponds to one output position; each column
// corresponds to one kernel weight. Out-of-bounds positions (padding)
// are filled with zero.
func im2col(colBuf, inputData []float32, n, c, h, w, kh, kw, outH, outW, stride, padding int) {
	colWidth := c * kh * kw
	colIdx := 0

	for batch := 0; batch < n; batch++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				hStart := oh*stride - padding
				wStart := ow*stride - padding
				bufIdx := colIdx * colWidth

				for ch := 0; ch < c; ch++ {
					for i := 0; i < kh; i++ {
						for j := 0; j < kw; j++ {
							row := hStart + i
							col := wStart + j
							if row >= 0 && row < h && col >= 0 && col < w {
								colBuf[bufIdx] = inputData[batch*c*h*w+ch*h*w+row*w+col]
							} else {
								colBuf[bufIdx] = 0
							}
							bufIdx++
						}
					}
				}
				colIdx++
			}
		}
	}
}

// col2im scatter-adds a column-matrix gradient back into input layout.
// Mirrors the traversal order of im2col.
func col2im(inputGrad, colGrad []float32, n, c, h, w, kh, kw, outH, outW, stride, padding int) {
	colWidth := c * kh * kw
	colIdx := 0

	for batch := 0; batch < n; batch++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				hStart := oh*stride - padding
				wStart := ow*stride - padding
				bufIdx := colIdx * colWidth

				for ch := 0; ch < c; ch++ {
					for i := 0; i < kh; i++ {
						for j := 0; j < kw; j++ {
							row := hStart + i
							col := wStart + j
							if row >= 0 && row < h && col >= 0 && col < w {
								inputGrad[batch*c*h*w+ch*h*w+row*w+col] += colGrad[bufIdx]
							}
							bufIdx++
						}
					}
				}
				colIdx++
			}
		}
	}
}
