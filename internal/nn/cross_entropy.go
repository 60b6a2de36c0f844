package nn

import (
	"fmt"
	"math"

	"github.com/primer-ml/primer/internal/tensor"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class classification.
//
// The forward pass uses the LogSoftmax + NLLLoss decomposition for
// numerical stability:
//
//	Loss = -log_probs[target]
//	where log_probs = LogSoftmax(logits)
//
// The backward pass uses the well-known closed form:
//
//	dL/dlogits = (Softmax(logits) - y_one_hot) / batch_size
//
// Key properties:
//   - Expects raw logits (unnormalized scores) as input
//   - Uses the log-sum-exp trick to prevent overflow for large logits
//   - Returns the mean loss over the batch
type CrossEntropyLoss struct {
	// Caches from Forward, consumed by Backward.
	probs      []float32 // softmax probabilities, [batch*classes]
	targets    []int
	batchSize  int
	numClasses int
}

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy loss over the batch.
//
// Parameters:
//   - logits: [batch_size, num_classes] unnormalized scores
//   - targets: class indices, len batch_size, values in [0, num_classes)
func (c *CrossEntropyLoss) Forward(logits *tensor.Tensor, targets []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross_entropy: logits must be 2D [batch, classes], got %v", shape))
	}

	batchSize := shape[0]
	numClasses := shape[1]
	if len(targets) != batchSize {
		panic(fmt.Sprintf("cross_entropy: %d targets for batch of %d", len(targets), batchSize))
	}

	logitsData := logits.Data()
	if len(c.probs) != batchSize*numClasses {
		c.probs = make([]float32, batchSize*numClasses)
	}

	totalLoss := float32(0.0)
	for b := 0; b < batchSize; b++ {
		sampleLogits := logitsData[b*numClasses : (b+1)*numClasses]
		logProbs := logSoftmax(sampleLogits)

		target := targets[b]
		if target < 0 || target >= numClasses {
			panic(fmt.Sprintf("cross_entropy: target %d out of range [0, %d)", target, numClasses))
		}
		totalLoss += -logProbs[target]

		sampleProbs := c.probs[b*numClasses : (b+1)*numClasses]
		for i, lp := range logProbs {
			sampleProbs[i] = float32(math.Exp(float64(lp)))
		}
	}

	c.targets = append(c.targets[:0], targets...)
	c.batchSize = batchSize
	c.numClasses = numClasses

	return totalLoss / float32(batchSize)
}

// Backward returns the gradient of the mean loss with respect to the logits.
//
// Shape: [batch_size, num_classes].
func (c *CrossEntropyLoss) Backward() *tensor.Tensor {
	if c.batchSize == 0 {
		panic("cross_entropy: Backward called before Forward")
	}

	grad := tensor.New(tensor.Shape{c.batchSize, c.numClasses})
	gradData := grad.Data()
	inv := 1.0 / float32(c.batchSize)

	for b := 0; b < c.batchSize; b++ {
		row := gradData[b*c.numClasses : (b+1)*c.numClasses]
		probs := c.probs[b*c.numClasses : (b+1)*c.numClasses]
		for i := range row {
			row[i] = probs[i] * inv
		}
		row[c.targets[b]] -= inv
	}
	return grad
}

// Accuracy computes the fraction of samples whose argmax prediction
// matches the target class.
//
// logits: [batch_size, num_classes], targets: class indices.
func Accuracy(logits *tensor.Tensor, targets []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("accuracy: logits must be 2D [batch, classes], got %v", shape))
	}

	batchSize := shape[0]
	numClasses := shape[1]
	logitsData := logits.Data()

	correct := 0
	for b := 0; b < batchSize; b++ {
		sampleLogits := logitsData[b*numClasses : (b+1)*numClasses]
		if argmax(sampleLogits) == targets[b] {
			correct++
		}
	}
	return float32(correct) / float32(batchSize)
}

// logSoftmax computes log(softmax(z)) in a numerically stable way.
//
// Formula:
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(sum exp(z - max(z))))
//
// Subtracting max(z) before exponentiating prevents overflow.
func logSoftmax(z []float32) []float32 {
	n := len(z)
	result := make([]float32, n)

	maxZ := z[0]
	for i := 1; i < n; i++ {
		if z[i] > maxZ {
			maxZ = z[i]
		}
	}

	sumExp := float64(0.0)
	for i := 0; i < n; i++ {
		sumExp += math.Exp(float64(z[i] - maxZ))
	}
	logSumExp := maxZ + float32(math.Log(sumExp))

	for i := 0; i < n; i++ {
		result[i] = z[i] - logSumExp
	}
	return result
}

// argmax returns the index of the largest element.
func argmax(z []float32) int {
	best := 0
	for i := 1; i < len(z); i++ {
		if z[i] > z[best] {
			best = i
		}
	}
	return best
}
