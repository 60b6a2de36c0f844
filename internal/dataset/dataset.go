// Package dataset provides image classification datasets and mini-batch
// iteration for training.
//
// A Dataset holds per-sample feature vectors plus integer class labels.
// Loaders for the IDX binary format (see idx.go) and a synthetic
// generator (see mnist.go) both produce this type, so the training loop
// never cares where the data came from.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/primer-ml/primer/internal/tensor"
)

// Dataset holds a labeled image classification dataset.
//
// Images are stored per-sample as flat float32 vectors of length
// Channels*Rows*Cols, normalized to [0, 1].
type Dataset struct {
	Images   [][]float32
	Labels   []int
	Rows     int
	Cols     int
	Channels int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Images)
}

// SampleShape returns the per-sample tensor shape [channels, rows, cols].
func (d *Dataset) SampleShape() tensor.Shape {
	return tensor.Shape{d.Channels, d.Rows, d.Cols}
}

// NumClasses returns the number of distinct label values, assuming
// labels are dense in [0, max].
func (d *Dataset) NumClasses() int {
	maxLabel := 0
	for _, l := range d.Labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return maxLabel + 1
}

// Subset returns a view of the dataset restricted to the given sample
// indices, in order. Image buffers are shared with the parent.
func (d *Dataset) Subset(indices []int) *Dataset {
	sub := &Dataset{
		Images:   make([][]float32, len(indices)),
		Labels:   make([]int, len(indices)),
		Rows:     d.Rows,
		Cols:     d.Cols,
		Channels: d.Channels,
	}
	for i, idx := range indices {
		sub.Images[i] = d.Images[idx]
		sub.Labels[i] = d.Labels[idx]
	}
	return sub
}

// Concat returns a dataset containing this dataset's samples followed
// by the other's. Both must have the same sample geometry.
func (d *Dataset) Concat(other *Dataset) (*Dataset, error) {
	if d.Rows != other.Rows || d.Cols != other.Cols || d.Channels != other.Channels {
		return nil, fmt.Errorf("dataset: geometry mismatch: %dx%dx%d vs %dx%dx%d",
			d.Channels, d.Rows, d.Cols, other.Channels, other.Rows, other.Cols)
	}
	return &Dataset{
		Images:   append(append([][]float32{}, d.Images...), other.Images...),
		Labels:   append(append([]int{}, d.Labels...), other.Labels...),
		Rows:     d.Rows,
		Cols:     d.Cols,
		Channels: d.Channels,
	}, nil
}

// Batch is a mini-batch ready for a forward pass.
type Batch struct {
	Images *tensor.Tensor // [batch, channels, rows, cols]
	Labels []int
	Size   int
}

// Batches splits the dataset into mini-batches.
//
// When shuffle is true the sample order is permuted with rng before
// batching; pass a seeded rng for reproducible epochs. The last batch
// may be smaller if the dataset size does not divide evenly.
func (d *Dataset) Batches(batchSize int, shuffle bool, rng *rand.Rand) []*Batch {
	if batchSize <= 0 {
		panic(fmt.Sprintf("dataset: batch size must be positive, got %d", batchSize))
	}

	n := d.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	sampleSize := d.Channels * d.Rows * d.Cols
	numBatches := (n + batchSize - 1) / batchSize
	batches := make([]*Batch, 0, numBatches)

	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		size := end - start

		images := tensor.New(tensor.Shape{size, d.Channels, d.Rows, d.Cols})
		labels := make([]int, size)
		data := images.Data()

		for j := start; j < end; j++ {
			idx := indices[j]
			copy(data[(j-start)*sampleSize:(j-start+1)*sampleSize], d.Images[idx])
			labels[j-start] = d.Labels[idx]
		}

		batches = append(batches, &Batch{Images: images, Labels: labels, Size: size})
	}

	return batches
}
