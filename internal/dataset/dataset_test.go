package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/tensor"
)

// tinyDataset builds n samples of 2x2 single-channel images where
// sample i is filled with the value i and labeled i % 3.
func tinyDataset(n int) *Dataset {
	images := make([][]float32, n)
	labels := make([]int, n)
	for i := range images {
		images[i] = []float32{float32(i), float32(i), float32(i), float32(i)}
		labels[i] = i % 3
	}
	return &Dataset{Images: images, Labels: labels, Rows: 2, Cols: 2, Channels: 1}
}

func TestDataset_Basics(t *testing.T) {
	d := tinyDataset(7)

	assert.Equal(t, 7, d.Len())
	assert.Equal(t, 3, d.NumClasses())
	assert.True(t, d.SampleShape().Equal(tensor.Shape{1, 2, 2}))
}

func TestDataset_Subset(t *testing.T) {
	d := tinyDataset(10)
	sub := d.Subset([]int{9, 0, 4})

	require.Equal(t, 3, sub.Len())
	assert.Equal(t, float32(9), sub.Images[0][0])
	assert.Equal(t, float32(0), sub.Images[1][0])
	assert.Equal(t, float32(4), sub.Images[2][0])
	assert.Equal(t, []int{0, 0, 1}, sub.Labels)
}

func TestDataset_Concat(t *testing.T) {
	a := tinyDataset(3)
	b := tinyDataset(2)

	merged, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Len())

	// Appending to the merged dataset must not mutate the sources.
	merged.Labels[0] = 99
	assert.Equal(t, 0, a.Labels[0])

	other := &Dataset{Rows: 4, Cols: 4, Channels: 1}
	_, err = a.Concat(other)
	assert.Error(t, err)
}

func TestDataset_Batches(t *testing.T) {
	d := tinyDataset(10)
	batches := d.Batches(4, false, nil)

	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Size)
	assert.Equal(t, 4, batches[1].Size)
	assert.Equal(t, 2, batches[2].Size)

	assert.True(t, batches[0].Images.Shape().Equal(tensor.Shape{4, 1, 2, 2}))
	assert.True(t, batches[2].Images.Shape().Equal(tensor.Shape{2, 1, 2, 2}))

	// Without shuffle, batch order matches dataset order.
	assert.Equal(t, float32(0), batches[0].Images.Data()[0])
	assert.Equal(t, float32(4), batches[1].Images.Data()[0])
	assert.Equal(t, []int{2, 0}, batches[2].Labels)
}

func TestDataset_BatchesShuffled(t *testing.T) {
	d := tinyDataset(64)

	first := d.Batches(8, true, rand.New(rand.NewSource(7)))
	second := d.Batches(8, true, rand.New(rand.NewSource(7)))

	// Identical seeds give identical batch order.
	for i := range first {
		assert.Equal(t, first[i].Labels, second[i].Labels)
	}

	// Every sample appears exactly once across batches.
	seen := make(map[float32]int)
	for _, b := range first {
		for s := 0; s < b.Size; s++ {
			seen[b.Images.Data()[s*4]]++
		}
	}
	require.Len(t, seen, 64)
	for v, count := range seen {
		assert.Equal(t, 1, count, "sample %v", v)
	}
}

func TestDataset_BatchesInvalidSize(t *testing.T) {
	d := tinyDataset(4)
	assert.Panics(t, func() { d.Batches(0, false, nil) })
}
