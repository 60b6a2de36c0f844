package validation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertPartition checks that train and val are disjoint and together
// contain every index in [0, n) exactly once.
func assertPartition(t *testing.T, split Split, n int) {
	t.Helper()

	seen := make(map[int]int)
	for _, idx := range split.Train {
		seen[idx]++
	}
	for _, idx := range split.Val {
		seen[idx]++
	}

	require.Len(t, seen, n)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "index %d", idx)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, n)
	}
}

func TestHoldOut(t *testing.T) {
	split, err := HoldOut(100, 20, 42)
	require.NoError(t, err)

	assert.Len(t, split.Val, 20)
	assert.Len(t, split.Train, 80)
	assertPartition(t, split, 100)
}

func TestHoldOut_Deterministic(t *testing.T) {
	a, err := HoldOut(50, 10, 7)
	require.NoError(t, err)
	b, err := HoldOut(50, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := HoldOut(50, 10, 8)
	require.NoError(t, err)
	assert.NotEqual(t, a.Val, c.Val)
}

func TestHoldOut_InvalidSize(t *testing.T) {
	_, err := HoldOut(10, 0, 1)
	assert.Error(t, err)
	_, err = HoldOut(10, 10, 1)
	assert.Error(t, err)
	_, err = HoldOut(10, 15, 1)
	assert.Error(t, err)
}

func TestKFold(t *testing.T) {
	splits, err := KFold(100, 5, 42)
	require.NoError(t, err)
	require.Len(t, splits, 5)

	for i, split := range splits {
		assert.Len(t, split.Val, 20, "fold %d", i)
		assert.Len(t, split.Train, 80, "fold %d", i)
		assertPartition(t, split, 100)
	}

	// Validation folds together cover the dataset exactly once.
	var allVal []int
	for _, split := range splits {
		allVal = append(allVal, split.Val...)
	}
	sort.Ints(allVal)
	require.Len(t, allVal, 100)
	for i, idx := range allVal {
		assert.Equal(t, i, idx)
	}
}

func TestKFold_Remainder(t *testing.T) {
	// 103 = 5*20 + 3: the first three folds get 21 validation samples.
	splits, err := KFold(103, 5, 1)
	require.NoError(t, err)

	wantSizes := []int{21, 21, 21, 20, 20}
	total := 0
	for i, split := range splits {
		assert.Len(t, split.Val, wantSizes[i], "fold %d", i)
		assertPartition(t, split, 103)
		total += len(split.Val)
	}
	assert.Equal(t, 103, total)
}

func TestKFold_Deterministic(t *testing.T) {
	a, err := KFold(60, 3, 9)
	require.NoError(t, err)
	b, err := KFold(60, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKFold_InvalidArgs(t *testing.T) {
	_, err := KFold(10, 1, 1)
	assert.Error(t, err)
	_, err = KFold(3, 5, 1)
	assert.Error(t, err)
}

func TestIteratedKFold(t *testing.T) {
	splits, err := IteratedKFold(50, 5, 3, 42)
	require.NoError(t, err)

	// p iterations of k folds each.
	require.Len(t, splits, 15)

	for i := 0; i < 3; i++ {
		iter := splits[i*5 : (i+1)*5]

		var allVal []int
		for _, split := range iter {
			assertPartition(t, split, 50)
			allVal = append(allVal, split.Val...)
		}
		sort.Ints(allVal)
		require.Len(t, allVal, 50)
		for j, idx := range allVal {
			assert.Equal(t, j, idx)
		}
	}

	// Different iterations shuffle differently.
	assert.NotEqual(t, splits[0].Val, splits[5].Val)
	assert.NotEqual(t, splits[5].Val, splits[10].Val)
}

func TestIteratedKFold_InvalidArgs(t *testing.T) {
	_, err := IteratedKFold(50, 5, 0, 1)
	assert.Error(t, err)
	_, err = IteratedKFold(50, 1, 2, 1)
	assert.Error(t, err)
}
