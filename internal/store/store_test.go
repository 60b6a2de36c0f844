package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RunLifecycle(t *testing.T) {
	s := openTestStore(t)

	id, err := s.BeginRun("kfold", "convnet", "epochs=5 folds=5 lr=0.01")
	require.NoError(t, err)
	require.Positive(t, id)

	for fold := 0; fold < 3; fold++ {
		require.NoError(t, s.RecordFold(id, 0, fold, 0.5-float64(fold)*0.1, 0.8+float64(fold)*0.05))
	}

	testLoss, testAcc := 0.21, 0.93
	require.NoError(t, s.FinishRun(id, 0.4, 0.85, &testLoss, &testAcc))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "kfold", run.Protocol)
	assert.Equal(t, "convnet", run.Model)
	require.NotNil(t, run.FinishedAt)
	require.NotNil(t, run.MeanAcc)
	assert.InDelta(t, 0.85, *run.MeanAcc, 1e-9)
	require.NotNil(t, run.TestAcc)
	assert.InDelta(t, 0.93, *run.TestAcc, 1e-9)
}

func TestStore_FoldScores(t *testing.T) {
	s := openTestStore(t)

	id, err := s.BeginRun("iterated-kfold", "mlp", "folds=3 iterations=2")
	require.NoError(t, err)

	// Insert out of order; reads come back sorted.
	require.NoError(t, s.RecordFold(id, 1, 0, 0.3, 0.9))
	require.NoError(t, s.RecordFold(id, 0, 1, 0.5, 0.8))
	require.NoError(t, s.RecordFold(id, 0, 0, 0.6, 0.7))

	records, err := s.FoldScores(id)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, FoldRecord{Iteration: 0, Fold: 0, Loss: 0.6, Accuracy: 0.7}, records[0])
	assert.Equal(t, FoldRecord{Iteration: 0, Fold: 1, Loss: 0.5, Accuracy: 0.8}, records[1])
	assert.Equal(t, FoldRecord{Iteration: 1, Fold: 0, Loss: 0.3, Accuracy: 0.9}, records[2])
}

func TestStore_DuplicateFoldRejected(t *testing.T) {
	s := openTestStore(t)

	id, err := s.BeginRun("kfold", "convnet", "")
	require.NoError(t, err)

	require.NoError(t, s.RecordFold(id, 0, 0, 0.5, 0.8))
	assert.Error(t, s.RecordFold(id, 0, 0, 0.4, 0.9))
}

func TestStore_UnfinishedRun(t *testing.T) {
	s := openTestStore(t)

	_, err := s.BeginRun("holdout", "convnet", "")
	require.NoError(t, err)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Nil(t, runs[0].MeanLoss)
	assert.Nil(t, runs[0].TestLoss)
}

func TestStore_FilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.BeginRun("holdout", "mlp", "")
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(id, 0.3, 0.9, nil, nil))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "mlp", runs[0].Model)
}

func TestStore_NewestFirst(t *testing.T) {
	s := openTestStore(t)

	first, err := s.BeginRun("holdout", "convnet", "")
	require.NoError(t, err)
	second, err := s.BeginRun("kfold", "convnet", "")
	require.NoError(t, err)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}
