// Package train implements the mini-batch training loop and model
// evaluation.
package train

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/primer-ml/primer/internal/dataset"
	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/optim"
)

// FitConfig controls a training run.
type FitConfig struct {
	Epochs    int   // number of passes over the training data
	BatchSize int   // mini-batch size
	Seed      int64 // seed for the per-epoch shuffle
}

// Score holds the evaluation result of a model on a dataset.
type Score struct {
	Loss     float32
	Accuracy float32
}

// History records per-epoch metrics from a Fit call.
//
// Validation slices stay empty when Fit runs without a validation set.
type History struct {
	TrainLoss []float32
	TrainAcc  []float32
	ValLoss   []float32
	ValAcc    []float32
}

// Trainer wires a model, an optimizer and the loss function into a
// training loop.
type Trainer struct {
	model     *nn.Sequential
	optimizer optim.Optimizer
	criterion *nn.CrossEntropyLoss
	logger    *zap.Logger
}

// NewTrainer creates a trainer. A nil logger disables progress logging.
func NewTrainer(model *nn.Sequential, optimizer optim.Optimizer, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{
		model:     model,
		optimizer: optimizer,
		criterion: nn.NewCrossEntropyLoss(),
		logger:    logger,
	}
}

// Model returns the model being trained.
func (t *Trainer) Model() *nn.Sequential {
	return t.model
}

// Fit trains the model on train for config.Epochs epochs.
//
// Each epoch reshuffles the training data with a seed derived from
// config.Seed and the epoch index, so runs are reproducible. When val
// is non-nil the model is evaluated on it after every epoch and the
// scores are recorded in the history.
func (t *Trainer) Fit(train *dataset.Dataset, val *dataset.Dataset, config FitConfig) *History {
	history := &History{}

	for epoch := 0; epoch < config.Epochs; epoch++ {
		rng := rand.New(rand.NewSource(config.Seed + int64(epoch)))
		batches := train.Batches(config.BatchSize, true, rng)

		epochLoss := float32(0)
		epochCorrect := 0

		for _, batch := range batches {
			t.optimizer.ZeroGrad()

			logits := t.model.Forward(batch.Images)
			loss := t.criterion.Forward(logits, batch.Labels)

			t.model.Backward(t.criterion.Backward())
			t.optimizer.Step()

			epochLoss += loss * float32(batch.Size)
			epochCorrect += int(nn.Accuracy(logits, batch.Labels)*float32(batch.Size) + 0.5)
		}

		n := float32(train.Len())
		trainLoss := epochLoss / n
		trainAcc := float32(epochCorrect) / n
		history.TrainLoss = append(history.TrainLoss, trainLoss)
		history.TrainAcc = append(history.TrainAcc, trainAcc)

		fields := []zap.Field{
			zap.Int("epoch", epoch+1),
			zap.Int("epochs", config.Epochs),
			zap.Float32("train_loss", trainLoss),
			zap.Float32("train_acc", trainAcc),
		}

		if val != nil {
			score := t.Evaluate(val, config.BatchSize)
			history.ValLoss = append(history.ValLoss, score.Loss)
			history.ValAcc = append(history.ValAcc, score.Accuracy)
			fields = append(fields,
				zap.Float32("val_loss", score.Loss),
				zap.Float32("val_acc", score.Accuracy))
		}

		t.logger.Info("epoch complete", fields...)
	}

	return history
}

// Evaluate computes the mean loss and accuracy of the model on data.
//
// No gradients are applied; the data is batched in order, unshuffled.
func (t *Trainer) Evaluate(data *dataset.Dataset, batchSize int) Score {
	criterion := nn.NewCrossEntropyLoss()

	totalLoss := float32(0)
	correct := 0

	for _, batch := range data.Batches(batchSize, false, nil) {
		logits := t.model.Forward(batch.Images)
		totalLoss += criterion.Forward(logits, batch.Labels) * float32(batch.Size)
		correct += int(nn.Accuracy(logits, batch.Labels)*float32(batch.Size) + 0.5)
	}

	n := float32(data.Len())
	return Score{
		Loss:     totalLoss / n,
		Accuracy: float32(correct) / n,
	}
}
